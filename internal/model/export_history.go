package model

type ExportStatus string

const (
	ExportStatusPending ExportStatus = "pending"
	ExportStatusDone    ExportStatus = "done"
	ExportStatusFailed  ExportStatus = "failed"
)

type ExportHistory struct {
	ID        int64        `db:"id"`
	JobID     string       `db:"job_id"`
	Filename  string       `db:"filename"`
	Kind      RecordKind   `db:"kind"`
	Transport string       `db:"transport"`
	Attempted int          `db:"attempted"`
	Bytes     int64        `db:"bytes"`
	ErrorKind *string      `db:"error_kind"`
	StartedAt int64        `db:"started_at"`
	UpdatedAt int64        `db:"updated_at"`
	Status    ExportStatus `db:"status"`
}

type NewExportHistory struct {
	JobID     string       `db:"job_id"`
	Filename  string       `db:"filename"`
	Kind      RecordKind   `db:"kind"`
	Transport string       `db:"transport"`
	Attempted int          `db:"attempted"`
	StartedAt int64        `db:"started_at"`
	Status    ExportStatus `db:"status"`
}

type UpdateExportHistory struct {
	ID        int64        `db:"id"`
	Status    ExportStatus `db:"status"`
	Bytes     int64        `db:"bytes"`
	ErrorKind *string      `db:"error_kind"`
}
