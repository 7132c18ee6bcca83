package model

// ErrorKind names a failure class in job results and history rows.
type ErrorKind string

const (
	ErrKindSerialization     ErrorKind = "serialization_error"
	ErrKindTransportConnect  ErrorKind = "transport_connect_error"
	ErrKindTransportDelivery ErrorKind = "transport_delivery_error"
	ErrKindConcurrentRun     ErrorKind = "concurrent_run_rejected"
)

// RecordError is a per-record failure recovered during rendering.
type RecordError struct {
	RecordID int64     `json:"record_id"`
	Kind     ErrorKind `json:"kind"`
}

// ExportJobResult reports the outcome of one orchestrator run.
// Attempted == 0 with a nil error means no candidates matched.
type ExportJobResult struct {
	JobID     string        `json:"job_id"`
	Attempted int           `json:"attempted"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Bytes     int64         `json:"bytes"`
	Filename  string        `json:"filename"`
	Errors    []RecordError `json:"errors,omitempty"`
}
