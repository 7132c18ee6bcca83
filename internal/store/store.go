package store

import (
	"context"

	"github.com/shopops/order-csv-exporter/internal/model"
)

type Store interface {
	ExportState() ExportStateStore
	History() HistoryStore
	Records() RecordSource

	// ------------ Database Management ------------ //
	Open() error
	Close() error
}

// ExportStateStore is the per-record exported flag. The flag is tri-state:
// absent (record predates tracking, treated as exported), explicitly 0, or
// explicitly 1. Writes are last-write-wins per record.
type ExportStateStore interface {
	IsExported(ctx context.Context, kind model.RecordKind, recordID int64) (bool, error)
	SetExported(ctx context.Context, kind model.RecordKind, recordID int64, exported bool) error
	SetExportedAll(ctx context.Context, kind model.RecordKind, recordIDs []int64, exported bool) error
	// CountUnexported counts records matching the filter whose flag is
	// explicitly 0. Flag-absent records are never counted.
	CountUnexported(ctx context.Context, filter model.ExportFilter) (int64, error)
}

// HistoryStore persists one row per orchestrator run.
type HistoryStore interface {
	Insert(ctx context.Context, input *model.NewExportHistory) (int64, error)
	Update(ctx context.Context, input *model.UpdateExportHistory) error
}

// RecordSource finds export candidates. It is the boundary to the host data
// store; records it returns are read-only. With unexportedOnly set, only
// records whose exported flag is explicitly 0 are returned (the automated
// export path).
type RecordSource interface {
	Query(ctx context.Context, filter model.ExportFilter, unexportedOnly bool) ([]model.Record, error)
}
