package postgres

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	dberr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// ExportState stores the per-record exported flag in
// exporter.export_state(kind, record_id, exported). Absence of a row means
// the record predates tracking and counts as already exported; only an
// explicit false row makes a record unexported.
type ExportState struct {
	storage *Store
}

func (e *ExportState) IsExported(ctx context.Context, kind model.RecordKind, recordID int64) (bool, error) {
	db, err := e.storage.Database()
	if err != nil {
		return false, dberr.NewDBInternalError("is_exported", err)
	}

	query := `
		SELECT exported
		FROM exporter.export_state
		WHERE kind = $1 AND record_id = $2
	`

	var exported bool
	err = db.QueryRow(ctx, query, kind, recordID).Scan(&exported)
	if err != nil {
		if dberr.Is(err, pgx.ErrNoRows) {
			// No flag: pre-tracking record, treated as exported.
			return true, nil
		}
		return false, dberr.NewDBInternalError("is_exported", err)
	}
	return exported, nil
}

func (e *ExportState) SetExported(ctx context.Context, kind model.RecordKind, recordID int64, exported bool) error {
	return e.SetExportedAll(ctx, kind, []int64{recordID}, exported)
}

// SetExportedAll upserts the flag for a whole batch, last write wins.
func (e *ExportState) SetExportedAll(ctx context.Context, kind model.RecordKind, recordIDs []int64, exported bool) error {
	if len(recordIDs) == 0 {
		return nil
	}
	db, err := e.storage.Database()
	if err != nil {
		return dberr.NewDBInternalError("set_exported", err)
	}

	query := `
		INSERT INTO exporter.export_state (kind, record_id, exported)
		SELECT $1, unnest($2::bigint[]), $3
		ON CONFLICT (kind, record_id)
		DO UPDATE SET exported = EXCLUDED.exported
	`

	if _, err := db.Exec(ctx, query, kind, recordIDs, exported); err != nil {
		return dberr.NewDBInternalError("set_exported", err)
	}
	return nil
}

// CountUnexported counts candidates with an explicit false flag. The inner
// join against export_state is what excludes flag-absent records.
func (e *ExportState) CountUnexported(ctx context.Context, filter model.ExportFilter) (int64, error) {
	db, err := e.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("count_unexported", err)
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	query := psql.
		Select("count(*)").
		From("exporter.export_state s").
		Where(sq.Eq{"s.kind": filter.Kind}).
		Where(sq.Eq{"s.exported": false})

	switch filter.Kind {
	case model.KindCustomer:
		query = query.Join("exporter.customers c ON c.id = s.record_id")
		if len(filter.IDs) > 0 {
			query = query.Where(sq.Eq{"c.id": filter.IDs})
		} else {
			if filter.StartDate != nil {
				query = query.Where(sq.GtOrEq{"c.created_at": *filter.StartDate})
			}
			if filter.EndDate != nil {
				query = query.Where(sq.LtOrEq{"c.created_at": *filter.EndDate})
			}
		}
	default:
		query = query.Join("exporter.orders o ON o.id = s.record_id")
		if len(filter.IDs) > 0 {
			query = query.Where(sq.Eq{"o.id": filter.IDs})
		} else {
			if len(filter.Statuses) > 0 {
				query = query.Where(sq.Eq{"o.status": filter.Statuses})
			}
			if filter.StartDate != nil {
				query = query.Where(sq.GtOrEq{"o.created_at": *filter.StartDate})
			}
			if filter.EndDate != nil {
				query = query.Where(sq.LtOrEq{"o.created_at": *filter.EndDate})
			}
		}
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, dberr.NewDBInternalError("count_unexported", err)
	}

	var count int64
	if err := db.QueryRow(ctx, sqlStr, args...).Scan(&count); err != nil {
		return 0, dberr.NewDBInternalError("count_unexported", err)
	}
	return count, nil
}
