package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	dberr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

type History struct {
	storage *Store
}

func (h *History) Insert(ctx context.Context, input *model.NewExportHistory) (int64, error) {
	db, err := h.storage.Database()
	if err != nil {
		return 0, dberr.NewDBInternalError("insert_export_history", err)
	}

	query := `
		INSERT INTO exporter.export_history
			(job_id, filename, kind, transport, attempted, started_at, updated_at, status)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		RETURNING id
	`

	var id int64
	err = db.QueryRow(
		ctx,
		query,
		input.JobID,
		input.Filename,
		input.Kind,
		input.Transport,
		input.Attempted,
		input.StartedAt,
		input.Status,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if dberr.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505": // unique_violation
				return 0, &dberr.DBUniqueViolationError{
					DBError: *dberr.NewDBError("insert_export_history", pgErr.Message),
					Column:  pgErr.ConstraintName,
				}
			case "23503": // foreign_key_violation
				return 0, &dberr.DBForeignKeyViolationError{
					DBError:         *dberr.NewDBError("insert_export_history", pgErr.Message),
					ForeignKeyTable: pgErr.TableName,
				}
			default:
				return 0, dberr.NewDBInternalError("insert_export_history", err)
			}
		}
		return 0, dberr.NewDBInternalError("insert_export_history", err)
	}

	return id, nil
}

func (h *History) Update(ctx context.Context, input *model.UpdateExportHistory) error {
	db, err := h.storage.Database()
	if err != nil {
		return dberr.NewDBInternalError("update_export_history", err)
	}

	query := `
		UPDATE exporter.export_history
		SET status = $1,
		    bytes = $2,
		    error_kind = COALESCE($3, error_kind),
		    updated_at = $4
		WHERE id = $5
	`

	cmd, err := db.Exec(
		ctx,
		query,
		input.Status,
		input.Bytes,
		input.ErrorKind,
		time.Now().UnixMilli(),
		input.ID,
	)
	if err != nil {
		return dberr.NewDBInternalError("update_export_history", err)
	}

	if cmd.RowsAffected() == 0 {
		return dberr.NewDBNotFoundError("update_export_history",
			fmt.Sprintf("no export history record found for id=%d", input.ID))
	}

	return nil
}
