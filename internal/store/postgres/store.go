package postgres

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	conf "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/store"
)

// Store is the struct implementing the Store interface.
type Store struct {
	exportState store.ExportStateStore
	history     store.HistoryStore
	records     store.RecordSource
	config      *conf.DatabaseConfig
	conn        *pgxpool.Pool
}

// New creates a new Store instance.
func New(config *conf.DatabaseConfig) *Store {
	return &Store{config: config}
}

func (s *Store) ExportState() store.ExportStateStore {
	if s.exportState == nil {
		s.exportState = &ExportState{storage: s}
	}
	return s.exportState
}

func (s *Store) History() store.HistoryStore {
	if s.history == nil {
		s.history = &History{storage: s}
	}
	return s.history
}

func (s *Store) Records() store.RecordSource {
	if s.records == nil {
		s.records = &Records{storage: s}
	}
	return s.records
}

// Database returns the database connection or a custom error if it is not opened.
func (s *Store) Database() (*pgxpool.Pool, error) {
	if s.conn == nil {
		return nil, errors.New("database connection is not opened")
	}
	return s.conn, nil
}

// Open establishes a connection to the database and returns a custom error if it fails.
func (s *Store) Open() error {
	config, err := pgxpool.ParseConfig(s.config.Url)
	if err != nil {
		return err
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return err
	}
	s.conn = conn
	slog.Debug("order_csv_exporter.store.connection_opened", slog.String("message", "postgres: connection opened"))
	return nil
}

// Close closes the database connection and returns a custom error if it fails.
func (s *Store) Close() error {
	if s.conn != nil {
		s.conn.Close()
		slog.Debug("order_csv_exporter.store.connection_closed", slog.String("message", "postgres: connection closed"))
		s.conn = nil
	}
	return nil
}
