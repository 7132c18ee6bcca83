package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	conf "github.com/shopops/order-csv-exporter/config"
	"github.com/shopops/order-csv-exporter/internal/errors"
)

const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP listener serving the admin surface (manual exports,
// settings, health). Fatal listen errors are reported on the exit channel so
// the application can shut down.
type Server struct {
	srv    *http.Server
	exitCh chan error
}

func Build(config *conf.HTTPConfig, handler http.Handler, exitCh chan error) (*Server, error) {
	if config == nil || config.Addr == "" {
		return nil, errors.New("http config is required")
	}
	return &Server{
		srv: &http.Server{
			Addr:    config.Addr,
			Handler: handler,
		},
		exitCh: exitCh,
	}, nil
}

func (s *Server) Start() {
	slog.Info("order_csv_exporter.server.listening", slog.String("address", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		s.exitCh <- err
	}
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		slog.Error("order_csv_exporter.server.shutdown_error", slog.String("error", err.Error()))
	}
}
