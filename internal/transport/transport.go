package transport

import (
	"context"
	"time"

	"github.com/shopops/order-csv-exporter/internal/model"
)

const (
	defaultConnectTimeout  = 30 * time.Second
	defaultTransferTimeout = 120 * time.Second

	csvContentType = "text/csv; charset=utf-8"
)

// Transport delivers a rendered export payload. Deliver is a whole-batch
// operation: it either places the complete payload or fails with a typed
// transport error. TestConnection probes connectivity without transferring
// data; it backs the settings UI's test button.
type Transport interface {
	Name() string
	Deliver(ctx context.Context, payload []byte, filename string) error
	TestConnection(ctx context.Context) (string, error)
}

func connectTimeout(cfg model.TransportConfig) time.Duration {
	if cfg.ConnectTimeout > 0 {
		return cfg.ConnectTimeout
	}
	return defaultConnectTimeout
}

func transferTimeout(cfg model.TransportConfig) time.Duration {
	if cfg.TransferTimeout > 0 {
		return cfg.TransferTimeout
	}
	return defaultTransferTimeout
}
