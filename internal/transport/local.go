package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// Download writes the payload to an HTTP response as a CSV attachment.
// Delivery commits the response stream: nothing sent on this connection
// afterwards can change what the client receives, which is why download
// exports mark records before delivering.
type Download struct {
	w http.ResponseWriter
}

func NewDownload(w http.ResponseWriter) *Download {
	return &Download{w: w}
}

func (t *Download) Name() string { return string(model.TransportDownload) }

func (t *Download) Deliver(ctx context.Context, payload []byte, filename string) error {
	t.w.Header().Set("Content-Type", csvContentType)
	t.w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	t.w.Header().Set("Content-Length", fmt.Sprintf("%d", len(payload)))

	if _, err := t.w.Write(payload); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), err)
	}
	return nil
}

func (t *Download) TestConnection(ctx context.Context) (string, error) {
	return "download transport is always available", nil
}

// LocalFile writes exports into a directory on disk, atomically so a
// half-written file is never picked up by whatever watches the directory.
type LocalFile struct {
	cfg model.TransportConfig
}

func newLocalFile(cfg model.TransportConfig) *LocalFile {
	return &LocalFile{cfg: cfg}
}

func (t *LocalFile) Name() string { return string(model.TransportLocalFile) }

func (t *LocalFile) Deliver(ctx context.Context, payload []byte, filename string) error {
	if err := os.MkdirAll(t.cfg.LocalFile.Dir, 0o755); err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}

	dest := filepath.Join(t.cfg.LocalFile.Dir, filename)
	if err := atomic.WriteFile(dest, bytes.NewReader(payload)); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("write %q: %w", dest, err))
	}
	return nil
}

func (t *LocalFile) TestConnection(ctx context.Context) (string, error) {
	if err := os.MkdirAll(t.cfg.LocalFile.Dir, 0o755); err != nil {
		return "", apperr.NewTransportConnectError(t.Name(), err)
	}

	probe, err := os.CreateTemp(t.cfg.LocalFile.Dir, ".probe-*")
	if err != nil {
		return "", apperr.NewTransportConnectError(t.Name(), err)
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return fmt.Sprintf("directory %s is writable", t.cfg.LocalFile.Dir), nil
}
