package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// HTTPPost delivers the payload as a multipart/form-data POST with the CSV
// attached under the "file" field. A non-2xx response is a delivery failure,
// not a connect failure: the session was opened, the remote refused the data.
type HTTPPost struct {
	cfg    model.TransportConfig
	client *http.Client
}

func newHTTPPost(cfg model.TransportConfig) *HTTPPost {
	return &HTTPPost{
		cfg:    cfg,
		client: &http.Client{Timeout: transferTimeout(cfg)},
	}
}

func (t *HTTPPost) Name() string { return string(model.TransportHTTPPost) }

func (t *HTTPPost) Deliver(ctx context.Context, payload []byte, filename string) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), err)
	}
	if _, err := part.Write(payload); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), err)
	}
	if err := mw.Close(); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.cfg.HTTPPost.URL, &body)
	if err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := t.client.Do(req)
	if err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.NewTransportDeliveryError(t.Name(),
			fmt.Errorf("remote returned %s", resp.Status))
	}
	return nil
}

// TestConnection issues a zero-byte POST to the configured URL.
func (t *HTTPPost) TestConnection(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout(t.cfg))
	defer cancel()

	if err := t.Deliver(ctx, nil, "test.csv"); err != nil {
		return "", err
	}
	return fmt.Sprintf("HTTP POST to %s succeeded", t.cfg.HTTPPost.URL), nil
}
