package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

func TestHTTPPostDeliverSuccess(t *testing.T) {
	var gotFilename string
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotFilename = header.Filename
		gotBody, err = io.ReadAll(f)
		require.NoError(t, err)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	tr := newHTTPPost(model.TransportConfig{
		Kind:     model.TransportHTTPPost,
		HTTPPost: model.HTTPPostConfig{URL: srv.URL},
	})

	err := tr.Deliver(context.Background(), []byte("a,b\n1,2\n"), "orders.csv")
	require.NoError(t, err)
	assert.Equal(t, "orders.csv", gotFilename)
	assert.Equal(t, "a,b\n1,2\n", string(gotBody))
}

func TestHTTPPostNon2xxIsDeliveryError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := newHTTPPost(model.TransportConfig{
		Kind:     model.TransportHTTPPost,
		HTTPPost: model.HTTPPostConfig{URL: srv.URL},
	})

	err := tr.Deliver(context.Background(), []byte("x"), "orders.csv")
	var deliveryErr *apperr.TransportDeliveryError
	require.ErrorAs(t, err, &deliveryErr)
}

func TestHTTPPostUnreachableIsConnectError(t *testing.T) {
	// Closed immediately so the port is known-dead.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	tr := newHTTPPost(model.TransportConfig{
		Kind:     model.TransportHTTPPost,
		HTTPPost: model.HTTPPostConfig{URL: url},
	})

	err := tr.Deliver(context.Background(), []byte("x"), "orders.csv")
	var connectErr *apperr.TransportConnectError
	require.ErrorAs(t, err, &connectErr)
}

func TestDownloadSetsAttachmentHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	tr := NewDownload(rec)

	err := tr.Deliver(context.Background(), []byte("a,b\n"), "orders-export.csv")
	require.NoError(t, err)

	assert.Equal(t, csvContentType, rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="orders-export.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "a,b\n", rec.Body.String())
}

func TestDownloadTestConnection(t *testing.T) {
	tr := NewDownload(httptest.NewRecorder())
	msg, err := tr.TestConnection(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, msg)
}

func TestLocalFileDeliverWritesFile(t *testing.T) {
	dir := t.TempDir()
	tr := newLocalFile(model.TransportConfig{
		Kind:      model.TransportLocalFile,
		LocalFile: model.LocalFileConfig{Dir: dir},
	})

	err := tr.Deliver(context.Background(), []byte("a,b\n1,2\n"), "orders.csv")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "orders.csv"))
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestLocalFileTestConnection(t *testing.T) {
	dir := t.TempDir()
	tr := newLocalFile(model.TransportConfig{
		Kind:      model.TransportLocalFile,
		LocalFile: model.LocalFileConfig{Dir: dir},
	})

	msg, err := tr.TestConnection(context.Background())
	require.NoError(t, err)
	assert.Contains(t, msg, dir)

	// No probe files left behind.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFactory(t *testing.T) {
	tests := []struct {
		name    string
		cfg     model.TransportConfig
		want    string
		wantErr bool
	}{
		{
			name: "ftp",
			cfg: model.TransportConfig{
				Kind: model.TransportFTP,
				FTP:  model.FTPConfig{Host: "ftp.example.com"},
			},
			want: "ftp",
		},
		{
			name: "sftp via security mode",
			cfg: model.TransportConfig{
				Kind: model.TransportFTP,
				FTP:  model.FTPConfig{Host: "ftp.example.com", Security: model.FTPSecuritySFTP},
			},
			want: "sftp",
		},
		{
			name: "http post",
			cfg: model.TransportConfig{
				Kind:     model.TransportHTTPPost,
				HTTPPost: model.HTTPPostConfig{URL: "https://example.com/hook"},
			},
			want: "http_post",
		},
		{
			name: "local file",
			cfg: model.TransportConfig{
				Kind:      model.TransportLocalFile,
				LocalFile: model.LocalFileConfig{Dir: "/tmp/exports"},
			},
			want: "local_file",
		},
		{
			name:    "ftp without host",
			cfg:     model.TransportConfig{Kind: model.TransportFTP},
			wantErr: true,
		},
		{
			name:    "download needs a response writer",
			cfg:     model.TransportConfig{Kind: model.TransportDownload},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			cfg:     model.TransportConfig{Kind: "carrier_pigeon"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, tr.Name())
		})
	}
}

func TestFTPAddressDefaultsPortPerSecurityMode(t *testing.T) {
	assert.Equal(t, "h:21", model.FTPConfig{Host: "h"}.Address())
	assert.Equal(t, "h:990", model.FTPConfig{Host: "h", Security: model.FTPSecurityImplicitSSL}.Address())
	assert.Equal(t, "h:22", model.FTPConfig{Host: "h", Security: model.FTPSecuritySFTP}.Address())
	assert.Equal(t, "h:2121", model.FTPConfig{Host: "h", Port: 2121}.Address())
}
