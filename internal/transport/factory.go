package transport

import (
	"fmt"

	"github.com/shopops/order-csv-exporter/internal/model"
)

// New builds a transport from its configuration. The HTTP download transport
// is not constructible here: it is bound to a live http.ResponseWriter via
// NewDownload.
func New(cfg model.TransportConfig) (Transport, error) {
	switch cfg.Kind {
	case model.TransportFTP:
		if cfg.FTP.Host == "" {
			return nil, fmt.Errorf("ftp transport: host is required")
		}
		if cfg.FTP.Security == model.FTPSecuritySFTP {
			return newSFTP(cfg), nil
		}
		return newFTP(cfg), nil
	case model.TransportHTTPPost:
		if cfg.HTTPPost.URL == "" {
			return nil, fmt.Errorf("http_post transport: url is required")
		}
		return newHTTPPost(cfg), nil
	case model.TransportLocalFile:
		if cfg.LocalFile.Dir == "" {
			return nil, fmt.Errorf("local_file transport: dir is required")
		}
		return newLocalFile(cfg), nil
	case model.TransportDownload:
		return nil, fmt.Errorf("download transport requires a response writer; use NewDownload")
	}
	return nil, fmt.Errorf("unknown transport kind: %q", cfg.Kind)
}
