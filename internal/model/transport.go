package model

import (
	"fmt"
	"time"
)

// TransportKind selects the delivery mechanism for a rendered export.
type TransportKind string

const (
	TransportDownload  TransportKind = "download"
	TransportLocalFile TransportKind = "local_file"
	TransportFTP       TransportKind = "ftp"
	TransportHTTPPost  TransportKind = "http_post"
)

// FTPSecurity selects the control-connection security mode.
type FTPSecurity string

const (
	FTPSecurityNone        FTPSecurity = "none"
	FTPSecurityImplicitSSL FTPSecurity = "ftp_ssl"
	FTPSecurityExplicitTLS FTPSecurity = "ftps"
	FTPSecuritySFTP        FTPSecurity = "sftp"
)

// TransportConfig is a tagged union: exactly one of the sections matching
// Kind is consulted.
type TransportConfig struct {
	Kind TransportKind `json:"kind"`

	FTP       FTPConfig       `json:"ftp,omitempty"`
	HTTPPost  HTTPPostConfig  `json:"http_post,omitempty"`
	LocalFile LocalFileConfig `json:"local_file,omitempty"`

	// Zero values fall back to 30s connect / 120s transfer.
	ConnectTimeout  time.Duration `json:"connect_timeout,omitempty"`
	TransferTimeout time.Duration `json:"transfer_timeout,omitempty"`
}

type FTPConfig struct {
	Host        string      `json:"host"`
	Port        int         `json:"port"`
	Username    string      `json:"username"`
	Password    string      `json:"password"`
	InitialPath string      `json:"initial_path"`
	Security    FTPSecurity `json:"security"`
	Passive     bool        `json:"passive"`
}

// Address renders host:port, defaulting the port per security mode
// (21 plain/explicit TLS, 990 implicit SSL, 22 SFTP).
func (c FTPConfig) Address() string {
	port := c.Port
	if port == 0 {
		switch c.Security {
		case FTPSecurityImplicitSSL:
			port = 990
		case FTPSecuritySFTP:
			port = 22
		default:
			port = 21
		}
	}
	return fmt.Sprintf("%s:%d", c.Host, port)
}

type HTTPPostConfig struct {
	URL string `json:"url"`
}

type LocalFileConfig struct {
	Dir string `json:"dir"`
}
