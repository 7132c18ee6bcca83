package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"

	"github.com/jlaffaye/ftp"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// FTP uploads over plain FTP, FTP with implicit SSL, or FTP with explicit
// TLS (AUTH TLS). Data connections are always client-initiated; when the
// passive flag is off the client downgrades from EPSV to classic PASV,
// which is what servers behind strict NAT setups usually need.
type FTP struct {
	cfg model.TransportConfig
}

func newFTP(cfg model.TransportConfig) *FTP {
	return &FTP{cfg: cfg}
}

func (t *FTP) Name() string { return string(model.TransportFTP) }

func (t *FTP) Deliver(ctx context.Context, payload []byte, filename string) error {
	ctx, cancel := context.WithTimeout(ctx, transferTimeout(t.cfg))
	defer cancel()

	conn, err := t.connect(ctx)
	if err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}
	defer func() { _ = conn.Quit() }()

	if err := t.login(conn); err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}

	if path := t.cfg.FTP.InitialPath; path != "" {
		if err := conn.ChangeDir(path); err != nil {
			return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("chdir %q: %w", path, err))
		}
	}

	if err := conn.Stor(filename, bytes.NewReader(payload)); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("stor %q: %w", filename, err))
	}
	return nil
}

func (t *FTP) TestConnection(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout(t.cfg))
	defer cancel()

	conn, err := t.connect(ctx)
	if err != nil {
		return "", apperr.NewTransportConnectError(t.Name(), err)
	}
	defer func() { _ = conn.Quit() }()

	if err := t.login(conn); err != nil {
		return "", apperr.NewTransportConnectError(t.Name(), err)
	}

	if path := t.cfg.FTP.InitialPath; path != "" {
		if err := conn.ChangeDir(path); err != nil {
			return "", apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("chdir %q: %w", path, err))
		}
	}
	return fmt.Sprintf("FTP connection to %s succeeded", t.cfg.FTP.Address()), nil
}

func (t *FTP) connect(ctx context.Context) (*ftp.ServerConn, error) {
	opts := []ftp.DialOption{
		ftp.DialWithContext(ctx),
		ftp.DialWithTimeout(connectTimeout(t.cfg)),
	}

	switch t.cfg.FTP.Security {
	case model.FTPSecurityImplicitSSL:
		opts = append(opts, ftp.DialWithTLS(t.tlsConfig()))
	case model.FTPSecurityExplicitTLS:
		opts = append(opts, ftp.DialWithExplicitTLS(t.tlsConfig()))
	}

	if !t.cfg.FTP.Passive {
		opts = append(opts, ftp.DialWithDisabledEPSV(true))
	}

	return ftp.Dial(t.cfg.FTP.Address(), opts...)
}

func (t *FTP) login(conn *ftp.ServerConn) error {
	user := t.cfg.FTP.Username
	if user == "" {
		user = "anonymous"
	}
	if err := conn.Login(user, t.cfg.FTP.Password); err != nil {
		return fmt.Errorf("login as %q: %w", user, err)
	}
	return nil
}

func (t *FTP) tlsConfig() *tls.Config {
	return &tls.Config{ServerName: t.cfg.FTP.Host, MinVersion: tls.VersionTLS12}
}
