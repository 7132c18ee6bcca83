package transport

import (
	"context"
	"fmt"
	"path"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"

	apperr "github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// SFTP uploads over an SSH session. Password authentication only, matching
// the host/username/password shape the settings expose.
type SFTP struct {
	cfg model.TransportConfig
}

func newSFTP(cfg model.TransportConfig) *SFTP {
	return &SFTP{cfg: cfg}
}

func (t *SFTP) Name() string { return string(model.FTPSecuritySFTP) }

func (t *SFTP) Deliver(ctx context.Context, payload []byte, filename string) error {
	client, closeAll, err := t.connect()
	if err != nil {
		return apperr.NewTransportConnectError(t.Name(), err)
	}
	defer closeAll()

	remote := filename
	if dir := t.cfg.FTP.InitialPath; dir != "" {
		remote = path.Join(dir, filename)
	}

	f, err := client.Create(remote)
	if err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("create %q: %w", remote, err))
	}
	if _, err := f.Write(payload); err != nil {
		_ = f.Close()
		return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("write %q: %w", remote, err))
	}
	if err := f.Close(); err != nil {
		return apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("close %q: %w", remote, err))
	}
	return nil
}

func (t *SFTP) TestConnection(ctx context.Context) (string, error) {
	client, closeAll, err := t.connect()
	if err != nil {
		return "", apperr.NewTransportConnectError(t.Name(), err)
	}
	defer closeAll()

	dir := t.cfg.FTP.InitialPath
	if dir == "" {
		dir = "."
	}
	if _, err := client.Stat(dir); err != nil {
		return "", apperr.NewTransportDeliveryError(t.Name(), fmt.Errorf("stat %q: %w", dir, err))
	}
	return fmt.Sprintf("SFTP connection to %s succeeded", t.cfg.FTP.Address()), nil
}

func (t *SFTP) connect() (*sftp.Client, func(), error) {
	sshCfg := &ssh.ClientConfig{
		User:            t.cfg.FTP.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(t.cfg.FTP.Password)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(), //nolint:gosec // host key pinning is not part of the settings surface
		Timeout:         connectTimeout(t.cfg),
	}

	sshConn, err := ssh.Dial("tcp", t.cfg.FTP.Address(), sshCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("ssh dial %s: %w", t.cfg.FTP.Address(), err)
	}

	client, err := sftp.NewClient(sshConn)
	if err != nil {
		_ = sshConn.Close()
		return nil, nil, fmt.Errorf("sftp session: %w", err)
	}

	return client, func() {
		_ = client.Close()
		_ = sshConn.Close()
	}, nil
}
