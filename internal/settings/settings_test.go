package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopops/order-csv-exporter/internal/model"
)

func TestLoadReturnsDefaultsWhenFileMissing(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	cfg, err := s.Load()
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Equal(t, model.DefaultIntervalMinutes, cfg.IntervalMinutes)
	assert.Equal(t, model.DefaultOrderFilename, cfg.OrderFilename)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "settings.json"))

	want := model.DefaultScheduleConfig()
	want.Enabled = true
	want.IntervalMinutes = 15
	want.Statuses = []string{"completed", "processing"}
	want.Transport = model.TransportConfig{
		Kind: model.TransportFTP,
		FTP: model.FTPConfig{
			Host:     "ftp.example.com",
			Username: "exports",
			Security: model.FTPSecurityExplicitTLS,
			Passive:  true,
		},
	}
	require.NoError(t, s.Save(want))

	got, err := s.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings changed across save/load:\n%s", diff)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s := NewStore(path)
	require.NoError(t, s.Save(model.DefaultScheduleConfig()))

	// Corrupt the file in place.
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := s.Load()
	assert.Error(t, err)
}
