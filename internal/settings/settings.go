package settings

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/natefinch/atomic"
	"github.com/spf13/viper"

	"github.com/shopops/order-csv-exporter/internal/errors"
	"github.com/shopops/order-csv-exporter/internal/model"
)

// Store persists the automated-export settings as a JSON file. Writes are
// atomic so a watcher never observes a half-written config; Watch notifies
// on every file change so the scheduler can re-arm.
type Store struct {
	path string

	mu      sync.Mutex
	watcher *viper.Viper
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Load reads the schedule config, returning defaults when the file does not
// exist yet.
func (s *Store) Load() (model.ScheduleConfig, error) {
	cfg := model.DefaultScheduleConfig()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.New("could not read settings file", errors.WithCause(err))
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.New("could not parse settings file", errors.WithCause(err))
	}
	return cfg, nil
}

// Save writes the schedule config atomically.
func (s *Store) Save(cfg model.ScheduleConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return errors.New("could not encode settings", errors.WithCause(err))
	}
	if err := atomic.WriteFile(s.path, bytes.NewReader(data)); err != nil {
		return errors.New("could not write settings file", errors.WithCause(err))
	}
	return nil
}

// Watch invokes fn with the freshly loaded config whenever the settings file
// changes on disk. The file must exist before watching starts; Save the
// defaults first if needed.
func (s *Store) Watch(fn func(model.ScheduleConfig)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.watcher != nil {
		return errors.New("settings watcher already started")
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return errors.New("could not watch settings file", errors.WithCause(err))
	}

	v.OnConfigChange(func(in fsnotify.Event) {
		cfg, err := s.Load()
		if err != nil {
			slog.Error("order_csv_exporter.settings.reload_failed", slog.String("error", err.Error()))
			return
		}
		fn(cfg)
	})
	v.WatchConfig()

	s.watcher = v
	return nil
}
