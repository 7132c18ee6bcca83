package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shopops/order-csv-exporter/internal/errors"
)

type AppConfig struct {
	File     string          `json:"-"`
	Redis    *RedisConfig    `json:"redis,omitempty"`
	Database *DatabaseConfig `json:"database,omitempty"`
	Export   *ExportConfig   `json:"export,omitempty"`
	HTTP     *HTTPConfig     `json:"http,omitempty"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type DatabaseConfig struct {
	Url string `json:"url"`
}

type ExportConfig struct {
	Workers      int    `json:"workers"`
	SettingsFile string `json:"settings_file"`
	PidFile      string `json:"pid_file"`
}

type HTTPConfig struct {
	Addr string `json:"addr"`
}

// BindFlags registers the configuration flags on the given flag set and binds
// them into viper together with their environment variables. Call once, on
// the root command's persistent flags.
func BindFlags(fs *pflag.FlagSet) {
	fs.String("config_file", "", "Configuration file in JSON format")

	// database
	fs.String("data_source", "", "Data source")

	// redis
	fs.String("redis_addr", "localhost:6379", "Redis address")
	fs.String("redis_password", "", "Redis password")
	fs.Int("redis_db", 0, "Redis DB number")

	// export
	fs.Int("workers", 5, "Number of concurrent export workers")
	fs.String("settings_file", "export-settings.json", "Automated export settings file")
	fs.String("pid_file", "", "Lock file preventing a second daemon instance")

	// http
	fs.String("http_addr", "localhost:10031", "HTTP listen address")

	_ = viper.BindPFlags(fs)
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Explicit mapping
	_ = viper.BindEnv("data_source", "DATA_SOURCE")
	_ = viper.BindEnv("redis_addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis_password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis_db", "REDIS_DB")
	_ = viper.BindEnv("settings_file", "SETTINGS_FILE")
	_ = viper.BindEnv("http_addr", "HTTP_ADDR")
}

func LoadConfig() (*AppConfig, error) {
	// Local development convenience; the file is optional.
	_ = godotenv.Load()

	configFile := getConfigFilePath()
	if configFile != "" {
		if err := loadFromFile(configFile); err != nil {
			return nil, err
		}
	}

	cfg := buildAppConfig(configFile)
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func getConfigFilePath() string {
	file := viper.GetString("config_file")
	if file == "" {
		file = os.Getenv("ORDER_CSV_EXPORTER_CONFIG_FILE")
	}
	return file
}

func loadFromFile(path string) error {
	viper.SetConfigFile(path)
	viper.SetConfigType("json")
	if err := viper.ReadInConfig(); err != nil {
		return errors.New(fmt.Sprintf("could not load config file: %s", err.Error()))
	}
	return nil
}

func buildAppConfig(file string) *AppConfig {
	return &AppConfig{
		File:     file,
		Database: &DatabaseConfig{Url: viper.GetString("data_source")},
		Export: &ExportConfig{
			Workers:      viper.GetInt("workers"),
			SettingsFile: viper.GetString("settings_file"),
			PidFile:      viper.GetString("pid_file"),
		},
		Redis: &RedisConfig{
			Addr:     viper.GetString("redis_addr"),
			Password: viper.GetString("redis_password"),
			DB:       viper.GetInt("redis_db"),
		},
		HTTP: &HTTPConfig{Addr: viper.GetString("http_addr")},
	}
}

func validateConfig(cfg *AppConfig) error {
	if cfg.Database.Url == "" {
		return errors.New("Data source is required")
	}
	if cfg.Redis.Addr == "" {
		return errors.New("Redis address is required")
	}
	if cfg.Export.SettingsFile == "" {
		return errors.New("Settings file is required")
	}
	if cfg.HTTP.Addr == "" {
		return errors.New("HTTP address is required")
	}
	return nil
}
