// Package config loads the alertd TOML configuration with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	General    GeneralConfig    `toml:"general"`
	Storage    StorageConfig    `toml:"storage"`
	Evaluation EvaluationConfig `toml:"evaluation"`
	Metrics    MetricsConfig    `toml:"metrics"`
	Logging    LoggingConfig    `toml:"logging"`
}

type GeneralConfig struct {
	DataDir  string `toml:"data_dir"`
	Hostname string `toml:"hostname"`
}

type StorageConfig struct {
	// DBPath holds alert rules and alert history.
	DBPath string `toml:"db_path"`
	// MetricsDBPath holds pipeline events and performance samples.
	MetricsDBPath string `toml:"metrics_db_path"`
}

type EvaluationConfig struct {
	Workers              int           `toml:"workers"`
	ProbeTimeout         string        `toml:"probe_timeout"`
	DefaultWindowMinutes int           `toml:"default_window_minutes"`
	ProbeTimeoutD        time.Duration `toml:"-"`
}

type MetricsConfig struct {
	// PushgatewayURL, when set, has each evaluation run push its
	// instrumentation to a Prometheus Pushgateway. Empty disables the push.
	PushgatewayURL string `toml:"pushgateway_url"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".alertd")

	return &Config{
		General: GeneralConfig{
			DataDir:  dataDir,
			Hostname: "",
		},
		Storage: StorageConfig{
			DBPath:        filepath.Join(dataDir, "alerts.db"),
			MetricsDBPath: filepath.Join(dataDir, "metrics.db"),
		},
		Evaluation: EvaluationConfig{
			Workers:              4,
			ProbeTimeout:         "5s",
			DefaultWindowMinutes: 60,
		},
		Metrics: MetricsConfig{
			PushgatewayURL: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			File:   "",
		},
	}
}

func LoadFromFile(path string) (*Config, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("expand path: %w", err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("decode TOML: %w", err)
	}

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	return cfg, nil
}

func (c *Config) postProcess() error {
	var err error

	if c.Evaluation.ProbeTimeoutD, err = time.ParseDuration(c.Evaluation.ProbeTimeout); err != nil {
		return fmt.Errorf("parse evaluation.probe_timeout: %w", err)
	}

	c.General.DataDir, err = expandPath(c.General.DataDir)
	if err != nil {
		return fmt.Errorf("expand general.data_dir: %w", err)
	}

	c.Storage.DBPath, err = expandPath(c.Storage.DBPath)
	if err != nil {
		return fmt.Errorf("expand storage.db_path: %w", err)
	}

	c.Storage.MetricsDBPath, err = expandPath(c.Storage.MetricsDBPath)
	if err != nil {
		return fmt.Errorf("expand storage.metrics_db_path: %w", err)
	}

	c.Logging.File, err = expandPath(c.Logging.File)
	if err != nil {
		return fmt.Errorf("expand logging.file: %w", err)
	}

	return nil
}

func (c *Config) Validate() error {
	if c.Evaluation.Workers < 1 {
		return fmt.Errorf("evaluation.workers must be at least 1, got %d", c.Evaluation.Workers)
	}

	if c.Evaluation.ProbeTimeoutD <= 0 {
		return fmt.Errorf("evaluation.probe_timeout must be positive, got %s", c.Evaluation.ProbeTimeout)
	}

	if c.Evaluation.DefaultWindowMinutes < 1 {
		return fmt.Errorf("evaluation.default_window_minutes must be at least 1, got %d", c.Evaluation.DefaultWindowMinutes)
	}

	if c.Storage.DBPath == "" {
		return fmt.Errorf("storage.db_path cannot be empty")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("invalid logging level: %s (valid: debug, info, warn, error)", c.Logging.Level)
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		return fmt.Errorf("invalid logging format: %s (valid: json, text)", c.Logging.Format)
	}

	return nil
}

func ApplyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ALERTD_DATA_DIR"); v != "" {
		cfg.General.DataDir = v
	}
	if v := os.Getenv("ALERTD_HOSTNAME"); v != "" {
		cfg.General.Hostname = v
	}
	if v := os.Getenv("ALERTD_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("ALERTD_METRICS_DB_PATH"); v != "" {
		cfg.Storage.MetricsDBPath = v
	}
	if v := os.Getenv("ALERTD_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.Workers = n
		}
	}
	if v := os.Getenv("ALERTD_PROBE_TIMEOUT"); v != "" {
		cfg.Evaluation.ProbeTimeout = v
	}
	if v := os.Getenv("ALERTD_DEFAULT_WINDOW_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Evaluation.DefaultWindowMinutes = n
		}
	}
	if v := os.Getenv("ALERTD_PUSHGATEWAY_URL"); v != "" {
		cfg.Metrics.PushgatewayURL = v
	}
	if v := os.Getenv("ALERTD_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ALERTD_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("ALERTD_LOG_FILE"); v != "" {
		cfg.Logging.File = v
	}
}

func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get user home directory: %w", err)
		}
		return filepath.Join(homeDir, path[2:]), nil
	}

	return path, nil
}

func Load(configPath string) (*Config, error) {
	var cfg *Config
	var err error

	if configPath != "" {
		cfg, err = LoadFromFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("load config from %s: %w", configPath, err)
		}
	} else {
		cfg = Default()
	}

	ApplyEnvOverrides(cfg)

	if err := cfg.postProcess(); err != nil {
		return nil, fmt.Errorf("post process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}
