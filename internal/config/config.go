// Package config loads the YAML application configuration with environment
// overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/formbridge/formbridge/internal/util"
)

// AppConfig is the root application configuration.
type AppConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Excel    ExcelConfig    `yaml:"excel"`
	AutoFill AutoFillConfig `yaml:"autofill"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DatabaseConfig holds the GORM DSN (sqlite file path or postgres URL).
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RedisConfig enables the definition read-through cache when Addr is set.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ExcelConfig locates the workbooks auto-fill configs reference.
type ExcelConfig struct {
	BaseDir string `yaml:"base_dir"`
}

// AutoFillConfig tunes the resolver's debounce window.
type AutoFillConfig struct {
	DebounceMS int `yaml:"debounce_ms"`
}

// Debounce returns the configured quiet period, or zero when unset so callers
// fall back to the engine default.
func (c AutoFillConfig) Debounce() time.Duration {
	if c.DebounceMS <= 0 {
		return 0
	}
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// LoggingConfig controls log level and optional rotating file output.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
}

// Default returns the configuration used when no file is present.
func Default() AppConfig {
	return AppConfig{
		Server:   ServerConfig{Port: 8318},
		Database: DatabaseConfig{DSN: "data/formbridge.db"},
		Excel:    ExcelConfig{BaseDir: "data/workbooks"},
		AutoFill: AutoFillConfig{DebounceMS: 500},
		Logging:  LoggingConfig{Level: "info", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 14},
	}
}

// Load reads the configuration file at path, falling back to defaults when
// the file does not exist, then applies environment overrides.
func Load(path string) (AppConfig, error) {
	cfg := Default()

	resolved := ResolvePath(path)
	data, err := os.ReadFile(resolved)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("config: read %s: %w", resolved, err)
		}
	} else if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", resolved, errUnmarshal)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

// ResolvePath places relative config paths under WRITABLE_PATH when set.
func ResolvePath(path string) string {
	if path == "" {
		path = "config.yaml"
	}
	if filepath.IsAbs(path) {
		return path
	}
	if base := util.WritablePath(); base != "" {
		return filepath.Join(base, path)
	}
	return path
}

// applyEnvOverrides lets deployments override file values without editing it.
func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv("FORMBRIDGE_PORT")); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Server.Port = port
		}
	}
	if v := strings.TrimSpace(os.Getenv("FORMBRIDGE_DB_DSN")); v != "" {
		cfg.Database.DSN = v
	}
	if v := strings.TrimSpace(os.Getenv("FORMBRIDGE_REDIS_ADDR")); v != "" {
		cfg.Redis.Addr = v
	}
	if v := strings.TrimSpace(os.Getenv("FORMBRIDGE_EXCEL_DIR")); v != "" {
		cfg.Excel.BaseDir = v
	}
	if v := strings.TrimSpace(os.Getenv("FORMBRIDGE_LOG_LEVEL")); v != "" {
		cfg.Logging.Level = v
	}
}
