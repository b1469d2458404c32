// Package config loads platform configuration from YAML with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Logging  LoggingConfig  `yaml:"logging"`
	Auth     AuthConfig     `yaml:"auth"`
	Platform PlatformConfig `yaml:"platform"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	RequestsPerSecond int    `yaml:"requests_per_second"`
	Burst             int    `yaml:"burst"`
}

// DatabaseConfig holds SQL connection settings. An empty DSN selects the
// in-memory stores.
type DatabaseConfig struct {
	Driver          string `yaml:"driver"`
	DSN             string `yaml:"dsn"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime"` // seconds
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	Output     string `yaml:"output"`
	FilePrefix string `yaml:"file_prefix"`
}

// AuthConfig holds bearer token settings.
type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// PlatformConfig holds the tipping parameters an operator may tune.
type PlatformConfig struct {
	Owner           string `yaml:"owner"`
	FeeBasisPoints  uint64 `yaml:"fee_basis_points"`
	MaxTipAmount    uint64 `yaml:"max_tip_amount"`
	RewardThreshold uint64 `yaml:"reward_threshold"`
	RewardRate      uint64 `yaml:"reward_rate"`
}

// Load reads config from CONFIG_PATH (default config.yaml) when the file
// exists, then applies environment overrides. A missing file is not an error;
// defaults plus environment cover container deployments.
func Load() (*Config, error) {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnv(cfg)

	if cfg.Platform.Owner == "" {
		return nil, fmt.Errorf("platform owner is required (set platform.owner or PLATFORM_OWNER)")
	}
	if cfg.Auth.Secret == "" {
		return nil, fmt.Errorf("auth secret is required (set auth.secret or AUTH_SECRET)")
	}

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			RequestsPerSecond: 50,
			Burst:             100,
		},
		Database: DatabaseConfig{
			Driver:          "postgres",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Platform: PlatformConfig{
			FeeBasisPoints:  500,
			MaxTipAmount:    1_000_000_000_000,
			RewardThreshold: 1_000_000,
			RewardRate:      10,
		},
	}
}

func applyEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "SERVER_PORT")
	setString(&cfg.Database.Driver, "DATABASE_DRIVER")
	setString(&cfg.Database.DSN, "DATABASE_DSN")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")
	setString(&cfg.Auth.Secret, "AUTH_SECRET")
	setString(&cfg.Platform.Owner, "PLATFORM_OWNER")
	setUint(&cfg.Platform.FeeBasisPoints, "PLATFORM_FEE_BASIS_POINTS")
	setUint(&cfg.Platform.MaxTipAmount, "PLATFORM_MAX_TIP_AMOUNT")
	setUint(&cfg.Platform.RewardThreshold, "PLATFORM_REWARD_THRESHOLD")
	setUint(&cfg.Platform.RewardRate, "PLATFORM_REWARD_RATE")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*dst = parsed
		}
	}
}

func setUint(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}
