package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults for the resolution-fit render settings. 1568 px is the edge
// length the downstream consumer resizes to anyway, so anything larger
// is wasted bytes.
const (
	DefaultDPI           = 300
	DefaultMaxEdgePixels = 1568
)

// Duration wraps time.Duration so yaml values like "1m" parse directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// StorageConfig describes the S3-compatible backend holding source PDFs
// and rendered images.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// RenderConfig holds the default rasterization parameters. Requests may
// override them per call.
type RenderConfig struct {
	DPI           int `yaml:"dpi"`
	MaxEdgePixels int `yaml:"max_edge_pixels"`
}

// PostgresConfig points at the database holding API tokens.
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type Config struct {
	Server struct {
		Host    string `yaml:"host"`
		Port    string `yaml:"port"`
		Prefork bool   `yaml:"prefork"`
	} `yaml:"server"`

	Storage StorageConfig `yaml:"storage"`
	Render  RenderConfig  `yaml:"render"`

	Limits struct {
		MaxPDFBytes int `yaml:"max_pdf_bytes"`
	} `yaml:"limits"`

	Logger struct {
		File       string `yaml:"file"`
		Level      string `yaml:"level"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
		Compress   bool   `yaml:"compress"`
	} `yaml:"logger"`

	RateLimiter struct {
		Interval          Duration `yaml:"interval"`
		UserLimit         int      `yaml:"user_limit"`
		EnableUserLimiter bool     `yaml:"enable_user_limiter"`
	} `yaml:"rate_limiter"`

	Cache struct {
		RedisHost    string `yaml:"redis_host"`
		RateLimitDB  int    `yaml:"rate_limit_db"`
		UsageDB      int    `yaml:"usage_db"`
		UsageEnabled bool   `yaml:"usage_enabled"`
	} `yaml:"cache"`

	Auth struct {
		Enabled        bool           `yaml:"enabled"`
		ReloadInterval Duration       `yaml:"reload_interval"`
		Postgres       PostgresConfig `yaml:"postgres"`
	} `yaml:"auth"`
}

// Load reads the config file named by CONFIG_PATH, falling back to
// ./config.yaml.
func Load() Config {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	return LoadFrom(path)
}

// LoadFrom reads and validates the config at path. Invalid configuration is
// a programming/deployment error, so it panics rather than limping along.
func LoadFrom(path string) Config {
	body, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Sprintf("config: read %s: %v", path, err))
	}

	var cfg Config
	if err := yaml.Unmarshal(body, &cfg); err != nil {
		panic(fmt.Sprintf("config: parse %s: %v", path, err))
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if err := validate(cfg); err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

// applyEnvOverrides lets container deployments inject storage credentials
// without baking them into the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.Endpoint = v
	}
	if v := os.Getenv("S3_ACCESS_KEY"); v != "" {
		cfg.Storage.AccessKey = v
	}
	if v := os.Getenv("S3_SECRET_KEY"); v != "" {
		cfg.Storage.SecretKey = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Storage.Region = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Render.DPI == 0 {
		cfg.Render.DPI = DefaultDPI
	}
	if cfg.Render.MaxEdgePixels == 0 {
		cfg.Render.MaxEdgePixels = DefaultMaxEdgePixels
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.RateLimiter.Interval == 0 {
		cfg.RateLimiter.Interval = Duration(time.Minute)
	}
	if cfg.Auth.ReloadInterval == 0 {
		cfg.Auth.ReloadInterval = Duration(time.Minute)
	}
}

func validate(cfg Config) error {
	if cfg.Render.DPI <= 0 {
		return fmt.Errorf("render.dpi must be positive, got %d", cfg.Render.DPI)
	}
	if cfg.Render.MaxEdgePixels <= 0 {
		return fmt.Errorf("render.max_edge_pixels must be positive, got %d", cfg.Render.MaxEdgePixels)
	}
	if cfg.Limits.MaxPDFBytes < 0 {
		return fmt.Errorf("limits.max_pdf_bytes must not be negative, got %d", cfg.Limits.MaxPDFBytes)
	}
	if cfg.RateLimiter.UserLimit < 0 {
		return fmt.Errorf("rate_limiter.user_limit must not be negative, got %d", cfg.RateLimiter.UserLimit)
	}
	if cfg.RateLimiter.Interval.Std() <= 0 {
		return fmt.Errorf("rate_limiter.interval must be positive")
	}
	if cfg.Auth.Enabled && cfg.Auth.Postgres.Host == "" {
		return fmt.Errorf("auth.postgres.host is required when auth is enabled")
	}
	return nil
}
