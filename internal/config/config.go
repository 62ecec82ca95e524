// Package config loads server settings from an optional TOML file, then
// .env.local, then RESP_* environment variables. Later sources win.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"github.com/fzft/go-resp/resp"
)

type Config struct {
	Addr        string
	MetricsAddr string
	LogLevel    string
	ReusePort   bool
	ReadChunk   int
	Limits      resp.Limits
}

func Default() Config {
	return Config{
		Addr:      "127.0.0.1:6380",
		LogLevel:  "info",
		ReadChunk: 16 * 1024,
		Limits:    resp.DefaultLimits(),
	}
}

type fileConfig struct {
	Addr        string `toml:"addr"`
	MetricsAddr string `toml:"metrics_addr"`
	LogLevel    string `toml:"log_level"`
	ReusePort   bool   `toml:"reuse_port"`
	ReadChunk   int    `toml:"read_chunk"`
	MaxBulkLen  int    `toml:"max_bulk_len"`
	MaxElements int    `toml:"max_elements"`
}

// envConfig is processed into a zero value so that only the variables that are
// actually set override earlier sources.
type envConfig struct {
	Addr        string `env:"RESP_ADDR"`
	MetricsAddr string `env:"RESP_METRICS_ADDR"`
	LogLevel    string `env:"RESP_LOG_LEVEL"`
	ReusePort   string `env:"RESP_REUSE_PORT"`
	ReadChunk   int    `env:"RESP_READ_CHUNK"`
	MaxBulkLen  int    `env:"RESP_MAX_BULK_LEN"`
	MaxElements int    `env:"RESP_MAX_ELEMENTS"`
}

// Load builds a Config. path names an optional TOML file; an empty path skips
// it.
func Load(ctx context.Context, path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(".env.local"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env.local: %w", err)
	}

	var env envConfig
	if err := envconfig.Process(ctx, &env); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}
	if err := env.apply(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}

	if meta.IsDefined("addr") {
		cfg.Addr = strings.TrimSpace(raw.Addr)
	}
	if meta.IsDefined("metrics_addr") {
		cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("reuse_port") {
		cfg.ReusePort = raw.ReusePort
	}
	if meta.IsDefined("read_chunk") {
		cfg.ReadChunk = raw.ReadChunk
	}
	if meta.IsDefined("max_bulk_len") {
		cfg.Limits.MaxBulkLen = raw.MaxBulkLen
	}
	if meta.IsDefined("max_elements") {
		cfg.Limits.MaxElements = raw.MaxElements
	}
	return nil
}

func (e envConfig) apply(cfg *Config) error {
	if e.Addr != "" {
		cfg.Addr = e.Addr
	}
	if e.MetricsAddr != "" {
		cfg.MetricsAddr = e.MetricsAddr
	}
	if e.LogLevel != "" {
		cfg.LogLevel = e.LogLevel
	}
	switch strings.ToLower(strings.TrimSpace(e.ReusePort)) {
	case "":
	case "1", "true", "yes", "on":
		cfg.ReusePort = true
	case "0", "false", "no", "off":
		cfg.ReusePort = false
	default:
		return fmt.Errorf("RESP_REUSE_PORT: invalid boolean %q", e.ReusePort)
	}
	if e.ReadChunk != 0 {
		cfg.ReadChunk = e.ReadChunk
	}
	if e.MaxBulkLen != 0 {
		cfg.Limits.MaxBulkLen = e.MaxBulkLen
	}
	if e.MaxElements != 0 {
		cfg.Limits.MaxElements = e.MaxElements
	}
	return nil
}

func (c Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("config: addr is required")
	}
	if c.ReadChunk <= 0 {
		return fmt.Errorf("config: read_chunk must be positive, got %d", c.ReadChunk)
	}
	if c.Limits.MaxBulkLen <= 0 {
		return fmt.Errorf("config: max_bulk_len must be positive, got %d", c.Limits.MaxBulkLen)
	}
	if c.Limits.MaxElements <= 0 {
		return fmt.Errorf("config: max_elements must be positive, got %d", c.Limits.MaxElements)
	}
	return nil
}
