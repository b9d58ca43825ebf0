// Package config loads dashboard configuration from an optional YAML file and
// DASHBOARD_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix         = "DASHBOARD_"
	AnthropicKeyEnv   = "ANTHROPIC_API_KEY"
	maxConfigFileSize = 1024 * 1024
)

const (
	ProviderBackend   = "backend"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"

	CacheMemory = "memory"
	CacheSQLite = "sqlite"
)

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Backend   BackendConfig   `koanf:"backend"`
	LLM       LLMConfig       `koanf:"llm"`
	Cache     CacheConfig     `koanf:"cache"`
	Report    ReportConfig    `koanf:"report"`
	Poll      PollConfig      `koanf:"poll"`
	Log       LogConfig       `koanf:"log"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Addr            string        `koanf:"addr"`
	WebDir          string        `koanf:"web_dir"`
	StatePath       string        `koanf:"state_path"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type BackendConfig struct {
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`
}

type LLMConfig struct {
	Provider      string        `koanf:"provider"`
	Model         string        `koanf:"model"`
	MaxTokens     int           `koanf:"max_tokens"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerSecond float64       `koanf:"rate_per_second"`
	APIKey        string        `koanf:"-"`
}

type CacheConfig struct {
	Driver       string        `koanf:"driver"`
	Path         string        `koanf:"path"`
	TTL          time.Duration `koanf:"ttl"`
	SnapshotPath string        `koanf:"snapshot_path"`
}

type ReportConfig struct {
	ChromePath    string        `koanf:"chrome_path"`
	RenderTimeout time.Duration `koanf:"render_timeout"`
	MaxConcurrent int           `koanf:"max_concurrent"`
	Theme         string        `koanf:"theme"`
}

type PollConfig struct {
	Interval time.Duration `koanf:"interval"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type TelemetryConfig struct {
	OTLPEndpoint string `koanf:"otlp_endpoint"`
	ServiceName  string `koanf:"service_name"`
	Insecure     bool   `koanf:"insecure"`
}

// Load reads configPath (skipped when empty), then applies environment overrides,
// defaults and validation. Environment keys map section-first:
//
//	DASHBOARD_SERVER_ADDR      -> server.addr
//	DASHBOARD_BACKEND_BASE_URL -> backend.base_url
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		content, err := readConfigFile(configPath)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM.APIKey = strings.TrimSpace(os.Getenv(AnthropicKeyEnv))

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return content, nil
}

// envKey splits on the first underscore after the prefix so field names keep
// their underscores.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.WebDir == "" {
		cfg.Server.WebDir = "web"
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:3001"
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.Timeout <= 0 {
		cfg.Backend.Timeout = 30 * time.Second
	}
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = ProviderBackend
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = "claude-sonnet-4-20250514"
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 1500
	}
	if cfg.LLM.Timeout <= 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
	if cfg.LLM.RatePerSecond <= 0 {
		cfg.LLM.RatePerSecond = 2
	}
	if cfg.Cache.Driver == "" {
		cfg.Cache.Driver = CacheMemory
	}
	cfg.Cache.Driver = strings.ToLower(cfg.Cache.Driver)
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 24 * time.Hour
	}
	if cfg.Cache.Driver == CacheSQLite && cfg.Cache.Path == "" {
		cfg.Cache.Path = "dashboard-cache.db"
	}
	if cfg.Report.RenderTimeout <= 0 {
		cfg.Report.RenderTimeout = 60 * time.Second
	}
	if cfg.Report.MaxConcurrent <= 0 {
		cfg.Report.MaxConcurrent = 2
	}
	if cfg.Report.Theme == "" {
		cfg.Report.Theme = "classic"
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = 5 * time.Second
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Telemetry.ServiceName == "" {
		cfg.Telemetry.ServiceName = "transformation-dashboard"
	}
}

func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case ProviderBackend, ProviderNone:
	case ProviderAnthropic:
		if c.LLM.APIKey == "" {
			errs = append(errs, fmt.Errorf("llm.provider %q requires %s", ProviderAnthropic, AnthropicKeyEnv))
		}
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be one of backend, anthropic, none; got %q", c.LLM.Provider))
	}
	switch c.Cache.Driver {
	case CacheMemory, CacheSQLite:
	default:
		errs = append(errs, fmt.Errorf("cache.driver must be memory or sqlite; got %q", c.Cache.Driver))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format must be json or console; got %q", c.Log.Format))
	}
	if !strings.HasPrefix(c.Backend.BaseURL, "http://") && !strings.HasPrefix(c.Backend.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("backend.base_url must be an http(s) URL; got %q", c.Backend.BaseURL))
	}
	return errors.Join(errs...)
}
