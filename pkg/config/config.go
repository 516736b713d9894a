package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultConfigPath is read when present; every setting also has an env override.
const DefaultConfigPath = "config.yaml"

// Config holds all configuration for aecdm-mcp.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (the APS access token) must only come from environment variables.
type Config struct {
	// Server configuration (HTTP transport only)
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"4000"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	// AECDM GraphQL API configuration
	AECDM AECDMConfig `yaml:"aecdm"`

	// Geometry retrieval fan-out
	Geometry GeometryConfig `yaml:"geometry"`

	// Clash analysis defaults
	Clash ClashConfig `yaml:"clash"`

	// Retry behaviour for upstream calls
	Retry RetryConfig `yaml:"retry"`
}

// AECDMConfig holds the AEC Data Model API settings.
type AECDMConfig struct {
	GraphQLURL string `yaml:"graphql_url" env:"AECDM_GRAPHQL_URL" env-default:"https://developer.api.autodesk.com/aec/graphql"`
	// Region is sent as the "region" header when set (e.g. EMEA, AUS).
	Region string `yaml:"region" env:"AECDM_REGION" env-default:""`
	// AccessToken is a three-legged APS token. Secret - not in YAML.
	AccessToken    string        `yaml:"-" env:"APS_ACCESS_TOKEN"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"AECDM_REQUEST_TIMEOUT" env-default:"30s"`
	// MaxPages bounds cursor pagination when listing elements.
	MaxPages int `yaml:"max_pages" env:"AECDM_MAX_PAGES" env-default:"10"`
	PageSize int `yaml:"page_size" env:"AECDM_PAGE_SIZE" env-default:"100"`
}

// GeometryConfig controls concurrent geometry retrieval.
type GeometryConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"GEOMETRY_MAX_CONCURRENT" env-default:"8"`
}

// ClashConfig holds clash analysis defaults.
type ClashConfig struct {
	// DefaultThreshold is the minimum intersection volume, in cubic model units.
	DefaultThreshold float64 `yaml:"default_threshold" env:"CLASH_DEFAULT_THRESHOLD" env-default:"0.01"`
}

// RetryConfig configures exponential backoff for upstream calls.
type RetryConfig struct {
	MaxRetries   int           `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"3"`
	InitialDelay time.Duration `yaml:"initial_delay" env:"RETRY_INITIAL_DELAY" env-default:"200ms"`
	MaxDelay     time.Duration `yaml:"max_delay" env:"RETRY_MAX_DELAY" env-default:"5s"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// A missing config.yaml is not an error; environment variables and defaults
// are used instead. The version parameter is injected at build time.
func Load(version string) (*Config, error) {
	return LoadFrom(DefaultConfigPath, version)
}

// LoadFrom is Load with an explicit config file path.
func LoadFrom(path, version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	} else {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validate checks values that cleanenv cannot.
func (c *Config) validate() error {
	u, err := url.Parse(c.AECDM.GraphQLURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("aecdm.graphql_url must be an absolute URL, got %q", c.AECDM.GraphQLURL)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be one of debug, info, warn, error, got %q", c.LogLevel)
	}

	if c.Clash.DefaultThreshold < 0 {
		return fmt.Errorf("clash.default_threshold must not be negative, got %v", c.Clash.DefaultThreshold)
	}
	if c.Geometry.MaxConcurrent < 1 {
		return fmt.Errorf("geometry.max_concurrent must be at least 1, got %d", c.Geometry.MaxConcurrent)
	}
	if c.AECDM.MaxPages < 1 {
		return fmt.Errorf("aecdm.max_pages must be at least 1, got %d", c.AECDM.MaxPages)
	}
	return nil
}

// ListenAddr returns the HTTP listen address. IPv6 bind addresses are bracketed.
func (c *Config) ListenAddr() string {
	return joinListenAddr(c.BindAddr, c.Port, IsRunningInDocker())
}

func joinListenAddr(addr, port string, inDocker bool) string {
	return net.JoinHostPort(resolveBindAddrForDocker(addr, inDocker), port)
}

// HasAccessToken reports whether an APS token was configured.
func (c *AECDMConfig) HasAccessToken() bool {
	return strings.TrimSpace(c.AccessToken) != ""
}
