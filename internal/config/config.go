// Package config loads normalizer configuration from YAML with environment
// variable overrides for object-store credentials.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Store StoreConfig `yaml:"store"`
	Watch WatchConfig `yaml:"watch,omitempty"`
}

// StoreConfig configures the S3-compatible object store used for asset
// externalization. PublicURL is the externally resolvable base used to build
// links; the endpoint itself is often only reachable inside the deployment.
type StoreConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key,omitempty"`
	SecretKey  string `yaml:"secret_key,omitempty"`
	Bucket     string `yaml:"bucket"`
	Secure     bool   `yaml:"secure"`
	PublicURL  string `yaml:"public_url"`
	Timeout    string `yaml:"timeout,omitempty"`     // per-file upload timeout, e.g. "30s"
	MaxRetries int    `yaml:"max_retries,omitempty"` // extra attempts for a failed upload
}

// TimeoutDuration parses the upload timeout, falling back to the default for
// an empty or malformed value (Validate rejects malformed values earlier).
func (c *StoreConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return DefaultTimeout
	}
	return d
}

// WatchConfig configures daemon mode: a root directory where engines drop
// finished output directories.
type WatchConfig struct {
	Root        string `yaml:"root"`
	Debounce    string `yaml:"debounce,omitempty"` // quiet window, e.g. "2s"
	MetricsAddr string `yaml:"metrics_addr,omitempty"`
}

// DebounceDuration parses the quiet window, falling back to the default.
func (w *WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return DefaultDebounce
	}
	return d
}

// Default values applied by Load when the file omits them.
const (
	DefaultEndpoint = "rustfs:9000"
	DefaultBucket   = "ts-img"
	DefaultTimeout  = 30 * time.Second
	DefaultDebounce = 2 * time.Second
)

// Load loads configuration from the specified file. A missing file is not an
// error; defaults plus environment overrides apply.
func Load(configPath string) (*Config, error) {
	// Load .env file if present so store credentials can live outside YAML.
	loadEnvFile()

	cfg := &Config{
		Store: StoreConfig{
			Enabled:  true,
			Endpoint: DefaultEndpoint,
			Bucket:   DefaultBucket,
		},
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", configPath, err)
			}
		case os.IsNotExist(err):
			// fall through to env/defaults
		default:
			return nil, fmt.Errorf("read config %s: %w", configPath, err)
		}
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Store.Endpoint == "" {
		cfg.Store.Endpoint = DefaultEndpoint
	}
	if cfg.Store.Bucket == "" {
		cfg.Store.Bucket = DefaultBucket
	}
}

// Validate checks invariants that must hold before the store client is built.
// The public URL is the one hard precondition: without it every generated
// link would be unreachable.
func (c *StoreConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Endpoint == "" {
		return fmt.Errorf("store endpoint not configured")
	}
	if c.Bucket == "" {
		return fmt.Errorf("store bucket not configured")
	}
	if c.PublicURL == "" {
		return fmt.Errorf("store public URL not configured (set TIANSHU_STORE_PUBLIC_URL or store.public_url)")
	}
	if c.Timeout != "" {
		if _, err := time.ParseDuration(c.Timeout); err != nil {
			return fmt.Errorf("invalid store timeout %q: %w", c.Timeout, err)
		}
	}
	return nil
}
