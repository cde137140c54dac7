package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config is the server configuration. It is read from portfolio.yaml (if
// present), then PORTFOLIO_* environment variables, e.g.
// PORTFOLIO_CATALOG_BASE_URL → catalog.base_url.
type Config struct {
	Port     string `koanf:"port"`
	LogLevel string `koanf:"log_level"`

	Catalog struct {
		// BaseURL is where /assets/data/projects.json is fetched from.
		// Empty means this server itself.
		BaseURL string        `koanf:"base_url"`
		Timeout time.Duration `koanf:"timeout"`
	} `koanf:"catalog"`

	Listings struct {
		Prerender bool `koanf:"prerender"`
	} `koanf:"listings"`

	Sessions struct {
		TTL time.Duration `koanf:"ttl"`
		Max int           `koanf:"max"`
	} `koanf:"sessions"`

	Diagnostics struct {
		DSN       string        `koanf:"dsn"`
		Expose    bool          `koanf:"expose"`
		Retention time.Duration `koanf:"retention"`
		Cleanup   time.Duration `koanf:"cleanup"`
	} `koanf:"diagnostics"`

	Paths struct {
		Assets string `koanf:"assets"`
		Static string `koanf:"static"`
		Images string `koanf:"images"`
	} `koanf:"paths"`
}

func DefaultConfig() *Config {
	cfg := &Config{
		Port:     "8080",
		LogLevel: "info",
	}
	cfg.Catalog.Timeout = 5 * time.Second
	cfg.Sessions.TTL = 30 * time.Minute
	cfg.Sessions.Max = 10000
	cfg.Diagnostics.DSN = "file::memory:?cache=shared"
	cfg.Diagnostics.Retention = 30 * 24 * time.Hour
	cfg.Diagnostics.Cleanup = time.Hour
	cfg.Paths.Assets = "./assets"
	cfg.Paths.Static = "./static"
	cfg.Paths.Images = "./images"
	return cfg
}

// LoadConfig layers path and the environment over the defaults. A missing
// file is not an error. PORT, when set, wins over everything.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("PORTFOLIO_", ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, "PORTFOLIO_"))
		// first underscore separates the section from the key
		if section, rest, ok := strings.Cut(key, "_"); ok && isConfigSection(section) {
			return section + "." + rest
		}
		return key
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func isConfigSection(s string) bool {
	switch s {
	case "catalog", "listings", "sessions", "diagnostics", "paths":
		return true
	}
	return false
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("port is required")
	}
	if c.Catalog.Timeout < 0 {
		return fmt.Errorf("catalog.timeout must be non-negative")
	}
	if c.Sessions.Max < 0 {
		return fmt.Errorf("sessions.max must be non-negative")
	}
	if c.Diagnostics.DSN == "" {
		return fmt.Errorf("diagnostics.dsn is required")
	}
	if c.Diagnostics.Cleanup <= 0 {
		return fmt.Errorf("diagnostics.cleanup must be positive")
	}
	return nil
}

// CatalogBaseURL resolves the configured base, defaulting to this server.
func (c *Config) CatalogBaseURL() string {
	if base := strings.TrimSpace(c.Catalog.BaseURL); base != "" {
		return base
	}
	return "http://127.0.0.1:" + c.Port
}
