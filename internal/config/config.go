package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rflorenc/lxd-resource-dashboard/internal/models"
)

// TokenEnv names the environment variable that supplies the inventory token
// when the config file leaves it empty.
const TokenEnv = "LXD_DASHBOARD_TOKEN"

// SourceConfig describes the inventory source in the config file.
type SourceConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"` // "inventory" or "incus"
	Scheme     string `yaml:"scheme"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Token      string `yaml:"token"`
	Insecure   bool   `yaml:"insecure"`
	CACertFile string `yaml:"ca_cert_file"`
	Socket     string `yaml:"socket"` // incus only
}

// Config holds all configuration (config file + CLI flags).
type Config struct {
	Listen         string        `yaml:"listen"`
	LogLevel       string        `yaml:"log_level"`
	Dev            bool          `yaml:"-"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	Source         SourceConfig  `yaml:"source"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Listen:         ":8080",
		LogLevel:       "info",
		RequestTimeout: 10 * time.Second,
		CacheTTL:       0, // no expiry; data stays until refreshed
		MaxConcurrency: 4,
		Source: SourceConfig{
			Name: "inventory",
			Type: "inventory",
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults. The token falls back to the environment.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := c.loadFile(path); err != nil {
			return nil, err
		}
	}
	if c.Source.Token == "" {
		c.Source.Token = os.Getenv(TokenEnv)
	}
	return c, nil
}

// loadFile overlays values present in the file onto c.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("listen address is required")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative")
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1")
	}
	switch c.Source.Type {
	case "", "inventory":
		if c.Source.Host == "" {
			return fmt.Errorf("source.host is required for inventory sources")
		}
	case "incus", "lxd":
	default:
		return fmt.Errorf("unknown source.type %q", c.Source.Type)
	}
	return nil
}

// Connection builds the source connection, reading the CA bundle if set.
func (c *Config) Connection() (*models.Connection, error) {
	conn := &models.Connection{
		Name:     c.Source.Name,
		Type:     c.Source.Type,
		Scheme:   c.Source.Scheme,
		Host:     c.Source.Host,
		Port:     c.Source.Port,
		Token:    c.Source.Token,
		Insecure: c.Source.Insecure,
		Socket:   c.Source.Socket,
	}
	if c.Source.CACertFile != "" {
		pem, err := os.ReadFile(c.Source.CACertFile)
		if err != nil {
			return nil, fmt.Errorf("reading CA bundle: %w", err)
		}
		conn.CACert = string(pem)
	}
	conn.ApplyDefaults()
	return conn, nil
}
