// Package config holds runtime configuration for apachemgr.
//
// Configuration is layered: defaults, then an optional YAML file, then
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds server configuration.
type Config struct {
	// Host is the address to bind the HTTP server to.
	Host string `yaml:"host" env:"APACHEMGR_HOST"`

	// Port is the TCP port to listen on.
	Port int `yaml:"port" env:"APACHEMGR_PORT"`

	// APIKey is the shared secret required in the X-API-Key header.
	// When empty a random key is generated at startup and logged.
	APIKey string `yaml:"apiKey" env:"MCP_API_KEY"`

	// SitesAvailable is the Apache sites-available directory.
	SitesAvailable string `yaml:"sitesAvailable" env:"APACHEMGR_SITES_AVAILABLE"`

	// SitesEnabled is the Apache sites-enabled directory.
	SitesEnabled string `yaml:"sitesEnabled" env:"APACHEMGR_SITES_ENABLED"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"logLevel" env:"APACHEMGR_LOG_LEVEL"`

	// LogFormat is text or json.
	LogFormat string `yaml:"logFormat" env:"APACHEMGR_LOG_FORMAT"`

	// KeepAliveInterval is the ping cadence on the streaming transport.
	KeepAliveInterval time.Duration `yaml:"keepAliveInterval" env:"APACHEMGR_KEEPALIVE_INTERVAL"`

	// CommandTimeout bounds every shelled-out apachectl invocation.
	CommandTimeout time.Duration `yaml:"commandTimeout" env:"APACHEMGR_COMMAND_TIMEOUT"`

	// ReadTimeout is the HTTP read header timeout. The write side is left
	// unbounded because the SSE and streaming endpoints hold connections open.
	ReadTimeout time.Duration `yaml:"readTimeout" env:"APACHEMGR_READ_TIMEOUT"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Host:              "0.0.0.0",
		Port:              5001,
		SitesAvailable:    "/etc/apache2/sites-available",
		SitesEnabled:      "/etc/apache2/sites-enabled",
		LogLevel:          "info",
		LogFormat:         "text",
		KeepAliveInterval: time.Second,
		CommandTimeout:    30 * time.Second,
		ReadTimeout:       30 * time.Second,
	}
}

// Load builds the effective configuration: defaults, overlaid with the YAML
// file at path (if path is non-empty), overlaid with environment variables.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.SitesAvailable == "" {
		return errors.New("sitesAvailable cannot be empty")
	}
	if c.SitesEnabled == "" {
		return errors.New("sitesEnabled cannot be empty")
	}
	if c.KeepAliveInterval < 100*time.Millisecond {
		return errors.New("keepAliveInterval must be at least 100ms")
	}
	if c.CommandTimeout < time.Second {
		return errors.New("commandTimeout must be at least 1 second")
	}
	return nil
}

// Address returns the listen address for the HTTP server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
