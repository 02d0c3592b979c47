// Package config loads and validates the qwik.json project configuration
// used by the CLI and the demo server.
package config

import (
	"encoding/json"
	"net"
	"os"
	"path/filepath"

	"github.com/GustavoMelloGit/qwik/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "qwik.json"

	// DefaultAddress is the default server listen address.
	DefaultAddress = "localhost:3000"

	// DefaultMetricsNamespace is the default Prometheus namespace.
	DefaultMetricsNamespace = "qwik"
)

// Config represents the complete qwik.json configuration.
type Config struct {
	// Name is the project name.
	Name string `json:"name,omitempty"`

	// Address is the server listen address (host:port).
	Address string `json:"address,omitempty"`

	// Debug enables debug-level logging and the websocket event stream.
	Debug bool `json:"debug,omitempty"`

	// Metrics contains Prometheus configuration.
	Metrics MetricsConfig `json:"metrics,omitempty"`
}

// MetricsConfig contains Prometheus configuration.
type MetricsConfig struct {
	// Enabled exposes the /metrics endpoint.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace is the metrics namespace.
	Namespace string `json:"namespace,omitempty"`
}

// Default returns the configuration used when no qwik.json exists.
func Default() *Config {
	return &Config{
		Address: DefaultAddress,
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultMetricsNamespace,
		},
	}
}

// Load reads qwik.json from dir, applies defaults, and validates.
// A missing file yields the default configuration.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, errors.New("E120").Wrap(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("E120").
			Wrap(err).
			WithSuggestion("check qwik.json for trailing commas or unquoted keys")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Address == "" {
		return errors.New("E121").WithDetail("address must not be empty")
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return errors.New("E122").
			Wrap(err).
			WithSuggestion("use host:port form, e.g. \"localhost:3000\"")
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}
	return nil
}
