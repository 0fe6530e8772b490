// Package config loads the suite configuration describing the device
// under test: where its Node API and Connection API live and which
// versions they advertise.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/nmoscheck/internal/nmos"
)

// API describes one API endpoint on the device under test.
type API struct {
	// URL is the versioned base URL, e.g.
	// "http://device.example:80/x-nmos/node/v1.2/". A trailing slash is
	// added if missing, since resource paths are appended directly.
	URL string `yaml:"url"`

	// Version is the advertised API version, e.g. "v1.2".
	Version string `yaml:"version"`

	version nmos.APIVersion
}

// APIVersion returns the parsed form of Version. Valid after Load.
func (a *API) APIVersion() nmos.APIVersion {
	return a.version
}

// Config is the full suite configuration.
type Config struct {
	Node       API `yaml:"node"`
	Connection API `yaml:"connection"`

	// RequestTimeout bounds each HTTP request. Defaults to 10s.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Load reads and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates configuration bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 10 * time.Second
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	for _, api := range []struct {
		name string
		api  *API
	}{
		{"node", &c.Node},
		{"connection", &c.Connection},
	} {
		if api.api.URL == "" {
			return fmt.Errorf("config: %s.url is required", api.name)
		}
		if !strings.HasPrefix(api.api.URL, "http://") && !strings.HasPrefix(api.api.URL, "https://") {
			return fmt.Errorf("config: %s.url must be an http or https URL", api.name)
		}
		if !strings.HasSuffix(api.api.URL, "/") {
			api.api.URL += "/"
		}

		if api.api.Version == "" {
			return fmt.Errorf("config: %s.version is required", api.name)
		}
		version, err := nmos.ParseAPIVersion(api.api.Version)
		if err != nil {
			return fmt.Errorf("config: %s.version: %w", api.name, err)
		}
		api.api.version = version
	}

	return nil
}
