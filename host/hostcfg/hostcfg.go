// Package hostcfg holds the dptctl tool configuration: how to reach
// the device, over the network or over a serial cable.
package hostcfg

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the tool configuration.
type Config struct {
	// Addr is the device HTTP address, reachable once joined to the
	// instrument's access point.
	Addr string `yaml:"addr"`

	// Device is the serial device path; when set on the command line
	// it takes precedence over Addr.
	Device string `yaml:"device"`

	// Baud is the serial baud rate.
	Baud int `yaml:"baud"`
}

// Default returns a default configuration with sensible values.
func Default() *Config {
	return &Config{
		Addr: "http://192.168.4.1",
		Baud: 115200,
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()
	return cfg, nil
}

// ensureDefaults ensures that required fields have default values if
// missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Addr == "" {
		c.Addr = def.Addr
	}
	if c.Baud == 0 {
		c.Baud = def.Baud
	}
}
