package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	defaultListenPort = 8090
	defaultLogLevel   = "info"
)

type Config struct {
	ListenPort  int    `yaml:"listen_port"`
	LogLevel    string `yaml:"log_level"`
	MetricsPort int    `yaml:"metrics_port"` // 0 disables the admin listener
}

func DefaultConfig() *Config {
	return &Config{
		ListenPort: defaultListenPort,
		LogLevel:   defaultLogLevel,
	}
}

// ParseConfig reads the YAML file at path on top of the defaults. The result is
// not validated, command line overrides still have to be applied.
func ParseConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	config := DefaultConfig()
	// An empty file decodes to io.EOF and keeps the defaults.
	if err := yaml.NewDecoder(file).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.ListenPort <= 0 || c.ListenPort > 65535 {
		return fmt.Errorf("listen_port %d is out of range [1, 65535]", c.ListenPort)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("metrics_port %d is out of range [0, 65535]", c.MetricsPort)
	}
	if c.MetricsPort == c.ListenPort {
		return fmt.Errorf("metrics_port must differ from listen_port (both %d)", c.ListenPort)
	}
	return nil
}
