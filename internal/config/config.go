// Package config loads the godb-server configuration file.
package config

import (
	"net"
	"os"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// DefaultListen is the address served when the file does not set one.
const DefaultListen = "127.0.0.1:10000"

// Config is the server configuration.
type Config struct {
	Listen   string        `yaml:"listen"`
	LogLevel string        `yaml:"log_level"`
	Session  SessionConfig `yaml:"session"`
}

// SessionConfig holds values applied to every submitted statement that does
// not set them itself.
type SessionConfig struct {
	Defaults map[string]string `yaml:"defaults"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Listen:   DefaultListen,
		LogLevel: "info",
		Session:  SessionConfig{Defaults: map[string]string{}},
	}
}

// Load reads the configuration at path. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, errors.Wrap(err, "Unable to read the configuration file")
	}

	if err := Parse(content, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes a YAML document over c and validates the result.
func Parse(content []byte, c *Config) error {
	if err := yaml.UnmarshalStrict(content, c); err != nil {
		return errors.Wrap(err, "Unable to decode the configuration")
	}

	// Fill in defaults.
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Session.Defaults == nil {
		c.Session.Defaults = map[string]string{}
	}

	return c.Validate()
}

// Validate checks the listen address and log level.
func (c *Config) Validate() error {
	_, port, err := net.SplitHostPort(c.Listen)
	if err != nil {
		return errors.Wrapf(err, "Invalid listen address %q", c.Listen)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return errors.Newf("Invalid listen port %q", port)
	}

	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return errors.Wrapf(err, "Invalid log level %q", c.LogLevel)
	}

	for k := range c.Session.Defaults {
		if k == "" {
			return errors.New("Empty session default key")
		}
	}
	return nil
}
