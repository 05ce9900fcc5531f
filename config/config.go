package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config is tanuki config struct. All fields are environment-sourced and
// validated once at startup; the struct is not mutated afterwards.
type Config struct {
	HostAddr   string
	HTTPPort   int
	DefaultISO string
}

// Environment variable names.
const (
	EnvHostAddr   = "HOST_ADDR"
	EnvHTTPPort   = "HTTP_PORT"
	EnvISODefault = "ISO_DEFAULT"
)

// Load reads the configuration from the environment.
// A missing HOST_ADDR is fatal before any output is written.
func Load() (*Config, error) {
	c := &Config{
		HostAddr:   os.Getenv(EnvHostAddr),
		HTTPPort:   80,
		DefaultISO: os.Getenv(EnvISODefault),
	}
	if c.HostAddr == "" {
		return nil, fmt.Errorf("%s is required", EnvHostAddr)
	}
	if v := os.Getenv(EnvHTTPPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s %s: %w", EnvHTTPPort, v, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s %d", EnvHTTPPort, port)
		}
		c.HTTPPort = port
	}
	return c, nil
}

// BaseURL returns the HTTP base URL clients use to fetch ISO images and
// NoCloud seed data. Port 80 is omitted.
func (c *Config) BaseURL() string {
	if c.HTTPPort == 80 {
		return fmt.Sprintf("http://%s", c.HostAddr)
	}
	return fmt.Sprintf("http://%s:%d", c.HostAddr, c.HTTPPort)
}
