package config

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// ServerConfig defines the HTTP listener of the prediction API.
type ServerConfig struct {
	Host  string `json:"host"`
	Port  string `json:"port"`
	Debug bool   `json:"debug"`
	// ReadTimeoutSeconds and WriteTimeoutSeconds bound a single request.
	ReadTimeoutSeconds  int `json:"read_timeout_seconds"`
	WriteTimeoutSeconds int `json:"write_timeout_seconds"`
	// MaxBodyBytes caps the request body size.
	MaxBodyBytes int64 `json:"max_body_bytes"`
	// CORSOrigins lists allowed origins; "*" allows any.
	CORSOrigins []string `json:"cors_origins"`
}

// SetDefaults applies sane defaults.
func (c *ServerConfig) SetDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == "" {
		c.Port = "5000"
	}
	if c.ReadTimeoutSeconds <= 0 {
		c.ReadTimeoutSeconds = 15
	}
	if c.WriteTimeoutSeconds <= 0 {
		c.WriteTimeoutSeconds = 15
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 1 << 20
	}
	if len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}
}

// Validate checks mandatory fields.
func (c ServerConfig) Validate() error {
	p, err := strconv.Atoi(c.Port)
	if err != nil || p < 0 || p > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}

// Addr returns the listen address.
func (c ServerConfig) Addr() string { return net.JoinHostPort(c.Host, c.Port) }

// ReadTimeout returns the per-request read timeout.
func (c ServerConfig) ReadTimeout() time.Duration {
	return time.Duration(c.ReadTimeoutSeconds) * time.Second
}

// WriteTimeout returns the per-request write timeout.
func (c ServerConfig) WriteTimeout() time.Duration {
	return time.Duration(c.WriteTimeoutSeconds) * time.Second
}
