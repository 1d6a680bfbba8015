package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/traveldelay/core/factory"
	"github.com/kilianp07/traveldelay/core/metrics"
	"github.com/kilianp07/traveldelay/core/prediction"
)

type Config struct {
	Server    ServerConfig         `json:"server"`
	Estimator factory.ModuleConfig `json:"estimator"`
	Metrics   metrics.Config       `json:"metrics"`
	Logging   LoggingConfig        `json:"logging"`
	Sentry    SentryConfig         `json:"sentry"`
}

// Load reads the optional configuration file at path, then applies
// environment overrides: K_SECTION__KEY for any setting, followed by PORT,
// APP_ENV and FLASK_ENV for the server.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides: K_SERVER__PORT -> server.port
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	if err := k.Load(env.ProviderWithValue("", ".", serviceEnv), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// serviceEnv maps the plain service variables onto configuration keys.
// The debug variables can only switch debug mode on.
func serviceEnv(key, value string) (string, any) {
	switch key {
	case "PORT":
		if strings.TrimSpace(value) != "" {
			return "server.port", strings.TrimSpace(value)
		}
	case "APP_ENV", "FLASK_ENV":
		if isDevEnv(value) {
			return "server.debug", true
		}
	}
	return "", nil
}

func isDevEnv(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "dev" || v == "development"
}

// SetDefaults applies defaults to every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	if c.Logging.Level == "" && c.Server.Debug {
		c.Logging.Level = "debug"
	}
	c.Logging.SetDefaults()
	if c.Estimator.Type == "" {
		c.Estimator.Type = prediction.DefaultEstimator
	}
	if c.Metrics.PrometheusPort == "" {
		c.Metrics.PrometheusPort = ":9100"
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	if err := c.Sentry.Validate(); err != nil {
		return fmt.Errorf("sentry: %w", err)
	}
	return nil
}
