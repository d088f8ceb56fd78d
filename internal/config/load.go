package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Load reads and parses the configuration from a YAML file.
func Load(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	if len(cfg.Environments) == 0 {
		return nil, fmt.Errorf("config file %s defines no environments", path)
	}

	return &cfg, nil
}

// Select resolves the named environment, applies defaults and REGISTRAR_*
// environment-variable overrides, and validates the result.
func (c *Config) Select(name string) (*Environment, error) {
	env, ok := c.Environments[name]
	if !ok {
		return nil, fmt.Errorf("environment %q not found in config (have: %s)",
			name, strings.Join(c.environmentNames(), ", "))
	}
	env.Name = name

	if err := envconfig.Process("registrar", &env); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Defaults
	if env.AuthMode == "" {
		env.AuthMode = AuthModeIAM
	}
	if env.PropagationDelay == 0 {
		env.PropagationDelay = DefaultPropagationDelay
	}

	if err := env.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &env, nil
}

func (c *Config) environmentNames() []string {
	names := make([]string, 0, len(c.Environments))
	for name := range c.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
