package linter

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the linting configuration
type Config struct {
	Version string `yaml:"version"`
	// Rules enables or disables rules by name. Rules not listed are enabled.
	Rules map[string]bool `yaml:"rules"`
	// Severities overrides the default severity of a rule.
	Severities map[string]Severity `yaml:"severities"`
}

// DefaultConfig returns default linting configuration
func DefaultConfig() *Config {
	return &Config{
		Version:    "v1",
		Rules:      make(map[string]bool),
		Severities: make(map[string]Severity),
	}
}

// IsEnabled reports whether the named rule should run
func (c *Config) IsEnabled(name string) bool {
	enabled, ok := c.Rules[name]
	return !ok || enabled
}

// SeverityFor returns the configured severity for a rule, falling back to the
// rule's own default
func (c *Config) SeverityFor(rule Rule) Severity {
	if s, ok := c.Severities[rule.Name()]; ok {
		return s
	}
	return rule.Severity()
}

// LoadConfig loads configuration from a file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadConfigFromDir searches for config file in directory
func LoadConfigFromDir(dir string) (*Config, error) {
	configNames := []string{"protodoc-lint.yaml", "protodoc-lint.yml", ".protodoc-lint.yaml", ".protodoc-lint.yml"}

	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadConfig(path)
		}
	}

	// Return default if no config found
	return DefaultConfig(), nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, path string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}
