// Package config loads dashboard settings from a YAML file. Every field
// has a working default; a missing config file is not an error.
package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	UI     UIConfig     `yaml:"ui"`
	Source SourceConfig `yaml:"source"`
}

type UIConfig struct {
	Refresh       time.Duration `yaml:"refresh"`
	HistoryWindow int           `yaml:"history_window"`
	GracePeriod   time.Duration `yaml:"grace_period"`
}

type SourceConfig struct {
	BrokerURL   string        `yaml:"broker_url"`
	SysInterval time.Duration `yaml:"sys_interval"`
}

func defaultConfig() *Config {
	return &Config{
		UI: UIConfig{
			Refresh:       100 * time.Millisecond,
			HistoryWindow: 80,
			GracePeriod:   2 * time.Second,
		},
		Source: SourceConfig{
			SysInterval: 2 * time.Second,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault reads the config at path, falling back to defaults when
// the file does not exist. A file that exists but fails to parse is
// still an error.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return defaultConfig(), nil
	}
	return cfg, err
}
