// Package config loads cclive settings from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stwalsh4118/cclive/internal/pathutil"
)

const (
	// DefaultConfigPath is where Load looks when no path is given.
	DefaultConfigPath = "~/.config/cclive/config.yaml"

	// DefaultPage is the dashboard served by a local usage server.
	DefaultPage = "http://localhost:8080/"

	defaultReconnectDelay = 5 * time.Second
	defaultRevealTick     = 25 * time.Millisecond
	defaultRevealSettle   = 2 * time.Second
)

// Config holds every setting. Command-line flags override file values.
type Config struct {
	Page           string       `yaml:"page"`
	Endpoint       string       `yaml:"endpoint,omitempty"`
	ReconnectDelay Duration     `yaml:"reconnect_delay,omitempty"`
	Reveal         RevealConfig `yaml:"reveal"`
	Debug          bool         `yaml:"debug"`
	LogFile        string       `yaml:"log_file,omitempty"`
}

// RevealConfig sets the prompt typewriter timings.
type RevealConfig struct {
	Tick   Duration `yaml:"tick,omitempty"`
	Settle Duration `yaml:"settle,omitempty"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing (e.g., "25ms", "5s").
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = dur
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Page:           DefaultPage,
		ReconnectDelay: Duration{defaultReconnectDelay},
		Reveal: RevealConfig{
			Tick:   Duration{defaultRevealTick},
			Settle: Duration{defaultRevealSettle},
		},
	}
}

// Load reads the configuration at path, or DefaultConfigPath when path is
// empty. Missing files return defaults and no error.
func Load(path string) (*Config, error) {
	configPath := path
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	configPath = pathutil.ExpandPath(configPath)

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", configPath, err)
	}

	normalize(cfg)
	return cfg, nil
}

// Write saves cfg as YAML at path.
func Write(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(pathutil.ExpandPath(path), data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func normalize(cfg *Config) {
	if cfg.Page == "" {
		cfg.Page = DefaultPage
	}
	if cfg.ReconnectDelay.Duration <= 0 {
		cfg.ReconnectDelay.Duration = defaultReconnectDelay
	}
	if cfg.Reveal.Tick.Duration <= 0 {
		cfg.Reveal.Tick.Duration = defaultRevealTick
	}
	if cfg.Reveal.Settle.Duration <= 0 {
		cfg.Reveal.Settle.Duration = defaultRevealSettle
	}
	cfg.Page = pathutil.ExpandPath(cfg.Page)
	if cfg.LogFile != "" {
		cfg.LogFile = pathutil.ExpandPath(cfg.LogFile)
	}
}
