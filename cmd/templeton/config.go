package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/developit/templeton"
	"github.com/microcosm-cc/bluemonday"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// Config holds the engine settings read from the config file.
type Config struct {
	LogLevel       string            `json:"log_level" yaml:"log_level"`
	ExtendedKeys   bool              `json:"extended_keys" yaml:"extended_keys"`
	Helpers        map[string]string `json:"helpers" yaml:"helpers"`
	Refs           map[string]string `json:"refs" yaml:"refs"`
	SanitizePolicy string            `json:"sanitize_policy" yaml:"sanitize_policy"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		ExtendedKeys:   true,
		Helpers:        map[string]string{},
		Refs:           map[string]string{},
		SanitizePolicy: "ugc",
	}
}

// LoadConfig reads the configuration from a YAML or JSON file, chosen by
// extension. If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			var data []byte
			data, err = encodeConfig(path, config)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Defaults are still usable without the file.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isJSON(path) {
		err = json.Unmarshal(file, config)
	} else {
		err = yaml.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err = config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return config, nil
}

func encodeConfig(path string, config *Config) ([]byte, error) {
	if isJSON(path) {
		return json.MarshalIndent(config, "", "  ")
	}
	return yaml.Marshal(config)
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Validate checks the values that cannot be caught while decoding.
func (c *Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.sanitizePolicy(); err != nil {
		return err
	}
	for sigil := range c.Refs {
		if utf8.RuneCountInString(sigil) != 1 {
			return fmt.Errorf("ref sigil %q must be a single character", sigil)
		}
	}
	return nil
}

// Level parses LogLevel; an empty level means info.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return level, nil
}

func (c *Config) sanitizePolicy() (*bluemonday.Policy, error) {
	switch strings.ToLower(c.SanitizePolicy) {
	case "", "ugc":
		return bluemonday.UGCPolicy(), nil
	case "strict":
		return bluemonday.StrictPolicy(), nil
	}
	return nil, fmt.Errorf("unknown sanitize_policy %q, want strict or ugc", c.SanitizePolicy)
}

// EngineOptions translates the configuration into engine options.
func (c *Config) EngineOptions(logger *slog.Logger) ([]templeton.Option, error) {
	policy, err := c.sanitizePolicy()
	if err != nil {
		return nil, err
	}
	opts := []templeton.Option{
		templeton.WithLogger(logger),
		templeton.WithExtendedKeys(c.ExtendedKeys),
		templeton.WithSanitizePolicy(policy),
	}
	for name, tpl := range c.Helpers {
		opts = append(opts, templeton.WithTemplateHelper(name, tpl))
	}
	for sigil, prefix := range c.Refs {
		r, size := utf8.DecodeRuneInString(sigil)
		if size != len(sigil) {
			return nil, fmt.Errorf("ref sigil %q must be a single character", sigil)
		}
		opts = append(opts, templeton.WithRef(r, templeton.PrefixRef(prefix)))
	}
	return opts, nil
}
