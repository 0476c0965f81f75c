package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/praborrow/diplomacy"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// RelayConfig holds the relay settings after file and flag overlays.
type RelayConfig struct {
	MaxQueueDepth  int
	MaxPayloadSize int
	ReplyPrefix    string
	LogLevel       string
	LogFormat      string
}

// DefaultRelayConfig returns the settings used when no config file is given.
func DefaultRelayConfig() RelayConfig {
	opts := diplomacy.NewOptions()
	return RelayConfig{
		MaxQueueDepth:  opts.MaxQueueDepth,
		MaxPayloadSize: opts.MaxPayloadSize,
		ReplyPrefix:    "",
		LogLevel:       "info",
		LogFormat:      "text",
	}
}

// diplomat.toml key mapping to relay settings.
type fileConfig struct {
	MaxQueueDepth  int    `toml:"max_queue_depth"`
	MaxPayloadSize int    `toml:"max_payload_size"`
	ReplyPrefix    string `toml:"reply_prefix"`
	LogLevel       string `toml:"log_level"`
	LogFormat      string `toml:"log_format"`
}

// diplomat.yaml key mapping; pointers tell unset keys from zero values.
type yamlFileConfig struct {
	MaxQueueDepth  *int    `yaml:"max_queue_depth"`
	MaxPayloadSize *int    `yaml:"max_payload_size"`
	ReplyPrefix    *string `yaml:"reply_prefix"`
	LogLevel       *string `yaml:"log_level"`
	LogFormat      *string `yaml:"log_format"`
}

// loadRelayConfig overlays a TOML or YAML file, chosen by extension, onto
// the defaults. An empty path returns the defaults.
func loadRelayConfig(path string) (RelayConfig, error) {
	cfg := DefaultRelayConfig()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	var err error
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = overlayTOML(path, &cfg)
	case ".yaml", ".yml":
		err = overlayYAML(path, &cfg)
	default:
		err = fmt.Errorf("unsupported config extension %q (expected .toml, .yaml or .yml)", ext)
	}
	if err != nil {
		return RelayConfig{}, fmt.Errorf("load relay config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return RelayConfig{}, fmt.Errorf("load relay config: %w", err)
	}
	return cfg, nil
}

func overlayTOML(path string, cfg *RelayConfig) error {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		logrus.WithFields(logrus.Fields{
			"function": "overlayTOML",
			"path":     path,
			"keys":     fmt.Sprint(undecoded),
		}).Warn("Ignoring unknown config keys")
	}

	if meta.IsDefined("max_queue_depth") {
		cfg.MaxQueueDepth = raw.MaxQueueDepth
	}
	if meta.IsDefined("max_payload_size") {
		cfg.MaxPayloadSize = raw.MaxPayloadSize
	}
	if meta.IsDefined("reply_prefix") {
		cfg.ReplyPrefix = raw.ReplyPrefix
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.TrimSpace(raw.LogFormat)
	}
	return nil
}

func overlayYAML(path string, cfg *RelayConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var raw yamlFileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return err
	}

	if raw.MaxQueueDepth != nil {
		cfg.MaxQueueDepth = *raw.MaxQueueDepth
	}
	if raw.MaxPayloadSize != nil {
		cfg.MaxPayloadSize = *raw.MaxPayloadSize
	}
	if raw.ReplyPrefix != nil {
		cfg.ReplyPrefix = *raw.ReplyPrefix
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = strings.TrimSpace(*raw.LogLevel)
	}
	if raw.LogFormat != nil {
		cfg.LogFormat = strings.TrimSpace(*raw.LogFormat)
	}
	return nil
}

// Validate checks the settings that the registry does not check itself.
func (c RelayConfig) Validate() error {
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (expected text or json)", c.LogFormat)
	}
	return c.Options().Validate()
}

// Options converts the relay settings into registry options.
func (c RelayConfig) Options() *diplomacy.Options {
	return &diplomacy.Options{
		MaxQueueDepth:  c.MaxQueueDepth,
		MaxPayloadSize: c.MaxPayloadSize,
	}
}

// configureLogging applies level and formatter to the global logger.
func configureLogging(c RelayConfig) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)

	if c.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
