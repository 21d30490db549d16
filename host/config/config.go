// Package config loads the host tool's YAML configuration.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the host tool settings.
type Config struct {
	// Device is the serial device path of the probe firmware.
	Device string `yaml:"device"`

	// Baud is nominal only; the probe firmware is USB CDC.
	Baud int `yaml:"baud"`

	// ReadTimeoutMs is the serial read timeout in milliseconds.
	ReadTimeoutMs int `yaml:"read_timeout_ms"`

	// ReplyTimeoutMs bounds the wait for a single command reply.
	ReplyTimeoutMs int `yaml:"reply_timeout_ms"`

	// DevAddr is OR-folded into wire opcodes exactly as given, so it
	// carries the device address bits pre-shifted.
	DevAddr uint8 `yaml:"dev_addr"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device:         "/dev/ttyACM0",
		Baud:           115200,
		ReadTimeoutMs:  100,
		ReplyTimeoutMs: 2000,
	}
}

// Load reads a YAML config file and overlays it on the defaults.
func Load(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Device == "" {
		return fmt.Errorf("device must not be empty")
	}
	if cfg.Baud <= 0 {
		return fmt.Errorf("baud must be positive, got %d", cfg.Baud)
	}
	if cfg.ReadTimeoutMs < 0 {
		return fmt.Errorf("read_timeout_ms must not be negative, got %d", cfg.ReadTimeoutMs)
	}
	if cfg.ReplyTimeoutMs <= 0 {
		return fmt.Errorf("reply_timeout_ms must be positive, got %d", cfg.ReplyTimeoutMs)
	}
	return nil
}
