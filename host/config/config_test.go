package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "swiprobe.yaml")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, "device: /dev/ttyACM1\ndev_addr: 0x02\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Device != "/dev/ttyACM1" {
		t.Errorf("Device = %q, want /dev/ttyACM1", cfg.Device)
	}
	if cfg.DevAddr != 0x02 {
		t.Errorf("DevAddr = %d, want 2", cfg.DevAddr)
	}

	// Fields the file does not mention keep their defaults.
	def := Default()
	if cfg.Baud != def.Baud {
		t.Errorf("Baud = %d, want default %d", cfg.Baud, def.Baud)
	}
	if cfg.ReadTimeoutMs != def.ReadTimeoutMs {
		t.Errorf("ReadTimeoutMs = %d, want default %d", cfg.ReadTimeoutMs, def.ReadTimeoutMs)
	}
	if cfg.ReplyTimeoutMs != def.ReplyTimeoutMs {
		t.Errorf("ReplyTimeoutMs = %d, want default %d", cfg.ReplyTimeoutMs, def.ReplyTimeoutMs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Load of a missing file succeeded")
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfig(t, "device: [unterminated\n")
	if _, err := Load(path); err == nil {
		t.Fatal("Load of malformed YAML succeeded")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults", func(c *Config) {}, true},
		{"empty device", func(c *Config) { c.Device = "" }, false},
		{"zero baud", func(c *Config) { c.Baud = 0 }, false},
		{"negative read timeout", func(c *Config) { c.ReadTimeoutMs = -1 }, false},
		{"zero reply timeout", func(c *Config) { c.ReplyTimeoutMs = 0 }, false},
		{"blocking read timeout", func(c *Config) { c.ReadTimeoutMs = 0 }, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)
			err := Validate(cfg)
			if tc.ok && err != nil {
				t.Fatalf("Validate failed: %v", err)
			}
			if !tc.ok && err == nil {
				t.Fatal("Validate accepted a bad config")
			}
		})
	}
}
