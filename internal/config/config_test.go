package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != 1 {
		t.Errorf("Version = %d, want 1", cfg.Version)
	}
	if cfg.DVB.BasePath != "/dev/dvb" {
		t.Errorf("BasePath = %s, want /dev/dvb", cfg.DVB.BasePath)
	}
	if cfg.DVB.Settle.Interval.Duration() != 100*time.Millisecond {
		t.Errorf("Settle.Interval = %s, want 100ms", cfg.DVB.Settle.Interval.Duration())
	}
	if cfg.DVB.Settle.Timeout.Duration() != time.Second {
		t.Errorf("Settle.Timeout = %s, want 1s", cfg.DVB.Settle.Timeout.Duration())
	}
	if !cfg.Server.Enabled || cfg.Server.Addr != ":3010" {
		t.Errorf("Server = %+v, want enabled on :3010", cfg.Server)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path == "" {
		t.Errorf("Journal = %+v, want enabled with a path", cfg.Journal)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
dvb:
  base_path: /srv/dvb
logging:
  debug: true
`)

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.DVB.BasePath != "/srv/dvb" {
		t.Errorf("BasePath = %s, want /srv/dvb", cfg.DVB.BasePath)
	}
	if !cfg.Logging.Debug {
		t.Error("Logging.Debug should be true")
	}
	if cfg.DVB.Settle.Timeout.Duration() != time.Second {
		t.Errorf("Settle.Timeout = %s, want default 1s", cfg.DVB.Settle.Timeout.Duration())
	}
	if cfg.Queues.Hotplug != 64 {
		t.Errorf("Queues.Hotplug = %d, want default 64", cfg.Queues.Hotplug)
	}
}

func TestLoadZeroIntervalMeansFixedSleep(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
dvb:
  settle:
    interval: 0s
    timeout: 2s
`)

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}

	if cfg.DVB.Settle.Interval != 0 {
		t.Errorf("Settle.Interval = %s, want 0", cfg.DVB.Settle.Interval.Duration())
	}
	if cfg.DVB.Settle.Timeout.Duration() != 2*time.Second {
		t.Errorf("Settle.Timeout = %s, want 2s", cfg.DVB.Settle.Timeout.Duration())
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	if _, _, err := LoadFromPath(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	bad := writeConfig(t, dir, "dvb:\n  settle:\n    timeout: soon\n")
	if _, _, err := LoadFromPath(bad); err == nil {
		t.Error("expected error for unparseable duration")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative base path", func(c *Config) { c.DVB.BasePath = "dev/dvb" }, "DVB.BasePath"},
		{"empty base path", func(c *Config) { c.DVB.BasePath = "" }, "DVB.BasePath"},
		{"negative timeout", func(c *Config) { c.DVB.Settle.Timeout = Duration(-time.Second) }, "DVB.Settle.Timeout"},
		{"zero hotplug queue", func(c *Config) { c.Queues.Hotplug = 0 }, "Queues.Hotplug"},
		{"server without addr", func(c *Config) { c.Server.Addr = "" }, "Server.Addr"},
		{"journal without path", func(c *Config) { c.Journal.Path = "" }, "Journal.Path"},
		{"negative retention", func(c *Config) { c.Journal.Retention = Duration(-time.Hour) }, "Journal.Retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("Validate() = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should name %s", err, tt.field)
			}
		})
	}
}

func TestValidateDisabledSectionsNeedNoValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Server = ServerConfig{Enabled: false}
	cfg.Journal = JournalConfig{Enabled: false}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestOverride(t *testing.T) {
	cfg := DefaultConfig()

	cfg.Override("", "")
	if cfg.DVB.BasePath != "/dev/dvb" || cfg.Server.Addr != ":3010" {
		t.Errorf("empty overrides changed config: %+v", cfg)
	}

	cfg.Override("/tmp/dvb", "127.0.0.1:9000")
	if cfg.DVB.BasePath != "/tmp/dvb" {
		t.Errorf("BasePath = %s, want /tmp/dvb", cfg.DVB.BasePath)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Addr = %s, want 127.0.0.1:9000", cfg.Server.Addr)
	}
}

func TestSaveAndLoad(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.DVB.BasePath = "/var/dvb"
	cfg.DVB.Settle.Interval = Duration(250 * time.Millisecond)
	cfg.Server.Enabled = false

	if err := cfg.Save(configPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, path, err := LoadFromPath(configPath)
	if err != nil {
		t.Fatalf("LoadFromPath() error: %v", err)
	}
	if path != configPath {
		t.Errorf("path = %s, want %s", path, configPath)
	}

	if loaded.DVB.BasePath != "/var/dvb" {
		t.Errorf("BasePath = %s, want /var/dvb", loaded.DVB.BasePath)
	}
	if loaded.DVB.Settle.Interval.Duration() != 250*time.Millisecond {
		t.Errorf("Settle.Interval = %s, want 250ms", loaded.DVB.Settle.Interval.Duration())
	}
	if loaded.Server.Enabled {
		t.Error("Server should stay disabled")
	}
}

func TestFindConfigPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", filepath.Join(tmpDir, "home"))
	t.Chdir(tmpDir)

	if found := FindConfigPath(); found != "" && !strings.HasPrefix(found, "/etc/") {
		t.Errorf("FindConfigPath() = %s, want nothing under the temp dir", found)
	}

	xdgPath := filepath.Join(tmpDir, "xdg", ConfigDirName, "config.yaml")
	if err := DefaultConfig().Save(xdgPath); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); found != xdgPath {
		t.Errorf("FindConfigPath() = %s, want %s", found, xdgPath)
	}

	if err := DefaultConfig().Save(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want working directory file", found)
	}

	// explicit path that does not exist falls through
	t.Setenv(EnvConfigPath, filepath.Join(tmpDir, "missing.yaml"))
	if found := FindConfigPath(); filepath.Base(found) != ConfigFileName {
		t.Errorf("FindConfigPath() = %s, want fallback to working directory", found)
	}

	explicit := filepath.Join(tmpDir, "explicit.yaml")
	if err := DefaultConfig().Save(explicit); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	t.Setenv(EnvConfigPath, explicit)
	if found := FindConfigPath(); found != explicit {
		t.Errorf("FindConfigPath() = %s, want %s", found, explicit)
	}
}

func TestDuration(t *testing.T) {
	d := Duration(5 * time.Minute)

	if d.Duration() != 5*time.Minute {
		t.Errorf("Duration() = %s, want 5m", d.Duration())
	}

	marshaled, err := d.MarshalYAML()
	if err != nil {
		t.Fatalf("MarshalYAML() error: %v", err)
	}
	if marshaled != "5m0s" {
		t.Errorf("MarshalYAML() = %v, want 5m0s", marshaled)
	}
}
