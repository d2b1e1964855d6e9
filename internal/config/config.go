// Package config provides configuration management for the metv hotplug daemon.
//
// Config file locations (priority order):
//  1. $METV_CONFIG
//  2. ./metv.yaml
//  3. $XDG_CONFIG_HOME/metv/config.yaml
//  4. ~/.config/metv/config.yaml
//  5. /etc/metv/config.yaml
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = errors.New("invalid config")

const (
	defaultBasePath       = "/dev/dvb"
	defaultSettleInterval = 100 * time.Millisecond
	defaultSettleTimeout  = time.Second
	defaultQueueSize      = 64
	defaultAddr           = ":3010"
	defaultJournalPath    = "./metv.db"
)

var validate = validator.New()

// Load finds and loads the config file, or returns defaults if none found
func Load() (*Config, string, error) {
	path := FindConfigPath()

	if path == "" {
		return DefaultConfig(), "", nil
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path. Keys missing from the
// file keep their default values.
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DVB: DVBConfig{
			BasePath: defaultBasePath,
			Settle: SettleConfig{
				Interval: Duration(defaultSettleInterval),
				Timeout:  Duration(defaultSettleTimeout),
			},
		},
		Queues: QueueConfig{
			Hotplug:   defaultQueueSize,
			Discovery: defaultQueueSize,
		},
		Server:  ServerConfig{Enabled: true, Addr: defaultAddr},
		Journal: JournalConfig{Enabled: true, Path: defaultJournalPath},
	}
}

// applyDefaults fills in values that were present but empty
func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.DVB.BasePath == "" {
		c.DVB.BasePath = defaultBasePath
	}
	if c.Queues.Hotplug == 0 {
		c.Queues.Hotplug = defaultQueueSize
	}
	if c.Queues.Discovery == 0 {
		c.Queues.Discovery = defaultQueueSize
	}
	if c.Server.Enabled && c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		c.Journal.Path = defaultJournalPath
	}
}

// Override applies command-line values on top of the file. Empty strings
// leave the file value alone.
func (c *Config) Override(basePath, addr string) {
	if basePath != "" {
		c.DVB.BasePath = basePath
	}
	if addr != "" {
		c.Server.Addr = addr
	}
}

// Validate checks the config and returns an error wrapping ErrInvalid
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	messages := make([]string, len(fieldErrs))
	for i, e := range fieldErrs {
		messages[i] = formatFieldError(e)
	}
	return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(messages, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := e.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch e.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", field)
	case "startswith":
		return fmt.Sprintf("%s must start with %q", field, e.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, e.Tag())
	}
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	summary := fmt.Sprintf("Base: %s, Settle: %s every %s\n",
		c.DVB.BasePath, c.DVB.Settle.Timeout.Duration(), c.DVB.Settle.Interval.Duration())
	summary += fmt.Sprintf("Queues: hotplug=%d discovery=%d\n", c.Queues.Hotplug, c.Queues.Discovery)
	if c.Server.Enabled {
		summary += fmt.Sprintf("Server: %s", c.Server.Addr)
	} else {
		summary += "Server: disabled"
	}
	if c.Journal.Enabled {
		summary += fmt.Sprintf(", Journal: %s", c.Journal.Path)
	} else {
		summary += ", Journal: disabled"
	}
	return summary
}
