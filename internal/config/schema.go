package config

import (
	"time"
)

// Config is the root configuration structure
type Config struct {
	Version int           `yaml:"version" validate:"min=1"`
	DVB     DVBConfig     `yaml:"dvb"`
	Queues  QueueConfig   `yaml:"queues"`
	Server  ServerConfig  `yaml:"server"`
	Journal JournalConfig `yaml:"journal"`
	Logging LoggingConfig `yaml:"logging"`
}

// DVBConfig locates the device namespace
type DVBConfig struct {
	BasePath string       `yaml:"base_path" validate:"required,startswith=/"`
	Settle   SettleConfig `yaml:"settle"`
}

// SettleConfig controls the wait between an adapter appearing and its
// frontends being enumerated. Interval 0 sleeps for Timeout instead of polling.
type SettleConfig struct {
	Interval Duration `yaml:"interval" validate:"min=0"`
	Timeout  Duration `yaml:"timeout" validate:"min=0"`
}

// QueueConfig sizes the buffered channels between components
type QueueConfig struct {
	Hotplug   int `yaml:"hotplug" validate:"min=1"`
	Discovery int `yaml:"discovery" validate:"min=1"`
}

// ServerConfig holds the status API settings
type ServerConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr" validate:"required_if=Enabled true"`
}

// JournalConfig holds discovery journal settings. Entries older than
// Retention are pruned at startup; 0 keeps everything.
type JournalConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Path      string   `yaml:"path" validate:"required_if=Enabled true"`
	Retention Duration `yaml:"retention" validate:"min=0"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Debug bool `yaml:"debug"`
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
