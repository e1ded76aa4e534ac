// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Counter  CounterConfig  `toml:"counter"`
	Feedback FeedbackConfig `toml:"feedback"`
	Store    StoreConfig    `toml:"store"`
	Reminder ReminderConfig `toml:"reminder"`
	Log      LogConfig      `toml:"log"`
}

// CounterConfig maps counter-related settings.
type CounterConfig struct {
	Mode       *string `toml:"mode"`
	Milestones []int   `toml:"milestones"`
	Theme      *string `toml:"theme"`
}

// FeedbackConfig maps the initial sound and haptic toggles. Values toggled
// in the app take precedence once saved.
type FeedbackConfig struct {
	Sound  *bool `toml:"sound"`
	Haptic *bool `toml:"haptic"`
}

// StoreConfig selects where counter state is kept.
type StoreConfig struct {
	Backend       *string `toml:"backend"`
	DBPath        *string `toml:"db"`
	RedisAddr     *string `toml:"redis-addr"`
	RedisPassword *string `toml:"redis-password"`
	RedisDB       *int    `toml:"redis-db"`
}

// ReminderConfig maps reminder delivery settings.
type ReminderConfig struct {
	Notifier *string `toml:"notifier"`
}

// LogConfig maps log settings.
type LogConfig struct {
	Level *string `toml:"level"`
	Path  *string `toml:"path"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
