// Package config provides configuration management for the navshell CLI.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Default configuration values.
const (
	DefaultPort         = 8765
	DefaultInitialWidth = 1024
	DefaultSessionTTL   = 30 * time.Minute
	DefaultCellWidth    = 8
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

// Config holds all CLI configuration options.
type Config struct {
	// Menu is the path to the menu YAML file. Empty uses the built-in menu.
	Menu      string      `koanf:"menu"`
	LogLevel  string      `koanf:"log_level"`
	LogFormat string      `koanf:"log_format"`
	Serve     ServeConfig `koanf:"serve"`
	TUI       TUIConfig   `koanf:"tui"`

	// File is the config file that was loaded, if any.
	File string `koanf:"-"`
}

// ServeConfig holds configuration for the web shell server.
type ServeConfig struct {
	Port          int           `koanf:"port"`
	AutoOpen      bool          `koanf:"auto_open"`
	InitialWidth  int           `koanf:"initial_width"`
	SessionTTL    time.Duration `koanf:"session_ttl"`
	SessionSecret string        `koanf:"session_secret"`
	Dev           bool          `koanf:"dev"`
}

// TUIConfig holds configuration for the terminal shell.
type TUIConfig struct {
	CellWidth int `koanf:"cell_width"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Serve: ServeConfig{
			Port:         DefaultPort,
			AutoOpen:     true,
			InitialWidth: DefaultInitialWidth,
			SessionTTL:   DefaultSessionTTL,
		},
		TUI: TUIConfig{CellWidth: DefaultCellWidth},
	}
}

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid configuration")

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port %d out of range", c.Serve.Port))
	}
	if c.Serve.InitialWidth <= 0 {
		errs = append(errs, fmt.Errorf("serve.initial_width must be positive, got %d", c.Serve.InitialWidth))
	}
	if c.Serve.SessionTTL <= 0 {
		errs = append(errs, fmt.Errorf("serve.session_ttl must be positive, got %s", c.Serve.SessionTTL))
	}
	if c.TUI.CellWidth <= 0 {
		errs = append(errs, fmt.Errorf("tui.cell_width must be positive, got %d", c.TUI.CellWidth))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}
