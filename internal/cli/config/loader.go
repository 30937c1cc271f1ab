package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix prefixes every environment variable read by Load. A double
// underscore separates nesting levels: NAVSHELL_SERVE__PORT sets serve.port.
const EnvPrefix = "NAVSHELL_"

// FileNames are searched in the working directory when no config file is
// given explicitly.
var FileNames = []string{"navshell.yaml", "navshell.yml"}

// flagKeys maps CLI flag names to config keys. Flags not listed here are
// not configuration.
var flagKeys = map[string]string{
	"menu":          "menu",
	"log-level":     "log_level",
	"log-format":    "log_format",
	"port":          "serve.port",
	"initial-width": "serve.initial_width",
	"session-ttl":   "serve.session_ttl",
	"dev":           "serve.dev",
	"cell-width":    "tui.cell_width",
}

// findConfigFile finds the config file to use.
// Priority: explicit path > navshell.yaml > navshell.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range FileNames {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load loads configuration from file, environment variables, and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults.
// Only flags that were explicitly set override other sources.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	d := Default()
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"menu":                 d.Menu,
		"log_level":            d.LogLevel,
		"log_format":           d.LogFormat,
		"serve.port":           d.Serve.Port,
		"serve.auto_open":      d.Serve.AutoOpen,
		"serve.initial_width":  d.Serve.InitialWidth,
		"serve.session_ttl":    d.Serve.SessionTTL,
		"serve.session_secret": d.Serve.SessionSecret,
		"serve.dev":            d.Serve.Dev,
		"tui.cell_width":       d.TUI.CellWidth,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment variables (NAVSHELL_ prefix)
	// Transform: NAVSHELL_SERVE__SESSION_TTL -> serve.session_ttl
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			// --no-browser is the negation of serve.auto_open
			if f.Name == "no-browser" {
				noBrowser, _ := flags.GetBool("no-browser")
				return "serve.auto_open", !noBrowser
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal and validate
	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
