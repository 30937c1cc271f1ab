package config

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "navshell.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func testFlags() *pflag.FlagSet {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("menu", "", "menu file")
	flags.String("log-level", DefaultLogLevel, "log level")
	flags.Int("port", 0, "port")
	flags.Bool("no-browser", false, "no browser")
	flags.Duration("session-ttl", 0, "session ttl")
	flags.Int("cell-width", 0, "cell width")
	flags.String("config", "", "config file")
	return flags
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, DefaultPort, cfg.Serve.Port)
	assert.True(t, cfg.Serve.AutoOpen)
	assert.Equal(t, DefaultInitialWidth, cfg.Serve.InitialWidth)
	assert.Equal(t, DefaultSessionTTL, cfg.Serve.SessionTTL)
	assert.Equal(t, DefaultCellWidth, cfg.TUI.CellWidth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.Menu)
	assert.Empty(t, cfg.File)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `menu: ./menu.yaml
log_level: debug
serve:
  port: 9000
  auto_open: false
  session_ttl: 45m
tui:
  cell_width: 10
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "./menu.yaml", cfg.Menu)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.False(t, cfg.Serve.AutoOpen)
	assert.Equal(t, 45*time.Minute, cfg.Serve.SessionTTL)
	assert.Equal(t, DefaultInitialWidth, cfg.Serve.InitialWidth, "unset keys keep defaults")
	assert.Equal(t, 10, cfg.TUI.CellWidth)
	assert.Equal(t, path, cfg.File)
}

func TestLoad_DiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "navshell.yml"), []byte("serve:\n  port: 7000\n"), 0600))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Serve.Port)
	assert.Equal(t, "navshell.yml", cfg.File)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

// TestLoad_EnvPrecedenceOverFile tests that env vars override config file.
func TestLoad_EnvPrecedenceOverFile(t *testing.T) {
	path := writeConfig(t, "serve:\n  port: 9000\nmenu: from_file\n")
	t.Setenv("NAVSHELL_SERVE__PORT", "9100")
	t.Setenv("NAVSHELL_MENU", "from_env")
	t.Setenv("NAVSHELL_SERVE__SESSION_SECRET", "s3cret")

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Serve.Port)
	assert.Equal(t, "from_env", cfg.Menu)
	assert.Equal(t, "s3cret", cfg.Serve.SessionSecret)
}

// TestLoad_FlagPrecedence tests that explicitly set flags win over env and file.
func TestLoad_FlagPrecedence(t *testing.T) {
	path := writeConfig(t, "menu: from_file\nserve:\n  port: 9000\n")
	t.Setenv("NAVSHELL_MENU", "from_env")

	flags := testFlags()
	require.NoError(t, flags.Set("menu", "from_flag"))
	require.NoError(t, flags.Set("port", "9200"))
	require.NoError(t, flags.Set("no-browser", "true"))
	require.NoError(t, flags.Set("session-ttl", "5m"))
	require.NoError(t, flags.Set("cell-width", "6"))

	cfg, err := Load(path, flags)
	require.NoError(t, err)

	assert.Equal(t, "from_flag", cfg.Menu)
	assert.Equal(t, 9200, cfg.Serve.Port)
	assert.False(t, cfg.Serve.AutoOpen)
	assert.Equal(t, 5*time.Minute, cfg.Serve.SessionTTL)
	assert.Equal(t, 6, cfg.TUI.CellWidth)
}

// TestLoad_FlagNotSetUsesEnv tests that unset flags fall back to env vars.
func TestLoad_FlagNotSetUsesEnv(t *testing.T) {
	path := writeConfig(t, "menu: from_file\n")
	t.Setenv("NAVSHELL_MENU", "from_env")

	cfg, err := Load(path, testFlags())
	require.NoError(t, err)

	assert.Equal(t, "from_env", cfg.Menu)
	assert.Equal(t, DefaultPort, cfg.Serve.Port, "unset flag default does not override")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		yaml      string
		errSubstr string
	}{
		{name: "port", yaml: "serve:\n  port: 70000\n", errSubstr: "serve.port"},
		{name: "initial width", yaml: "serve:\n  initial_width: 0\n", errSubstr: "serve.initial_width"},
		{name: "cell width", yaml: "tui:\n  cell_width: -1\n", errSubstr: "tui.cell_width"},
		{name: "log format", yaml: "log_format: xml\n", errSubstr: "log_format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.yaml), nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	logger, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)
	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"key":"value"`)

	_, err = NewLogger(&buf, "loud", "text")
	assert.Error(t, err)

	_, err = NewLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestContextAccessors(t *testing.T) {
	ctx := context.Background()

	assert.NotNil(t, GetLogger(ctx), "discard fallback")
	assert.Equal(t, DefaultPort, GetConfig(ctx).Serve.Port)

	cfg := Default()
	cfg.Menu = "custom.yaml"
	logger, err := NewLogger(&bytes.Buffer{}, "debug", "text")
	require.NoError(t, err)

	ctx = WithLogger(WithConfig(ctx, cfg), logger)
	assert.Same(t, cfg, GetConfig(ctx))
	assert.Same(t, logger, GetLogger(ctx))
}
