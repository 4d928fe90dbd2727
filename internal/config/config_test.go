package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "notif", cfg.Notifications.View)
	assert.Equal(t, 2*time.Second, cfg.Notifications.Timeout.Duration())
	assert.Equal(t, 5*time.Second, cfg.Notifications.MinInterval.Duration())
	assert.Equal(t, 5*time.Second, cfg.Modal.Timeout.Duration())
	assert.Equal(t, "top-right", cfg.Display.Position)
	assert.True(t, cfg.Display.Wrap)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.False(t, cfg.DBus.Enabled)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_DefaultsWhenNoFile(t *testing.T) {
	cfg, err := LoadConfig("/nonexistent/path/config.toml")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfig_ParsesTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[notifications]
view = "toasts"
timeout = "3s"
min_interval = 1000
width = 30

[modal]
timeout = "0"
width = 70

[display]
position = "bottom-left"
margin = 2
wrap = false

[logging]
level = "debug"
file = "/tmp/popstack.log"

[dbus]
enabled = true
mirror = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "toasts", cfg.Notifications.View)
	assert.Equal(t, 3*time.Second, cfg.Notifications.Timeout.Duration())
	assert.Equal(t, time.Second, cfg.Notifications.MinInterval.Duration())
	assert.Equal(t, 30, cfg.Notifications.Width)
	assert.Equal(t, time.Duration(0), cfg.Modal.Timeout.Duration())
	assert.Equal(t, 70, cfg.Modal.Width)
	assert.Equal(t, "bottom-left", cfg.Display.Position)
	assert.Equal(t, 2, cfg.Display.Margin)
	assert.False(t, cfg.Display.Wrap)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "/tmp/popstack.log", cfg.Logging.File)
	assert.True(t, cfg.DBus.Enabled)
	assert.True(t, cfg.DBus.Mirror)
}

func TestLoadConfig_PartialKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[modal]\nwidth = 60\n"), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 60, cfg.Modal.Width)
	assert.Equal(t, DefaultConfig().Notifications, cfg.Notifications)
}

func TestLoadConfig_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[display\nposition ="), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[notifications]\ntimeout = \"soon\"\n"), 0644))

	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "invalid duration")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty view", func(c *Config) { c.Notifications.View = "" }},
		{"negative timeout", func(c *Config) { c.Notifications.Timeout = Duration(-time.Second) }},
		{"narrow toast", func(c *Config) { c.Notifications.Width = 5 }},
		{"wide modal", func(c *Config) { c.Modal.Width = 500 }},
		{"negative margin", func(c *Config) { c.Display.Margin = -1 }},
		{"bad position", func(c *Config) { c.Display.Position = "middle-ish" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "chatty" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Notifications.Timeout = Duration(1500 * time.Millisecond)
	cfg.Display.Position = string(PositionCenter)
	require.NoError(t, cfg.Save(path))

	loaded, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestConfigPath(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	xdg.Reload()
	assert.Equal(t, "/custom/config/popstack/config.toml", ConfigPath())
}
