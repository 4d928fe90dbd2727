// Package config handles configuration file loading and parsing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Default configuration values.
const (
	DefaultNotifView    = "notif"
	DefaultNotifTimeout = 2 * time.Second
	DefaultMinInterval  = 5 * time.Second
	DefaultModalTimeout = 5 * time.Second
	DefaultModalWidth   = 50
	DefaultNotifWidth   = 40
	DefaultMargin       = 1
	DefaultLogLevel     = "warn"
	DefaultPosition     = PositionTopRight
)

// Duration is a time.Duration that can be unmarshaled from human-readable strings.
// Supports formats like "500ms", "2s", "1m" or integer milliseconds.
// A value of "0" or 0 means never expire.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler for TOML parsing.
func (d *Duration) UnmarshalText(text []byte) error {
	s := string(text)

	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: must be like '500ms', '2s', '1m' or milliseconds: %w", s, err)
	}
	*d = Duration(dur)
	return nil
}

// MarshalText implements encoding.TextMarshaler for TOML output.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Position is a corner of the terminal a view is anchored to.
type Position string

const (
	PositionTopLeft     Position = "top-left"
	PositionTopRight    Position = "top-right"
	PositionBottomLeft  Position = "bottom-left"
	PositionBottomRight Position = "bottom-right"
	PositionCenter      Position = "center"
)

// ValidPositions returns all valid position values.
func ValidPositions() []Position {
	return []Position{
		PositionTopLeft,
		PositionTopRight,
		PositionBottomLeft,
		PositionBottomRight,
		PositionCenter,
	}
}

// Config represents the popstack configuration.
type Config struct {
	Notifications NotificationsConfig `toml:"notifications"`
	Modal         ModalConfig         `toml:"modal"`
	Display       DisplayConfig       `toml:"display"`
	Logging       LoggingConfig       `toml:"logging"`
	DBus          DBusConfig          `toml:"dbus"`
}

// NotificationsConfig holds notification helper settings.
type NotificationsConfig struct {
	View        string   `toml:"view"`         // View notifications are pushed to
	Timeout     Duration `toml:"timeout"`      // Default time to live (0 = until dismissed)
	MinInterval Duration `toml:"min_interval"` // Rate limit for internal notifications
	Width       int      `toml:"width"`        // Toast width in columns
}

// ModalConfig holds settings for popups on the default view.
type ModalConfig struct {
	Timeout Duration `toml:"timeout"` // Auto-dismiss for timed demo modals (0 = never)
	Width   int      `toml:"width"`   // Dialog width in columns
}

// DisplayConfig holds placement settings.
type DisplayConfig struct {
	Position string `toml:"position"` // Where the notification view is drawn
	Margin   int    `toml:"margin"`   // Cells between a toast and the terminal edge
	Wrap     bool   `toml:"wrap"`     // Draw the default view inside a bordered overlay
}

// LoggingConfig holds log settings.
type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
	File  string `toml:"file"`  // Empty = discard while the TUI owns the terminal
}

// DBusConfig holds session bus bridge settings.
type DBusConfig struct {
	Enabled bool `toml:"enabled"` // Export the bridge while the TUI runs
	Mirror  bool `toml:"mirror"`  // Mirror desktop notifications into the notification view
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Notifications: NotificationsConfig{
			View:        DefaultNotifView,
			Timeout:     Duration(DefaultNotifTimeout),
			MinInterval: Duration(DefaultMinInterval),
			Width:       DefaultNotifWidth,
		},
		Modal: ModalConfig{
			Timeout: Duration(DefaultModalTimeout),
			Width:   DefaultModalWidth,
		},
		Display: DisplayConfig{
			Position: string(DefaultPosition),
			Margin:   DefaultMargin,
			Wrap:     true,
		},
		Logging: LoggingConfig{
			Level: DefaultLogLevel,
		},
	}
}

// ConfigPath returns the path to the config file under the XDG config
// directory ($XDG_CONFIG_HOME, usually ~/.config).
func ConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "popstack", "config.toml")
}

// LoadConfig loads configuration from the specified path.
// If path is empty, uses the default config path.
// Returns default config if file doesn't exist.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to the specified path.
// Creates parent directories if needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = ConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write atomically via temp file
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return os.Rename(tmpPath, path)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Notifications.View == "" {
		return errors.New("notifications.view cannot be empty")
	}
	if c.Notifications.Timeout < 0 || c.Modal.Timeout < 0 || c.Notifications.MinInterval < 0 {
		return errors.New("durations cannot be negative")
	}
	if c.Notifications.Width < 10 || c.Notifications.Width > 200 {
		return fmt.Errorf("notifications.width must be between 10 and 200, got %d", c.Notifications.Width)
	}
	if c.Modal.Width < 10 || c.Modal.Width > 200 {
		return fmt.Errorf("modal.width must be between 10 and 200, got %d", c.Modal.Width)
	}
	if c.Display.Margin < 0 {
		return fmt.Errorf("display.margin cannot be negative, got %d", c.Display.Margin)
	}
	if !slices.Contains(ValidPositions(), Position(c.Display.Position)) {
		return fmt.Errorf("invalid position %q, must be one of: %v", c.Display.Position, ValidPositions())
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Logging.Level)
	}
	return nil
}
