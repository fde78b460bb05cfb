package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/osutil"
)

const (
	// AppName is the application name used for config directory
	AppName = "worklog"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// LogsDir is the directory under the config directory holding diagnostic logs
	LogsDir = "logs"
	// DefaultTheme is the terminal UI theme used when none is configured
	DefaultTheme = "dracula"
)

// Duration is a time.Duration written as a Go duration string ("60s", "12h") in TOML.
type Duration time.Duration

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the application configuration
type Config struct {
	// LogPath is the CSV work log. Empty means ~/Documents/WorkLog/worklog.csv.
	LogPath string `toml:"log_path"`
	// Password is the shared secret phone clients log in with.
	Password string `toml:"password"`
	// PreferredPort is the first port the entry server tries.
	PreferredPort int `toml:"preferred_port"`
	// PortScanLimit is how many consecutive ports are tried before giving up.
	PortScanLimit int `toml:"port_scan_limit"`
	// ListenHost is the address the entry server binds to.
	ListenHost string `toml:"listen_host"`
	// AutoStartServer starts the entry server AutoStartDelay after the desktop UI opens.
	AutoStartServer bool     `toml:"auto_start_server"`
	AutoStartDelay  Duration `toml:"auto_start_delay"`
	// SessionTTL is how long a phone login stays valid.
	SessionTTL Duration `toml:"session_ttl"`
	// UndoWindow is how old the last entry may be and still be undone.
	UndoWindow Duration `toml:"undo_window"`
	// Categories replaces the built-in catalog. The "Other" category is always appended.
	Categories []string `toml:"categories"`
	// StatsDefaultDays is how many days before today the stats range starts.
	StatsDefaultDays int `toml:"stats_default_days"`
	// Theme is the terminal UI color theme (a bubbletint ID).
	Theme string `toml:"theme"`
}

// DefaultConfig returns a Config with the stock settings.
func DefaultConfig() Config {
	return Config{
		LogPath:          "",
		Password:         "21232",
		PreferredPort:    5000,
		PortScanLimit:    100,
		ListenHost:       "0.0.0.0",
		AutoStartServer:  false,
		AutoStartDelay:   Duration(60 * time.Second),
		SessionTTL:       Duration(12 * time.Hour),
		UndoWindow:       Duration(60 * time.Second),
		Categories:       nil,
		StatsDefaultDays: 5,
		Theme:            DefaultTheme,
	}
}

// Catalog returns the configured category catalog, or the built-in one.
func (c Config) Catalog() entry.Catalog {
	if len(c.Categories) == 0 {
		return entry.DefaultCatalog()
	}
	return entry.NewCatalog(c.Categories)
}

// Normalize trims whitespace and expands a leading ~ in LogPath.
func (c *Config) Normalize() {
	c.LogPath = strings.TrimSpace(c.LogPath)
	c.ListenHost = strings.TrimSpace(c.ListenHost)
	c.Theme = strings.TrimSpace(c.Theme)

	if c.LogPath == "~" || strings.HasPrefix(c.LogPath, "~/") {
		if home, err := osutil.Provider.UserHomeDir(); err == nil {
			c.LogPath = filepath.Join(home, strings.TrimPrefix(c.LogPath, "~"))
		}
	}

	categories := c.Categories[:0]
	for _, name := range c.Categories {
		if name = entry.NormalizeCategory(name); name != "" {
			categories = append(categories, name)
		}
	}
	c.Categories = categories
}

// Validate checks every field and reports the first problem found.
func (c Config) Validate() error {
	if c.Password == "" {
		return fmt.Errorf("invalid password: must not be empty")
	}
	if c.PreferredPort < 1 || c.PreferredPort > 65535 {
		return fmt.Errorf("invalid preferred_port %d: must be between 1 and 65535", c.PreferredPort)
	}
	if c.PortScanLimit < 1 {
		return fmt.Errorf("invalid port_scan_limit %d: must be at least 1", c.PortScanLimit)
	}
	if c.ListenHost != "" && net.ParseIP(c.ListenHost) == nil && c.ListenHost != "localhost" {
		return fmt.Errorf("invalid listen_host %q: must be an IP address or localhost", c.ListenHost)
	}
	if c.AutoStartDelay < 0 {
		return fmt.Errorf("invalid auto_start_delay %s: must not be negative", c.AutoStartDelay.Std())
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("invalid session_ttl %s: must be positive", c.SessionTTL.Std())
	}
	if c.UndoWindow <= 0 {
		return fmt.Errorf("invalid undo_window %s: must be positive", c.UndoWindow.Std())
	}
	if c.StatsDefaultDays < 0 {
		return fmt.Errorf("invalid stats_default_days %d: must not be negative", c.StatsDefaultDays)
	}
	return nil
}

// Load reads, normalizes and validates the config file at path.
// Fields missing from the file keep their defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, key := range undecoded {
			keys[i] = key.String()
		}
		return Config{}, fmt.Errorf("unknown key(s) in config file %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault loads path, or returns DefaultConfig if the file does not exist.
// An existing but invalid file is an error.
func LoadOrDefault(path string) (Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := DefaultConfig()
			cfg.Normalize()
			return cfg, nil
		}
		return Config{}, err
	}
	return Load(path)
}

// Save writes cfg to path as TOML, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := osutil.Provider.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return file.Close()
}

// Keys lists the settable keys in file order.
func Keys() []string {
	return []string{
		"log_path", "password", "preferred_port", "port_scan_limit", "listen_host",
		"auto_start_server", "auto_start_delay", "session_ttl", "undo_window",
		"categories", "stats_default_days", "theme",
	}
}

// Set assigns value to the field named by its TOML key. Categories are given
// comma separated. The result is not validated.
func (c *Config) Set(key, value string) error {
	var err error
	switch key {
	case "log_path":
		c.LogPath = value
	case "password":
		c.Password = value
	case "preferred_port":
		c.PreferredPort, err = strconv.Atoi(value)
	case "port_scan_limit":
		c.PortScanLimit, err = strconv.Atoi(value)
	case "listen_host":
		c.ListenHost = value
	case "auto_start_server":
		c.AutoStartServer, err = strconv.ParseBool(value)
	case "auto_start_delay":
		err = c.AutoStartDelay.UnmarshalText([]byte(value))
	case "session_ttl":
		err = c.SessionTTL.UnmarshalText([]byte(value))
	case "undo_window":
		err = c.UndoWindow.UnmarshalText([]byte(value))
	case "categories":
		c.Categories = strings.Split(value, ",")
	case "stats_default_days":
		c.StatsDefaultDays, err = strconv.Atoi(value)
	case "theme":
		c.Theme = value
	default:
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value %q for %s: %w", value, key, err)
	}
	return nil
}

// Get returns the field named by its TOML key formatted for display.
func (c Config) Get(key string) (string, error) {
	switch key {
	case "log_path":
		return c.LogPath, nil
	case "password":
		return c.Password, nil
	case "preferred_port":
		return strconv.Itoa(c.PreferredPort), nil
	case "port_scan_limit":
		return strconv.Itoa(c.PortScanLimit), nil
	case "listen_host":
		return c.ListenHost, nil
	case "auto_start_server":
		return strconv.FormatBool(c.AutoStartServer), nil
	case "auto_start_delay":
		return c.AutoStartDelay.Std().String(), nil
	case "session_ttl":
		return c.SessionTTL.Std().String(), nil
	case "undo_window":
		return c.UndoWindow.Std().String(), nil
	case "categories":
		return strings.Join(c.Catalog(), ","), nil
	case "stats_default_days":
		return strconv.Itoa(c.StatsDefaultDays), nil
	case "theme":
		return c.Theme, nil
	}
	return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(Keys(), ", "))
}

// GetConfigDir returns the application config directory, creating it if needed.
func GetConfigDir() (string, error) {
	configDir, err := osutil.Provider.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(configDir, AppName)
	if err := osutil.Provider.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}
	return appDir, nil
}

// GetConfigPath returns the path to the config file.
// Uses os.UserConfigDir() for cross-platform XDG-compliant config directory.
// Creates the config directory if it doesn't exist.
func GetConfigPath() (string, error) {
	appDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(appDir, ConfigFile), nil
}

// GetLogsDir returns the diagnostic log directory, creating it if needed.
func GetLogsDir() (string, error) {
	appDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	logsDir := filepath.Join(appDir, LogsDir)
	if err := osutil.Provider.MkdirAll(logsDir, 0755); err != nil {
		return "", err
	}
	return logsDir, nil
}

// GenerateSampleConfig returns a commented config file listing every key with its default.
func GenerateSampleConfig() string {
	return `# worklog configuration file
#
# Every setting is optional; remove the leading "# " to change one.

# CSV work log. Defaults to ~/Documents/WorkLog/worklog.csv
# log_path = "~/Documents/WorkLog/worklog.csv"

# Shared secret phone clients enter to log in to the entry server.
# password = "21232"

# The entry server tries preferred_port, then the next ports up to
# port_scan_limit attempts, and binds the first free one.
# preferred_port = 5000
# port_scan_limit = 100
# listen_host = "0.0.0.0"

# Start the entry server automatically after the desktop UI opens.
# auto_start_server = false
# auto_start_delay = "60s"

# How long a phone login stays valid.
# session_ttl = "12h"

# How long after an entry it may still be undone.
# undo_window = "60s"

# Replace the built-in category list. "其他" (Other) is always appended.
# categories = ["电脑硬件维修", "打印机维护", "网络设备维护"]

# The stats view opens on the range [today - stats_default_days, today].
# stats_default_days = 5

# Terminal UI color theme. Press ctrl+t in the UI to cycle through themes.
# theme = "dracula"
`
}
