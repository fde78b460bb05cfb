package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/osutil"
)

// Helper to create a temporary config file
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpFile := filepath.Join(t.TempDir(), "config.toml")
	// Always write the file, even if content is empty
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}
	return tmpFile
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Password != "21232" {
		t.Errorf("DefaultConfig().Password = %q, expected %q", cfg.Password, "21232")
	}
	if cfg.PreferredPort != 5000 {
		t.Errorf("DefaultConfig().PreferredPort = %d, expected 5000", cfg.PreferredPort)
	}
	if cfg.PortScanLimit != 100 {
		t.Errorf("DefaultConfig().PortScanLimit = %d, expected 100", cfg.PortScanLimit)
	}
	if cfg.UndoWindow.Std() != 60*time.Second {
		t.Errorf("DefaultConfig().UndoWindow = %v, expected 60s", cfg.UndoWindow.Std())
	}
	if cfg.SessionTTL.Std() != 12*time.Hour {
		t.Errorf("DefaultConfig().SessionTTL = %v, expected 12h", cfg.SessionTTL.Std())
	}
	if cfg.StatsDefaultDays != 5 {
		t.Errorf("DefaultConfig().StatsDefaultDays = %d, expected 5", cfg.StatsDefaultDays)
	}
	if cfg.Theme != DefaultTheme {
		t.Errorf("DefaultConfig().Theme = %q, expected %q", cfg.Theme, DefaultTheme)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() returned error: %v", err)
	}
}

func TestLoad_ValidConfig(t *testing.T) {
	content := `password = "s3cret"
preferred_port = 8080
port_scan_limit = 10
listen_host = "127.0.0.1"
auto_start_server = true
auto_start_delay = "5s"
session_ttl = "30m"
undo_window = "2m"
categories = ["会议", "  打印机维护 "]
stats_default_days = 7`
	cfg, err := Load(createTempConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Password != "s3cret" || cfg.PreferredPort != 8080 || cfg.PortScanLimit != 10 {
		t.Errorf("Load() = %+v, expected values from file", cfg)
	}
	if cfg.ListenHost != "127.0.0.1" || !cfg.AutoStartServer {
		t.Errorf("Load() host/autostart = %q/%v", cfg.ListenHost, cfg.AutoStartServer)
	}
	if cfg.AutoStartDelay.Std() != 5*time.Second {
		t.Errorf("AutoStartDelay = %v, expected 5s", cfg.AutoStartDelay.Std())
	}
	if cfg.SessionTTL.Std() != 30*time.Minute {
		t.Errorf("SessionTTL = %v, expected 30m", cfg.SessionTTL.Std())
	}
	if cfg.UndoWindow.Std() != 2*time.Minute {
		t.Errorf("UndoWindow = %v, expected 2m", cfg.UndoWindow.Std())
	}
	if cfg.StatsDefaultDays != 7 {
		t.Errorf("StatsDefaultDays = %d, expected 7", cfg.StatsDefaultDays)
	}

	catalog := cfg.Catalog()
	expected := entry.Catalog{"会议", "打印机维护", entry.OtherCategory}
	if len(catalog) != len(expected) {
		t.Fatalf("Catalog() = %v, expected %v", catalog, expected)
	}
	for i := range expected {
		if catalog[i] != expected[i] {
			t.Errorf("Catalog()[%d] = %q, expected %q", i, catalog[i], expected[i])
		}
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, `preferred_port = 6000`))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.PreferredPort != 6000 {
		t.Errorf("PreferredPort = %d, expected 6000", cfg.PreferredPort)
	}
	if cfg.Password != defaults.Password || cfg.UndoWindow != defaults.UndoWindow {
		t.Errorf("Load() did not keep defaults for missing keys: %+v", cfg)
	}
	if len(cfg.Catalog()) != len(entry.DefaultCatalog()) {
		t.Errorf("Catalog() has %d entries, expected the built-in catalog", len(cfg.Catalog()))
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	cfg, err := Load(createTempConfigFile(t, ""))
	if err != nil {
		t.Fatalf("Load() returned unexpected error for empty file: %v", err)
	}
	if cfg.PreferredPort != DefaultConfig().PreferredPort {
		t.Errorf("PreferredPort = %d, expected default", cfg.PreferredPort)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does_not_exist.toml"))
	if err == nil {
		t.Error("Load() should return error for non-existent file")
	}
}

func TestLoad_InvalidTOML(t *testing.T) {
	tests := []struct {
		name          string
		configContent string
	}{
		{"malformed TOML", `password = "abc`},
		{"invalid syntax", `this is not valid TOML at all`},
		{"missing quotes", `password = abc`},
		{"bad duration", `undo_window = "soon"`},
		{"wrong type", `preferred_port = "five thousand"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(createTempConfigFile(t, tt.configContent))
			if err == nil {
				t.Fatal("Load() should return error for invalid TOML")
			}
			if !strings.Contains(err.Error(), "failed to parse config file") {
				t.Errorf("Error message should mention parsing failure, got: %v", err)
			}
		})
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	_, err := Load(createTempConfigFile(t, `pasword = "typo"`))
	if err == nil {
		t.Fatal("Load() should reject unknown keys")
	}
	if !strings.Contains(err.Error(), "pasword") {
		t.Errorf("error should name the unknown key, got: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name           string
		modify         func(*Config)
		errorSubstring string
	}{
		{"empty password", func(c *Config) { c.Password = "" }, "invalid password"},
		{"port zero", func(c *Config) { c.PreferredPort = 0 }, "invalid preferred_port"},
		{"port too high", func(c *Config) { c.PreferredPort = 70000 }, "invalid preferred_port"},
		{"scan limit zero", func(c *Config) { c.PortScanLimit = 0 }, "invalid port_scan_limit"},
		{"bad host", func(c *Config) { c.ListenHost = "not a host" }, "invalid listen_host"},
		{"negative delay", func(c *Config) { c.AutoStartDelay = Duration(-time.Second) }, "invalid auto_start_delay"},
		{"zero session ttl", func(c *Config) { c.SessionTTL = 0 }, "invalid session_ttl"},
		{"zero undo window", func(c *Config) { c.UndoWindow = 0 }, "invalid undo_window"},
		{"negative stats days", func(c *Config) { c.StatsDefaultDays = -1 }, "invalid stats_default_days"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() should return error")
			}
			if !strings.Contains(err.Error(), tt.errorSubstring) {
				t.Errorf("Validate() error = %q, expected to contain %q", err, tt.errorSubstring)
			}
		})
	}
}

func TestLoadOrDefault_MissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "does_not_exist.toml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() returned unexpected error for non-existent file: %v", err)
	}
	if cfg.Password != DefaultConfig().Password {
		t.Errorf("LoadOrDefault() = %+v, expected defaults", cfg)
	}
}

func TestLoadOrDefault_ExistingInvalidFile(t *testing.T) {
	_, err := LoadOrDefault(createTempConfigFile(t, `preferred_port = 0`))
	if err == nil {
		t.Fatal("LoadOrDefault() should return error for invalid config file")
	}
	if !strings.Contains(err.Error(), "invalid preferred_port") {
		t.Errorf("Error should mention invalid preferred_port, got: %v", err)
	}
}

func TestNormalize_ExpandsHome(t *testing.T) {
	defer osutil.ResetProvider()
	osutil.SetProvider(&osutil.MockPathProvider{
		UserHomeDirFn: func() (string, error) { return "/home/tester", nil },
	})

	cfg := DefaultConfig()
	cfg.LogPath = " ~/logs/worklog.csv "
	cfg.Normalize()

	if cfg.LogPath != filepath.Join("/home/tester", "logs", "worklog.csv") {
		t.Errorf("Normalize() LogPath = %q", cfg.LogPath)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := DefaultConfig()
	cfg.Password = "changed"
	cfg.SessionTTL = Duration(90 * time.Minute)
	cfg.Categories = []string{"会议"}

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() returned unexpected error: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() after Save() returned unexpected error: %v", err)
	}
	if loaded.Password != "changed" {
		t.Errorf("Password = %q, expected %q", loaded.Password, "changed")
	}
	if loaded.SessionTTL.Std() != 90*time.Minute {
		t.Errorf("SessionTTL = %v, expected 1h30m", loaded.SessionTTL.Std())
	}
	if len(loaded.Categories) != 1 || loaded.Categories[0] != "会议" {
		t.Errorf("Categories = %v, expected [会议]", loaded.Categories)
	}
}

func TestSave_RejectsInvalid(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Password = ""

	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, cfg); err == nil {
		t.Error("Save() should reject an invalid config")
	}
	if _, err := os.Stat(path); err == nil {
		t.Error("Save() wrote an invalid config")
	}
}

func TestSetAndGet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  string
	}{
		{"password", "abc", "abc"},
		{"preferred_port", "5050", "5050"},
		{"auto_start_server", "true", "true"},
		{"auto_start_delay", "90s", "1m30s"},
		{"undo_window", "2m", "2m0s"},
		{"categories", "会议,巡检", "会议,巡检,其他"},
		{"stats_default_days", "3", "3"},
		{"theme", "nord", "nord"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cfg := DefaultConfig()
			if err := cfg.Set(tt.key, tt.value); err != nil {
				t.Fatalf("Set(%q, %q) returned unexpected error: %v", tt.key, tt.value, err)
			}
			got, err := cfg.Get(tt.key)
			if err != nil {
				t.Fatalf("Get(%q) returned unexpected error: %v", tt.key, err)
			}
			if got != tt.want {
				t.Errorf("Get(%q) = %q, expected %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestSet_Errors(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Set("nope", "1"); err == nil || !strings.Contains(err.Error(), "unknown config key") {
		t.Errorf("Set(unknown) error = %v", err)
	}
	if err := cfg.Set("preferred_port", "abc"); err == nil || !strings.Contains(err.Error(), "invalid value") {
		t.Errorf("Set(preferred_port, abc) error = %v", err)
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("Get(unknown) should return error")
	}
}

func TestKeys_AllGettable(t *testing.T) {
	cfg := DefaultConfig()
	for _, key := range Keys() {
		if _, err := cfg.Get(key); err != nil {
			t.Errorf("Get(%q) returned error: %v", key, err)
		}
	}
}

func TestGenerateSampleConfig(t *testing.T) {
	content := GenerateSampleConfig()

	for _, key := range Keys() {
		if !strings.Contains(content, "# "+key) {
			t.Errorf("GenerateSampleConfig() missing commented key %q", key)
		}
	}

	// The sample parses to the defaults.
	cfg, err := Load(createTempConfigFile(t, content))
	if err != nil {
		t.Fatalf("Load(sample) returned unexpected error: %v", err)
	}
	if cfg.PreferredPort != DefaultConfig().PreferredPort {
		t.Errorf("sample config PreferredPort = %d, expected default", cfg.PreferredPort)
	}
}

func TestGetConfigPath(t *testing.T) {
	defer osutil.ResetProvider()

	tmpDir := t.TempDir()
	osutil.SetProvider(&osutil.MockPathProvider{
		UserConfigDirFn: func() (string, error) { return tmpDir, nil },
		MkdirAllFn:      os.MkdirAll,
	})

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned unexpected error: %v", err)
	}
	if path != filepath.Join(tmpDir, AppName, ConfigFile) {
		t.Errorf("GetConfigPath() = %q", path)
	}

	logsDir, err := GetLogsDir()
	if err != nil {
		t.Fatalf("GetLogsDir() returned unexpected error: %v", err)
	}
	if info, err := os.Stat(logsDir); err != nil || !info.IsDir() {
		t.Errorf("GetLogsDir() did not create %s", logsDir)
	}
}

func TestGetConfigPath_UserConfigDirError(t *testing.T) {
	defer osutil.ResetProvider()

	osutil.SetProvider(&osutil.MockPathProvider{
		UserConfigDirFn: func() (string, error) {
			return "", os.ErrPermission
		},
	})

	if _, err := GetConfigPath(); !errors.Is(err, os.ErrPermission) {
		t.Errorf("GetConfigPath() error = %v, expected permission error", err)
	}
}

func TestGetConfigPath_MkdirAllError(t *testing.T) {
	defer osutil.ResetProvider()

	tmpDir := t.TempDir()
	osutil.SetProvider(&osutil.MockPathProvider{
		UserConfigDirFn: func() (string, error) { return tmpDir, nil },
		MkdirAllFn: func(path string, perm os.FileMode) error {
			return os.ErrPermission
		},
	})

	if _, err := GetConfigPath(); err == nil {
		t.Error("GetConfigPath() should return error when MkdirAll fails")
	}
}
