package service

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xolan/worklog/internal/config"
)

func TestConfigService_GetPath(t *testing.T) {
	svc := NewConfigService("/tmp/test/config.toml", config.DefaultConfig())

	if path := svc.GetPath(); path != "/tmp/test/config.toml" {
		t.Errorf("expected path '/tmp/test/config.toml', got %q", path)
	}
}

func TestConfigService_Exists(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	if svc.Exists() {
		t.Error("expected Exists() to return false")
	}
	if err := os.WriteFile(configPath, []byte("# empty\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if !svc.Exists() {
		t.Error("expected Exists() to return true")
	}
}

func TestConfigService_Update(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	cfg := config.DefaultConfig()
	cfg.Password = "s3cret"
	cfg.PreferredPort = 8080
	if err := svc.Update(cfg); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if svc.Get().Password != "s3cret" {
		t.Errorf("expected in-memory password to be updated, got %q", svc.Get().Password)
	}

	loaded, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if loaded.PreferredPort != 8080 || loaded.Password != "s3cret" {
		t.Errorf("saved config = %+v", loaded)
	}
}

func TestConfigService_UpdateInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	cfg := config.DefaultConfig()
	cfg.PreferredPort = 70000
	if err := svc.Update(cfg); err == nil {
		t.Fatal("expected error for invalid port")
	}
	if svc.Exists() {
		t.Error("invalid config should not be written")
	}
	if svc.Get().PreferredPort != 5000 {
		t.Errorf("in-memory config changed to %d", svc.Get().PreferredPort)
	}
}

func TestConfigService_Set(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	if err := svc.Set("undo_window", "90s"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, _ := svc.Get().Get("undo_window"); got != "1m30s" {
		t.Errorf("undo_window = %q, expected 1m30s", got)
	}

	if err := svc.Set("no_such_key", "1"); err == nil {
		t.Error("expected error for unknown key")
	}
	if err := svc.Set("preferred_port", "abc"); err == nil {
		t.Error("expected error for non-numeric port")
	}
}

func TestConfigService_Init(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	if err := svc.Init(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if !strings.Contains(string(content), "password") {
		t.Error("sample config should mention the password setting")
	}

	if err := svc.Init(); err == nil {
		t.Error("expected error when config already exists")
	}

	// The sample is all comments, so it loads as the defaults.
	if err := svc.Reload(); err != nil {
		t.Fatalf("Reload() returned unexpected error: %v", err)
	}
	if svc.Get().PreferredPort != config.DefaultConfig().PreferredPort {
		t.Errorf("reloaded config = %+v, expected defaults", svc.Get())
	}
}

func TestConfigService_ReloadInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(configPath, []byte("preferred_port = \"x\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	svc := NewConfigService(configPath, config.DefaultConfig())

	if err := svc.Reload(); err == nil {
		t.Error("expected error for invalid config file")
	}
}

func TestConfigService_GetReturnsCopy(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Categories = []string{"会议", "打印机维护"}
	svc := NewConfigService(filepath.Join(t.TempDir(), "config.toml"), cfg)

	got := svc.Get()
	got.Categories[0] = "changed"

	if svc.Get().Categories[0] != "会议" {
		t.Error("changing the returned categories should not change the service")
	}
}

func TestConfigService_ConcurrentSet(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	svc := NewConfigService(configPath, config.DefaultConfig())

	themes := []string{"nord", "dracula", "monokai", "solarized"}
	var wg sync.WaitGroup
	for _, theme := range themes {
		wg.Add(2)
		go func() {
			defer wg.Done()
			if err := svc.Set("theme", theme); err != nil {
				t.Errorf("Set(theme, %s) returned unexpected error: %v", theme, err)
			}
		}()
		go func() {
			defer wg.Done()
			_ = svc.Get()
		}()
	}
	wg.Wait()

	loaded, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if loaded.Theme != svc.Get().Theme {
		t.Errorf("file theme %q differs from memory %q", loaded.Theme, svc.Get().Theme)
	}
}
