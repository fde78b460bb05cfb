package service

import (
	"fmt"
	"os"
	"sync"

	"github.com/xolan/worklog/internal/config"
)

// ConfigService holds the loaded configuration and writes changes back to
// config.toml. The desktop UI saves from background commands, so every
// access is locked.
type ConfigService struct {
	mu     sync.RWMutex
	path   string
	config config.Config
}

// NewConfigService creates a ConfigService for the file at path, starting from cfg
func NewConfigService(path string, cfg config.Config) *ConfigService {
	return &ConfigService{path: path, config: cfg}
}

// Get returns a copy of the current configuration
func (s *ConfigService) Get() config.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// GetPath returns the path to the config file
func (s *ConfigService) GetPath() string {
	return s.path
}

// Exists reports whether config.toml has been written
func (s *ConfigService) Exists() bool {
	_, err := os.Stat(s.path)
	return err == nil
}

// Update normalizes, validates and saves cfg. The in-memory config only
// changes once the file is written.
func (s *ConfigService) Update(cfg config.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(cfg)
}

// Set changes one key (see config.Keys) and saves the file
func (s *ConfigService) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.snapshotLocked()
	if err := cfg.Set(key, value); err != nil {
		return err
	}
	return s.saveLocked(cfg)
}

// Init writes the commented sample config; it never overwrites
func (s *ConfigService) Init() error {
	if s.Exists() {
		return fmt.Errorf("config file already exists at %s", s.path)
	}
	if err := os.WriteFile(s.path, []byte(config.GenerateSampleConfig()), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Reload reads the file again, falling back to defaults when it is missing
func (s *ConfigService) Reload() error {
	cfg, err := config.LoadOrDefault(s.path)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	s.mu.Lock()
	s.config = cfg
	s.mu.Unlock()
	return nil
}

func (s *ConfigService) saveLocked(cfg config.Config) error {
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := config.Save(s.path, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	s.config = cfg
	return nil
}

// snapshotLocked copies the config so callers cannot alias the category slice.
func (s *ConfigService) snapshotLocked() config.Config {
	cfg := s.config
	cfg.Categories = append([]string(nil), s.config.Categories...)
	return cfg
}
