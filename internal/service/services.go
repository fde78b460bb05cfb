package service

import (
	"path/filepath"

	"github.com/xolan/worklog/internal/config"
	"github.com/xolan/worklog/internal/entryserver"
	"github.com/xolan/worklog/internal/logging"
	"github.com/xolan/worklog/internal/osutil"
	"github.com/xolan/worklog/internal/storage"
)

// Services holds all service instances used by the application
type Services struct {
	Entry  *EntryService
	Search *SearchService
	Stats  *StatsService
	Config *ConfigService
	Server *ServerService
}

// NewServices creates a new Services instance from the config file at the default path
func NewServices(logger logging.Printer) (*Services, error) {
	configPath, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrDefault(configPath)
	if err != nil {
		return nil, err
	}

	return NewServicesWithConfig(configPath, cfg, logger)
}

// NewServicesWithConfig opens the log named by cfg and builds the services around it
func NewServicesWithConfig(configPath string, cfg config.Config, logger logging.Printer, opts ...entryserver.Option) (*Services, error) {
	logPath, err := ResolveLogPath(cfg)
	if err != nil {
		return nil, err
	}

	store := storage.NewLogStore(logPath, storage.WithUndoWindow(cfg.UndoWindow.Std()))
	return NewServicesWithStore(store, configPath, cfg, logger, opts...)
}

// NewServicesWithStore creates a new Services instance sharing store (useful for testing)
func NewServicesWithStore(store *storage.LogStore, configPath string, cfg config.Config, logger logging.Printer, opts ...entryserver.Option) (*Services, error) {
	catalog := cfg.Catalog()

	serverService, err := NewServerService(store, catalog, cfg, logger, opts...)
	if err != nil {
		return nil, err
	}

	return &Services{
		Entry:  NewEntryService(store, catalog),
		Search: NewSearchService(store),
		Stats:  NewStatsService(store, catalog, cfg.StatsDefaultDays),
		Config: NewConfigService(configPath, cfg),
		Server: serverService,
	}, nil
}

// ResolveLogPath returns the configured log path, or the default
// ~/Documents/WorkLog/worklog.csv. The parent directory is created.
func ResolveLogPath(cfg config.Config) (string, error) {
	if cfg.LogPath == "" {
		return storage.GetDefaultLogPath()
	}
	if err := osutil.Provider.MkdirAll(filepath.Dir(cfg.LogPath), 0755); err != nil {
		return "", err
	}
	return cfg.LogPath, nil
}
