package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/xolan/worklog/internal/config"
	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/entryserver"
	"github.com/xolan/worklog/internal/logging"
	"github.com/xolan/worklog/internal/storage"
)

// ServerService owns the single entry server of the process. The server
// appends through the same LogStore, and therefore the same lock, as the
// other services.
type ServerService struct {
	server *entryserver.Server

	mu       sync.Mutex
	password string
}

// NewServerService creates a stopped entry server from cfg
func NewServerService(store *storage.LogStore, catalog entry.Catalog, cfg config.Config, logger logging.Printer, opts ...entryserver.Option) (*ServerService, error) {
	settings := entryserver.Settings{
		Host:          cfg.ListenHost,
		PreferredPort: cfg.PreferredPort,
		PortScanLimit: cfg.PortScanLimit,
		Secret:        cfg.Password,
		SessionTTL:    cfg.SessionTTL.Std(),
	}
	opts = append([]entryserver.Option{entryserver.WithLogger(logging.OrNop(logger))}, opts...)

	server, err := entryserver.New(store, catalog, settings, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry server: %w", err)
	}
	return &ServerService{server: server, password: cfg.Password}, nil
}

// Start begins listening in the background. The outcome arrives on Events.
func (s *ServerService) Start(ctx context.Context) error {
	return s.server.Start(ctx)
}

// Stop shuts the server down and waits for it to finish.
func (s *ServerService) Stop(ctx context.Context) error {
	return s.server.Stop(ctx)
}

// Toggle starts a stopped server and stops any other.
func (s *ServerService) Toggle(ctx context.Context) error {
	if s.server.State() == entryserver.Stopped {
		return s.Start(ctx)
	}
	return s.Stop(ctx)
}

// State reports the server lifecycle state
func (s *ServerService) State() entryserver.State {
	return s.server.State()
}

// Running reports whether the server is starting or serving
func (s *ServerService) Running() bool {
	state := s.server.State()
	return state == entryserver.Starting || state == entryserver.Running
}

// URL returns the address phones should open, or "" when stopped
func (s *ServerService) URL() string {
	return s.server.URL()
}

// Events returns the server lifecycle notifications
func (s *ServerService) Events() <-chan entryserver.Event {
	return s.server.Events()
}

// Password returns the current shared secret
func (s *ServerService) Password() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.password
}

// SetPassword changes the shared secret, also while the server runs. Only
// later logins see the new secret; phones already signed in stay signed in.
func (s *ServerService) SetPassword(password string) error {
	if err := s.server.SetSecret(password); err != nil {
		return err
	}

	s.mu.Lock()
	s.password = password
	s.mu.Unlock()
	return nil
}
