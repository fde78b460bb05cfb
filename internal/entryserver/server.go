package entryserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/xolan/worklog/internal/entry"
	"github.com/xolan/worklog/internal/logging"
)

// State is the lifecycle state of a Server.
type State int

const (
	Stopped State = iota
	Starting
	Running
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Running:
		return "running"
	case Stopping:
		return "stopping"
	}
	return "unknown"
}

// EventKind identifies a lifecycle notification.
type EventKind int

const (
	EventStarted EventKind = iota
	EventStopped
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventStopped:
		return "stopped"
	case EventFailed:
		return "failed"
	}
	return "unknown"
}

// Event is sent to observers when the server starts, stops, or fails.
type Event struct {
	Kind EventKind
	Addr string // bound address, e.g. 0.0.0.0:5000
	URL  string // address to open on the phone, e.g. http://192.168.1.20:5000
	Err  error  // set for EventFailed
}

// ErrNotStopped is returned by Start when the server is already active.
var ErrNotStopped = errors.New("entryserver: server is not stopped")

const (
	defaultPreferredPort = 5000
	defaultPortScanLimit = 100
	defaultSessionTTL    = 12 * time.Hour
	maxFormBytes         = 64 << 10
	eventBuffer          = 16
)

// Appender is the part of the log store the server writes to.
type Appender interface {
	Append(ts time.Time, category, content string) error
}

// Settings configures a Server.
type Settings struct {
	Host          string
	PreferredPort int
	PortScanLimit int
	Secret        string
	SessionTTL    time.Duration
}

// Server accepts entries from a phone on the local network. It runs its HTTP
// listener on its own goroutine and reports lifecycle changes on Events.
type Server struct {
	store    Appender
	catalog  entry.Catalog
	settings Settings
	logger   logging.Printer
	clock    func() time.Time
	resolve  func() string
	sessions *SessionStore
	pages    *pages
	events   chan Event

	mu         sync.RWMutex
	state      State
	secretHash []byte
	server     *http.Server
	listener   net.Listener
	url        string
	done       chan struct{}
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l logging.Printer) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control entry timestamps and session expiry.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAddrResolver overrides LocalIP when building the server URL.
func WithAddrResolver(resolve func() string) Option {
	return func(s *Server) {
		if resolve != nil {
			s.resolve = resolve
		}
	}
}

// New prepares a stopped server that appends to store.
func New(store Appender, catalog entry.Catalog, settings Settings, opts ...Option) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("entryserver: store is nil")
	}
	if len(catalog) == 0 {
		catalog = entry.DefaultCatalog()
	}
	if settings.PreferredPort == 0 {
		settings.PreferredPort = defaultPreferredPort
	}
	if settings.PortScanLimit <= 0 {
		settings.PortScanLimit = defaultPortScanLimit
	}
	if settings.SessionTTL <= 0 {
		settings.SessionTTL = defaultSessionTTL
	}

	s := &Server{
		store:    store,
		catalog:  catalog,
		settings: settings,
		logger:   logging.Nop,
		clock:    time.Now,
		resolve:  LocalIP,
		pages:    loadPages(),
		events:   make(chan Event, eventBuffer),
		state:    Stopped,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	s.sessions = NewSessionStore(settings.SessionTTL, s.clock)

	if err := s.SetSecret(settings.Secret); err != nil {
		return nil, err
	}
	s.settings.Secret = ""
	return s, nil
}

// SetSecret replaces the shared secret. Only later logins are affected;
// existing sessions stay valid.
func (s *Server) SetSecret(secret string) error {
	if secret == "" {
		return fmt.Errorf("entryserver: secret must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("entryserver: hash secret: %w", err)
	}
	s.mu.Lock()
	s.secretHash = hash
	s.mu.Unlock()
	return nil
}

func (s *Server) checkSecret(candidate string) bool {
	s.mu.RLock()
	hash := s.secretHash
	s.mu.RUnlock()
	return bcrypt.CompareHashAndPassword(hash, []byte(candidate)) == nil
}

// Start launches the server worker and returns immediately. The worker binds a
// port, then reports EventStarted or EventFailed on Events.
func (s *Server) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	if s.state != Stopped {
		s.mu.Unlock()
		return ErrNotStopped
	}
	s.state = Starting
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, done)
	return nil
}

func (s *Server) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ln, err := listenScan(s.settings.Host, s.settings.PreferredPort, s.settings.PortScanLimit)
	if err != nil {
		s.logger.Printf("entryserver: bind failed: %v", err)
		s.setStopped()
		s.emit(Event{Kind: EventFailed, Err: err})
		return
	}

	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	addr := ln.Addr().String()
	port := strconv.Itoa(ln.Addr().(*net.TCPAddr).Port)
	url := "http://" + net.JoinHostPort(displayHost(s.settings.Host, s.resolve), port)

	s.mu.Lock()
	if s.state == Stopping {
		// Stop arrived while binding.
		s.mu.Unlock()
		_ = ln.Close()
		s.setStopped()
		return
	}
	s.server = server
	s.listener = ln
	s.url = url
	s.state = Running
	s.mu.Unlock()

	s.logger.Printf("entryserver: listening on %s (%s)", addr, url)
	s.emit(Event{Kind: EventStarted, Addr: addr, URL: url})

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Printf("entryserver: serve error: %v", err)
		s.setStopped()
		s.emit(Event{Kind: EventFailed, Addr: addr, URL: url, Err: err})
		return
	}
	s.setStopped()
}

func (s *Server) setStopped() {
	s.mu.Lock()
	s.state = Stopped
	s.server = nil
	s.listener = nil
	s.url = ""
	s.mu.Unlock()
}

// Stop shuts the listener down gracefully and waits until the worker has
// exited, so a following Start never races the old listener. In-flight
// submissions either finish or fail before Stop returns. Stop on a stopped
// server is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}

	s.mu.Lock()
	if s.state == Stopped {
		s.mu.Unlock()
		return nil
	}
	s.state = Stopping
	server := s.server
	done := s.done
	s.mu.Unlock()

	var shutdownErr error
	if server != nil {
		shutdownErr = server.Shutdown(ctx)
		if shutdownErr != nil {
			_ = server.Close()
		}
	}

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.logger.Printf("entryserver: stopped")
	s.emit(Event{Kind: EventStopped})
	return shutdownErr
}

// Events returns the lifecycle notification channel. Events are dropped when
// nobody keeps up with the buffer.
func (s *Server) Events() <-chan Event {
	return s.events
}

func (s *Server) emit(evt Event) {
	select {
	case s.events <- evt:
	default:
		s.logger.Printf("entryserver: dropped %s event", evt.Kind)
	}
}

// State reports the lifecycle state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Addr returns the bound TCP address while running.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// URL returns the address to open on the phone while running.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// Sessions exposes the session store.
func (s *Server) Sessions() *SessionStore {
	return s.sessions
}
