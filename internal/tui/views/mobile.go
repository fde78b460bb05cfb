package views

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mdp/qrterminal/v3"

	"github.com/xolan/worklog/internal/entryserver"
	"github.com/xolan/worklog/internal/service"
	"github.com/xolan/worklog/internal/tui/ui"
)

// stopTimeout bounds how long a stop from the UI waits for in-flight requests.
const stopTimeout = 5 * time.Second

// writeClipboard is replaced in tests; headless machines have no clipboard.
var writeClipboard = clipboard.WriteAll

// MobileModel is the model for the phone entry server view
type MobileModel struct {
	services *service.Services
	styles   ui.Styles
	keys     ui.KeyMap

	// UI state
	width  int
	height int
	state  entryserver.State
	url    string
	qr     string
	notice notice

	editingPassword bool
	passwordInput   textinput.Model
}

// NewMobileModel creates a new mobile view model
func NewMobileModel(services *service.Services, styles ui.Styles, keys ui.KeyMap) MobileModel {
	passwordInput := textinput.New()
	passwordInput.Placeholder = "New password"
	passwordInput.CharLimit = 64
	passwordInput.Width = 30

	return MobileModel{
		services:      services,
		styles:        styles,
		keys:          keys,
		state:         services.Server.State(),
		url:           services.Server.URL(),
		passwordInput: passwordInput,
	}
}

// serverToggledMsg is sent after a start or stop request returns
type serverToggledMsg struct {
	err error
}

// passwordSavedMsg is sent after a password change
type passwordSavedMsg struct {
	err error
}

// urlCopiedMsg is sent after a clipboard write
type urlCopiedMsg struct {
	err error
}

// Init implements tea.Model
func (m MobileModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m MobileModel) Update(msg tea.Msg) (MobileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editingPassword {
			return m.handlePasswordInput(msg)
		}

		switch {
		case key.Matches(msg, m.keys.Toggle):
			return m.toggle()
		case key.Matches(msg, m.keys.Password):
			m.editingPassword = true
			m.notice = notice{}
			m.passwordInput.SetValue(m.services.Server.Password())
			m.passwordInput.CursorEnd()
			m.passwordInput.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Copy):
			if m.url == "" {
				m.notice = errNotice("Start the server first")
				return m, nil
			}
			return m, m.copyURL(m.url)
		}

	case ui.AutoStartMsg:
		if m.state != entryserver.Stopped {
			return m, nil
		}
		m.notice = okNotice("Starting entry server automatically")
		return m.start()

	case ui.ServerEventMsg:
		m.applyEvent(msg.Event)
		return m, nil

	case serverToggledMsg:
		if msg.err != nil {
			m.notice = errNotice("%s", describeServerError(msg.err))
		}
		m.syncState()
		return m, nil

	case passwordSavedMsg:
		if msg.err != nil {
			m.notice = errNotice("Password not changed: %v", msg.err)
			return m, nil
		}
		m.notice = okNotice("Password changed")
		m.stopEditing()
		return m, nil

	case urlCopiedMsg:
		if msg.err != nil {
			m.notice = errNotice("Copy failed: %v", msg.err)
		} else {
			m.notice = okNotice("Copied %s", m.url)
		}
		return m, nil

	case ui.ThemeChangedMsg:
		m.styles = msg.Styles
		return m, nil
	}

	if m.editingPassword {
		var cmd tea.Cmd
		m.passwordInput, cmd = m.passwordInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m MobileModel) handlePasswordInput(msg tea.KeyMsg) (MobileModel, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		password := strings.TrimSpace(m.passwordInput.Value())
		if password == "" {
			m.notice = errNotice("Password must not be empty")
			return m, nil
		}
		return m, m.savePassword(password)
	case tea.KeyEsc:
		m.notice = notice{}
		m.stopEditing()
		return m, nil
	}

	var cmd tea.Cmd
	m.passwordInput, cmd = m.passwordInput.Update(msg)
	return m, cmd
}

func (m *MobileModel) stopEditing() {
	m.editingPassword = false
	m.passwordInput.Blur()
	m.passwordInput.SetValue("")
}

// toggle starts a stopped server or stops a running one. Requests while
// the server is between states are ignored.
func (m MobileModel) toggle() (MobileModel, tea.Cmd) {
	switch m.state {
	case entryserver.Stopped:
		m.notice = notice{}
		return m.start()
	case entryserver.Running:
		m.state = entryserver.Stopping
		m.notice = notice{}
		return m, m.stop()
	}
	return m, nil
}

func (m MobileModel) start() (MobileModel, tea.Cmd) {
	m.state = entryserver.Starting
	server := m.services.Server
	return m, func() tea.Msg {
		return serverToggledMsg{err: server.Start(context.Background())}
	}
}

func (m MobileModel) stop() tea.Cmd {
	server := m.services.Server
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		return serverToggledMsg{err: server.Stop(ctx)}
	}
}

// applyEvent moves the view to the state an entry server event reports.
func (m *MobileModel) applyEvent(evt entryserver.Event) {
	switch evt.Kind {
	case entryserver.EventStarted:
		m.state = entryserver.Running
		m.url = evt.URL
		m.qr = renderQR(evt.URL)
		m.notice = okNotice("Listening on %s", evt.Addr)
	case entryserver.EventStopped:
		m.state = entryserver.Stopped
		m.url, m.qr = "", ""
		m.notice = okNotice("Entry server stopped")
	case entryserver.EventFailed:
		m.state = entryserver.Stopped
		m.url, m.qr = "", ""
		m.notice = errNotice("%s", describeServerError(evt.Err))
	}
}

// syncState reverts the displayed state to the server's when a request failed
// or raced an event.
func (m *MobileModel) syncState() {
	state := m.services.Server.State()
	if state == m.state {
		return
	}
	switch state {
	case entryserver.Stopped:
		m.url, m.qr = "", ""
	case entryserver.Running:
		if url := m.services.Server.URL(); url != m.url {
			m.url = url
			m.qr = renderQR(url)
		}
	}
	m.state = state
}

// State returns the server state the view shows.
func (m MobileModel) State() entryserver.State {
	return m.state
}

// View implements tea.Model
func (m MobileModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Phone Entry"))
	b.WriteString("\n")

	status := m.styles.ServerStopped
	if m.state == entryserver.Running {
		status = m.styles.ServerRunning
	}
	b.WriteString(m.styles.StatLabel.Render("Server:   "))
	b.WriteString(status.Render(m.state.String()))
	b.WriteString("\n")

	b.WriteString(m.styles.StatLabel.Render("Password: "))
	if m.editingPassword {
		b.WriteString("\n")
		b.WriteString(m.styles.InputFocused.Render(m.passwordInput.View()))
		b.WriteString("\n")
		b.WriteString(m.styles.StatLabel.Render("Enter to save, Esc to cancel"))
	} else {
		b.WriteString(m.styles.StatValue.Render(m.services.Server.Password()))
	}
	b.WriteString("\n")

	if n := m.notice.render(m.styles); n != "" {
		b.WriteString("\n")
		b.WriteString(n)
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch m.state {
	case entryserver.Running:
		b.WriteString(m.styles.StatLabel.Render("Open on your phone: "))
		b.WriteString(m.styles.URL.Render(m.url))
		b.WriteString("\n\n")
		b.WriteString(m.qr)
	case entryserver.Starting:
		b.WriteString(m.styles.StatLabel.Render("Looking for a free port..."))
	case entryserver.Stopping:
		b.WriteString(m.styles.StatLabel.Render("Stopping..."))
	default:
		b.WriteString(m.styles.StatLabel.Render("Press s to let phones on this network record entries"))
	}

	return b.String()
}

// SetSize sets the view dimensions
func (m *MobileModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// IsInputMode returns true when the view is capturing keyboard input
func (m MobileModel) IsInputMode() bool {
	return m.editingPassword
}

// savePassword creates a command that changes the secret and stores it in the config file
func (m MobileModel) savePassword(password string) tea.Cmd {
	services := m.services
	return func() tea.Msg {
		if err := services.Server.SetPassword(password); err != nil {
			return passwordSavedMsg{err: err}
		}
		return passwordSavedMsg{err: services.Config.Set("password", password)}
	}
}

func (m MobileModel) copyURL(url string) tea.Cmd {
	return func() tea.Msg {
		return urlCopiedMsg{err: writeClipboard(url)}
	}
}

// renderQR draws url as a QR code of half-block characters.
func renderQR(url string) string {
	var b strings.Builder
	qrterminal.GenerateHalfBlock(url, qrterminal.L, &b)
	return b.String()
}

func describeServerError(err error) string {
	var bindErr *entryserver.BindError
	switch {
	case errors.As(err, &bindErr):
		return fmt.Sprintf("No free port between %d and %d, change preferred_port in the config", bindErr.First, bindErr.Last)
	case errors.Is(err, entryserver.ErrNotStopped):
		return "The entry server is already running"
	}
	return fmt.Sprintf("Entry server failed: %v", err)
}
