package app

import (
	"context"
	"errors"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/api"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/session"
	"github.com/nhle/taskclient/internal/ui/auth"
)

// Toast texts for session events.
const (
	msgLoginOK        = "Login successful"
	msgLoginFailed    = "Login failed"
	msgRegisterOK     = "Registration successful. Please login."
	msgRegisterFailed = "Registration failed"
	msgIdentityFailed = "Failed to get user info"
)

// restoredMsg carries the outcome of revalidating a stored token.
type restoredMsg struct {
	user *model.User
	err  error
}

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	user *model.User
	err  error
}

// registerResultMsg carries the outcome of a registration. The
// credentials are kept to prefill the login form.
type registerResultMsg struct {
	email    string
	password string
	err      error
}

func (m Model) restore() tea.Cmd {
	s := m.session
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		user, err := s.Restore(ctx)
		return restoredMsg{user: user, err: err}
	}
}

func (m Model) login(email, password string) tea.Cmd {
	s := m.session
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		user, err := s.Login(ctx, email, password)
		return loginResultMsg{user: user, err: err}
	}
}

func (m Model) register(r auth.RegisterMsg) tea.Cmd {
	s := m.session
	timeout := m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := s.Register(ctx, r.Name, r.Email, r.Password)
		return registerResultMsg{email: r.Email, password: r.Password, err: err}
	}
}

func (m Model) handleRestored(msg restoredMsg) (tea.Model, tea.Cmd) {
	m.restoring = false
	if msg.err != nil {
		log.Printf("app: restoring session: %v", msg.err)
		cmd := m.toasts.Error(msgIdentityFailed)
		return m, cmd
	}
	if msg.user == nil {
		return m, nil
	}
	cmd := m.enterTasks()
	return m, cmd
}

func (m Model) handleLogin(msg loginResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		text := api.Message(msg.err, msgLoginFailed)
		if errors.Is(msg.err, session.ErrIdentity) {
			text = msgIdentityFailed
		}
		cmd := tea.Batch(m.auth.Failed(), m.toasts.Error(text))
		return m, cmd
	}

	cmd := tea.Batch(
		m.auth.ShowLogin(),
		m.toasts.Success(msgLoginOK),
		m.enterTasks(),
	)
	return m, cmd
}

func (m Model) handleRegister(msg registerResultMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		cmd := tea.Batch(
			m.auth.Failed(),
			m.toasts.Error(api.Message(msg.err, msgRegisterFailed)),
		)
		return m, cmd
	}
	cmd := tea.Batch(
		m.auth.ShowLoginPrefilled(msg.email, msg.password),
		m.toasts.Success(msgRegisterOK),
	)
	return m, cmd
}

// enterTasks switches to the task screen with an empty cache and the
// default filter, then loads the list.
func (m *Model) enterTasks() tea.Cmd {
	m.currentView = ViewTasks
	m.cache.Reset()
	m.taskList.SetTasks(nil, m.cache.Filter())
	return m.cache.Refresh()
}

// logout drops the session and every piece of per-user UI state. It never
// touches the network.
func (m *Model) logout() {
	m.session.Logout()
	m.cache.Reset()
	m.taskList.SetTasks(nil, m.cache.Filter())
	m.form.Close()
	m.currentView = ViewAuth
}
