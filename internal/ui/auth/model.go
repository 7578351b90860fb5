// Package auth is the login and registration screen shown while the
// session is logged out.
package auth

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/theme"
)

// Mode selects which form is shown.
type Mode int

const (
	ModeLogin Mode = iota
	ModeRegister
)

// LoginMsg asks the root model to log in.
type LoginMsg struct {
	Email    string
	Password string
}

// RegisterMsg asks the root model to create an account.
type RegisterMsg struct {
	Name     string
	Email    string
	Password string
}

const toggleKey = "ctrl+t"

type formBindings struct {
	name     string
	email    string
	password string
}

// Model holds the active auth form.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	mode    Mode
	pending bool
	width   int
	height  int
}

// New creates the screen in login mode.
func New(width, height int) Model {
	m := Model{fb: &formBindings{}, width: width, height: height}
	m.form = m.buildForm()
	return m
}

// Init starts the current form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Mode returns the active form.
func (m Model) Mode() Mode { return m.mode }

// Pending reports whether a request is in flight.
func (m Model) Pending() bool { return m.pending }

// ShowLogin switches to an empty login form.
func (m *Model) ShowLogin() tea.Cmd {
	return m.switchTo(ModeLogin, "", "")
}

// ShowLoginPrefilled switches to the login form with the given credentials
// filled in, as after a successful registration.
func (m *Model) ShowLoginPrefilled(email, password string) tea.Cmd {
	return m.switchTo(ModeLogin, email, password)
}

// ShowRegister switches to an empty registration form.
func (m *Model) ShowRegister() tea.Cmd {
	return m.switchTo(ModeRegister, "", "")
}

func (m *Model) switchTo(mode Mode, email, password string) tea.Cmd {
	m.mode = mode
	m.pending = false
	*m.fb = formBindings{email: email, password: password}
	m.form = m.buildForm()
	return m.form.Init()
}

// Failed rebuilds the form keeping what was typed, so the user can retry.
func (m *Model) Failed() tea.Cmd {
	m.pending = false
	m.form = m.buildForm()
	return m.form.Init()
}

// Update routes input to the form; ctrl+t toggles login and register.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.pending {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.String() == toggleKey {
		var cmd tea.Cmd
		if m.mode == ModeLogin {
			cmd = m.ShowRegister()
		} else {
			cmd = m.ShowLogin()
		}
		return m, cmd
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		m.pending = true
		return m, m.submit()
	case huh.StateAborted:
		cmd := m.Failed()
		return m, cmd
	}
	return m, cmd
}

func (m Model) submit() tea.Cmd {
	email := strings.TrimSpace(m.fb.email)
	password := m.fb.password

	if m.mode == ModeRegister {
		name := strings.TrimSpace(m.fb.name)
		return func() tea.Msg {
			return RegisterMsg{Name: name, Email: email, Password: password}
		}
	}
	return func() tea.Msg {
		return LoginMsg{Email: email, Password: password}
	}
}

func (m *Model) buildForm() *huh.Form {
	var fields []huh.Field
	if m.mode == ModeRegister {
		fields = append(fields,
			huh.NewInput().
				Title("Name").
				Value(&m.fb.name).
				Validate(validateRequired("Name")),
		)
	}
	fields = append(fields,
		huh.NewInput().
			Title("Email").
			Placeholder("you@example.com").
			Value(&m.fb.email).
			Validate(validateEmail),
		huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&m.fb.password).
			Validate(validateRequired("Password")),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// View renders the active form centered on screen.
func (m Model) View() string {
	title, other := "Login", "Register"
	if m.mode == ModeRegister {
		title, other = "Register", "Login"
	}

	heading := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title)
	hint := theme.HelpStyle.Render(fmt.Sprintf("%s: %s  enter: submit  ctrl+c: quit", toggleKey, other))
	if m.pending {
		hint = theme.HelpStyle.Render("Please wait...")
	}

	box := theme.ModalStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left, heading, "", m.form.View(), hint),
	)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(m.formWidth())
}

func (m Model) formWidth() int {
	return min(max(m.width-12, 30), 56)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	if at <= 0 || at == len(s)-1 {
		return fmt.Errorf("enter a valid email address")
	}
	return nil
}
