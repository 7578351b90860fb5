package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/keys"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/session"
	"github.com/nhle/taskclient/internal/store"
	"github.com/nhle/taskclient/internal/taskcache"
	"github.com/nhle/taskclient/internal/ui"
	"github.com/nhle/taskclient/internal/ui/auth"
	"github.com/nhle/taskclient/internal/ui/confirm"
	helpview "github.com/nhle/taskclient/internal/ui/help"
	"github.com/nhle/taskclient/internal/ui/history"
	"github.com/nhle/taskclient/internal/ui/notify"
	"github.com/nhle/taskclient/internal/ui/taskform"
	"github.com/nhle/taskclient/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewAuth ViewState = iota
	ViewTasks
	ViewForm
	ViewConfirm
	ViewHelp
	ViewHistory
)

// Deps are the collaborators the root model drives.
type Deps struct {
	Session  *session.Session
	Activity store.ActivityLog
	Config   model.AppConfig
}

// Model is the root Bubble Tea model. It owns view routing and is the only
// place session, cache and form state change.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	keys         *keys.KeyMap
	session      *session.Session
	cache        *taskcache.Cache
	timeout      time.Duration

	auth     auth.Model
	taskList tasklist.Model
	form     taskform.Model
	confirm  confirm.Model
	helpView helpview.Model
	history  history.Model
	toasts   notify.Model

	restoring bool
	ready     bool
	now       func() time.Time
}

// New creates the root model in the logged-out state.
func New(d Deps) Model {
	k := keys.DefaultKeyMap()
	timeout := d.Config.RequestTimeout()
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return Model{
		currentView: ViewAuth,
		layout:      ui.NewLayout(80, 24),
		keys:        k,
		session:     d.Session,
		cache:       taskcache.New(d.Session.Client(), timeout),
		timeout:     timeout,
		auth:        auth.New(80, 22),
		taskList:    tasklist.New(k, cardHandlers(), time.Local, 80, 22),
		form:        taskform.New(80, 22),
		confirm:     confirm.New(80, 22),
		helpView:    helpview.New(k, 80, 22),
		history:     history.New(d.Activity, 80, 22),
		toasts:      notify.New(d.Activity, d.Config.NotificationTimeout()),
		restoring:   true,
		now:         time.Now,
	}
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState { return m.currentView }

// Init shows the login form and revalidates any stored token.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.auth.Init(), m.restore())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight(0)
		m.auth.SetSize(w, h)
		m.taskList.SetSize(w, h)
		m.form.SetSize(w, h)
		m.confirm.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.history.SetSize(w, h)
		m.toasts.SetWidth(w)
		return m, nil

	case restoredMsg:
		return m.handleRestored(msg)
	case auth.LoginMsg:
		return m, m.login(msg.Email, msg.Password)
	case auth.RegisterMsg:
		return m, m.register(msg)
	case loginResultMsg:
		return m.handleLogin(msg)
	case registerResultMsg:
		return m.handleRegister(msg)

	case editRequestMsg:
		m.currentView = ViewForm
		cmd := m.form.OpenEdit(msg.task)
		return m, cmd
	case deleteRequestMsg:
		m.currentView = ViewConfirm
		cmd := m.confirm.Ask(msg.task)
		return m, cmd
	case toggleRequestMsg:
		return m, m.cache.Toggle(msg.task.ID, !msg.task.Completed)

	case confirm.ResultMsg:
		m.currentView = ViewTasks
		if !msg.Confirmed {
			return m, nil
		}
		return m, m.cache.Delete(msg.Task.ID)

	case taskform.SubmitMsg:
		if msg.Mode == taskform.ModeEdit {
			return m, m.cache.Update(msg.TaskID, msg.Update)
		}
		return m, m.cache.Create(msg.Draft)
	case taskform.CancelMsg:
		m.currentView = ViewTasks
		return m, nil

	case tasklist.FilterMsg:
		cmd := m.cache.SetFilter(msg.Filter)
		m.taskList.SetTasks(m.cache.Tasks(), msg.Filter)
		return m, cmd

	case taskcache.ResultMsg:
		return m.handleResult(msg)

	case notify.DismissMsg:
		m.toasts, _ = m.toasts.Update(msg)
		return m, nil

	case history.LoadedMsg, history.ClearedMsg:
		var cmd tea.Cmd
		m.history, cmd = m.history.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		if m.currentView == ViewForm {
			return m.updateFormMouse(msg)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if key.Matches(msg, m.keys.Dismiss) && (msg.Type == tea.KeyCtrlX || !m.formFocused()) {
			m.toasts.DismissNewest()
			return m, nil
		}
		if m.currentView == ViewTasks {
			if next, cmd, handled := m.handleTaskKeys(msg); handled {
				return next, cmd
			}
		}
		if m.currentView == ViewHelp || m.currentView == ViewHistory {
			if key.Matches(msg, m.keys.Back) || (m.currentView == ViewHelp && key.Matches(msg, m.keys.Help)) {
				m.currentView = ViewTasks
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

// handleTaskKeys processes global shortcuts of the task screen. Card keys
// fall through to the list.
func (m Model) handleTaskKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit, true
	case key.Matches(msg, m.keys.New):
		m.currentView = ViewForm
		cmd := m.form.OpenCreate()
		return m, cmd, true
	case key.Matches(msg, m.keys.Refresh):
		return m, m.cache.Refresh(), true
	case key.Matches(msg, m.keys.Help):
		m.previousView = m.currentView
		m.currentView = ViewHelp
		return m, nil, true
	case key.Matches(msg, m.keys.History):
		m.previousView = m.currentView
		m.currentView = ViewHistory
		return m, m.history.Load(), true
	case key.Matches(msg, m.keys.Logout):
		m.logout()
		cmd := m.auth.ShowLogin()
		return m, cmd, true
	}
	return m, nil, false
}

// formFocused reports whether a text form receives printable keys.
func (m Model) formFocused() bool {
	return m.currentView == ViewAuth || m.currentView == ViewForm
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewAuth:
		m.auth, cmd = m.auth.Update(msg)
	case ViewTasks:
		m.taskList, cmd = m.taskList.Update(msg)
	case ViewForm:
		m.syncFormSize()
		m.form, cmd = m.form.Update(msg)
	case ViewConfirm:
		m.confirm, cmd = m.confirm.Update(msg)
	case ViewHistory:
		m.history, cmd = m.history.Update(msg)
	}

	return m, cmd
}

// updateFormMouse translates terminal coordinates into the form's content
// area before routing the event.
func (m Model) updateFormMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	m.syncFormSize()
	msg.Y -= m.layout.ContentTop(ui.ToastRows(m.toasts.View()))

	var cmd tea.Cmd
	m.form, cmd = m.form.Update(msg)
	return m, cmd
}

// syncFormSize keeps the form's geometry equal to the content area as
// drawn, which shrinks while toasts are visible.
func (m *Model) syncFormSize() {
	rows := ui.ToastRows(m.toasts.View())
	m.form.SetSize(m.layout.ContentWidth(), m.layout.ContentHeight(rows))
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	toasts := m.toasts.View()
	header := m.layout.RenderHeader("Task Manager", m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, toasts, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewAuth:
		return m.auth.View()
	case ViewTasks:
		return m.taskList.View()
	case ViewForm:
		m.syncFormSize()
		return m.form.View()
	case ViewConfirm:
		return m.confirm.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewHistory:
		return m.history.View()
	default:
		return ""
	}
}

// headerStatus shows who is logged in and when the token runs out.
func (m Model) headerStatus() string {
	user := m.session.User()
	if user == nil {
		if m.restoring {
			return "restoring session..."
		}
		return "not logged in"
	}

	claims := m.session.Claims()
	if claims == nil || claims.ExpiresAt.IsZero() {
		return user.Name
	}
	left := claims.ExpiresAt.Sub(m.now())
	if left <= 0 {
		return user.Name + " · session expired"
	}
	return fmt.Sprintf("%s · session expires in %s", user.Name, shortDuration(left))
}

func shortDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "<1m"
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewAuth:
		return "enter submit | ctrl+t login/register | ctrl+c quit"
	case ViewForm:
		return "enter next/save | esc cancel"
	case ViewConfirm:
		return "←/→ choose | enter confirm | esc cancel"
	case ViewHelp:
		return "? close help | esc back"
	case ViewHistory:
		return "c clear | j/k scroll | esc back"
	default:
		return "n new | e edit | space toggle | d delete | s status | p priority | r refresh | h history | L logout | ? help | q quit"
	}
}
