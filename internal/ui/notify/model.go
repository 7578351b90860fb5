// Package notify shows transient toasts and keeps a record of each one in
// the activity log.
package notify

import (
	"context"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/store"
	"github.com/nhle/taskclient/internal/theme"
)

// DefaultTimeout is how long a toast stays up.
const DefaultTimeout = 5 * time.Second

// DismissMsg removes the toast with the given ID.
type DismissMsg struct {
	ID string
}

// Model is the toast stack. The newest toast is last.
type Model struct {
	toasts  []model.Notification
	timeout time.Duration
	log     store.ActivityLog
	now     func() time.Time
	width   int
}

// New creates an empty stack. activity may be nil.
func New(activity store.ActivityLog, timeout time.Duration) Model {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return Model{
		timeout: timeout,
		log:     activity,
		now:     time.Now,
	}
}

// Notify shows a toast and schedules its dismissal.
func (m *Model) Notify(message string, kind model.NotificationKind) tea.Cmd {
	n := model.Notification{
		ID:        uuid.New().String(),
		Kind:      kind,
		Message:   message,
		CreatedAt: m.now(),
	}
	m.toasts = append(m.toasts, n)

	id := n.ID
	cmds := []tea.Cmd{
		tea.Tick(m.timeout, func(time.Time) tea.Msg { return DismissMsg{ID: id} }),
	}
	if m.log != nil {
		activity := m.log
		cmds = append(cmds, func() tea.Msg {
			if err := activity.RecordNotification(context.Background(), n); err != nil {
				log.Printf("notify: recording %q: %v", n.Message, err)
			}
			return nil
		})
	}
	return tea.Batch(cmds...)
}

// Success is shorthand for Notify with NotifySuccess.
func (m *Model) Success(message string) tea.Cmd {
	return m.Notify(message, model.NotifySuccess)
}

// Error is shorthand for Notify with NotifyError.
func (m *Model) Error(message string) tea.Cmd {
	return m.Notify(message, model.NotifyError)
}

// Dismiss removes the toast with id. Unknown ids are ignored.
func (m *Model) Dismiss(id string) {
	for i, t := range m.toasts {
		if t.ID == id {
			m.toasts = append(m.toasts[:i:i], m.toasts[i+1:]...)
			return
		}
	}
}

// DismissNewest removes the most recent toast.
func (m *Model) DismissNewest() {
	if len(m.toasts) > 0 {
		m.toasts = m.toasts[:len(m.toasts)-1]
	}
}

// Toasts returns the visible toasts, oldest first.
func (m Model) Toasts() []model.Notification {
	out := make([]model.Notification, len(m.toasts))
	copy(out, m.toasts)
	return out
}

// Update handles timed dismissals.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if d, ok := msg.(DismissMsg); ok {
		m.Dismiss(d.ID)
	}
	return m, nil
}

// View stacks the toasts right-aligned, newest at the bottom.
func (m Model) View() string {
	if len(m.toasts) == 0 {
		return ""
	}

	rendered := make([]string, len(m.toasts))
	for i, t := range m.toasts {
		rendered[i] = theme.ToastStyle(t.Kind).Render(t.Message)
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if m.width <= 0 {
		return stack
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stack)
}

// SetWidth sets the width toasts are aligned within.
func (m *Model) SetWidth(width int) {
	m.width = width
}
