// Package history shows the activity log of past notifications.
package history

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/store"
	"github.com/nhle/taskclient/internal/theme"
)

// LoadedMsg carries entries read from the activity log.
type LoadedMsg struct {
	Entries []model.Notification
	Err     error
}

// ClearedMsg reports the result of clearing the log.
type ClearedMsg struct {
	Err error
}

// Model is a scrollable list of past notifications.
type Model struct {
	log      store.ActivityLog
	viewport viewport.Model
	entries  []model.Notification
	err      error
	width    int
	height   int
}

// New creates the view. activity may be nil, in which case the view stays
// empty.
func New(activity store.ActivityLog, width, height int) Model {
	vp := viewport.New(width, max(height-2, 1))
	return Model{log: activity, viewport: vp, width: width, height: height}
}

// Load reads the most recent entries.
func (m Model) Load() tea.Cmd {
	activity := m.log
	if activity == nil {
		return nil
	}
	return func() tea.Msg {
		entries, err := activity.RecentNotifications(context.Background(), store.HistoryLimit)
		return LoadedMsg{Entries: entries, Err: err}
	}
}

// Clear empties the log and reloads.
func (m Model) Clear() tea.Cmd {
	activity := m.log
	if activity == nil {
		return nil
	}
	return func() tea.Msg {
		return ClearedMsg{Err: activity.ClearNotifications(context.Background())}
	}
}

// Entries returns the loaded entries, newest first.
func (m Model) Entries() []model.Notification { return m.entries }

// Update handles load results, c to clear, and scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		m.err = msg.Err
		if msg.Err == nil {
			m.entries = msg.Entries
		}
		m.viewport.SetContent(m.render())
		m.viewport.GotoTop()
		return m, nil

	case ClearedMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.viewport.SetContent(m.render())
			return m, nil
		}
		return m, m.Load()

	case tea.KeyMsg:
		if msg.String() == "c" {
			return m, m.Clear()
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) render() string {
	if m.err != nil {
		return theme.OverdueStyle.Render(fmt.Sprintf("Could not read activity log: %v", m.err))
	}
	if len(m.entries) == 0 {
		return theme.DimmedStyle.Render("No notifications yet.")
	}

	var sb strings.Builder
	for _, n := range m.entries {
		marker := lipgloss.NewStyle().Foreground(theme.ColorGreen).Render("✓")
		if n.Kind == model.NotifyError {
			marker = theme.OverdueStyle.Render("✗")
		}
		fmt.Fprintf(&sb, "%s %s  %s\n",
			theme.DimmedStyle.Render(n.CreatedAt.Local().Format("Jan 02 15:04:05")),
			marker,
			n.Message,
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// View renders the title, entries and key hints.
func (m Model) View() string {
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render("Notification History")
	hint := theme.HelpStyle.Render("c: clear  esc: back")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), hint)
}

// SetSize updates the view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = max(height-2, 1)
}
