// Package tasklist renders the cached tasks as cards and routes card
// actions to the handlers the root model registers.
package tasklist

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/keys"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/theme"
)

// FilterMsg asks the root model to apply a new filter.
type FilterMsg struct {
	Filter model.Filter
}

// Model is the task card list.
type Model struct {
	list     list.Model
	keys     *keys.KeyMap
	handlers Handlers
	loc      *time.Location
	filter   model.Filter
	cards    []Card
	width    int
	height   int
}

// New creates an empty task list. Due dates are shown in loc.
func New(k *keys.KeyMap, h Handlers, loc *time.Location, width, height int) Model {
	if loc == nil {
		loc = time.Local
	}

	l := list.New([]list.Item{}, cardDelegate{now: time.Now}, width, height-1)
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	l.SetStatusBarItemName("task", "tasks")

	return Model{
		list:     l,
		keys:     k,
		handlers: h,
		loc:      loc,
		filter:   model.DefaultFilter(),
		width:    width,
		height:   height,
	}
}

// SetTasks replaces the displayed cards.
func (m *Model) SetTasks(tasks []model.Task, filter model.Filter) tea.Cmd {
	m.filter = filter
	m.cards = Project(tasks, m.loc, m.handlers)

	items := make([]list.Item, len(m.cards))
	for i, c := range m.cards {
		items[i] = cardItem{card: c}
	}
	return m.list.SetItems(items)
}

// Cards returns the current projection.
func (m Model) Cards() []Card { return m.cards }

// Selected returns the focused card.
func (m Model) Selected() (Card, bool) {
	ci, ok := m.list.SelectedItem().(cardItem)
	if !ok {
		return Card{}, false
	}
	return ci.card, true
}

// Update handles card actions, filter keys and list navigation.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(keyMsg, m.keys.Edit):
		return m, m.invoke(func(c Card) func() tea.Cmd { return c.Edit })
	case key.Matches(keyMsg, m.keys.Delete):
		return m, m.invoke(func(c Card) func() tea.Cmd { return c.Delete })
	case key.Matches(keyMsg, m.keys.Toggle):
		return m, m.invoke(func(c Card) func() tea.Cmd { return c.Toggle })

	case key.Matches(keyMsg, m.keys.CycleStatus):
		f := m.filter
		f.Status = f.Status.Next()
		return m, filterCmd(f)
	case key.Matches(keyMsg, m.keys.CyclePriority):
		f := m.filter
		f.Priority = model.NextPriorityFilter(f.Priority)
		return m, filterCmd(f)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) invoke(pick func(Card) func() tea.Cmd) tea.Cmd {
	c, ok := m.Selected()
	if !ok {
		return nil
	}
	if fn := pick(c); fn != nil {
		return fn()
	}
	return nil
}

func filterCmd(f model.Filter) tea.Cmd {
	return func() tea.Msg { return FilterMsg{Filter: f} }
}

// View renders the filter bar above the cards or the empty placeholder.
func (m Model) View() string {
	bar := m.filterBar()
	if len(m.cards) == 0 {
		empty := lipgloss.NewStyle().
			Width(m.width).
			Height(max(m.height-1, 1)).
			Align(lipgloss.Center, lipgloss.Center).
			Foreground(theme.ColorGray).
			Render(EmptyMessage)
		return lipgloss.JoinVertical(lipgloss.Left, bar, empty)
	}
	return lipgloss.JoinVertical(lipgloss.Left, bar, m.list.View())
}

func (m Model) filterBar() string {
	statuses := []model.StatusFilter{model.StatusAll, model.StatusActive, model.StatusCompleted}
	var sb strings.Builder
	sb.WriteString(theme.DimmedStyle.Render("Status:"))
	for _, s := range statuses {
		sb.WriteString(" ")
		sb.WriteString(option(string(s), s == m.filter.Status))
	}

	sb.WriteString(theme.DimmedStyle.Render("   Priority:"))
	priorities := append([]model.Priority{model.PriorityAll}, model.Priorities...)
	for _, p := range priorities {
		sb.WriteString(" ")
		sb.WriteString(option(string(p), p == m.filter.Priority))
	}
	return lipgloss.NewStyle().PaddingLeft(1).Render(sb.String())
}

func option(label string, active bool) string {
	if active {
		return theme.FilterActiveStyle.Render(label)
	}
	return theme.DimmedStyle.Render(label)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-1)
}
