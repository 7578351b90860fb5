package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/theme"
)

// cardItem wraps a Card so it can be used in a bubbles/list.
type cardItem struct {
	card Card
}

func (i cardItem) FilterValue() string { return i.card.Title }

// cardDelegate renders each card on three lines: title with priority
// badge, description, and due date with the toggle hint.
type cardDelegate struct {
	now func() time.Time
}

func (d cardDelegate) Height() int  { return 3 }
func (d cardDelegate) Spacing() int { return 1 }

func (d cardDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

func (d cardDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(cardItem)
	if !ok {
		return
	}
	c := ci.card
	selected := index == m.Index()

	check := "[ ]"
	title := theme.TitleStyle.Render(c.Title)
	if c.Completed {
		check = "[✓]"
		title = theme.CompletedTitleStyle.Render(c.Title)
	}
	badge := theme.PriorityStyle(c.Priority).Render(strings.ToUpper(string(c.Priority)))
	first := fmt.Sprintf("%s %s %s", check, title, badge)

	second := theme.DimmedStyle.Render(truncate(firstLine(c.Description), m.Width()-6))

	due := theme.DimmedStyle.Render("Due: " + c.Due)
	if c.Task.IsOverdue(d.now()) {
		due = theme.OverdueStyle.Render("Due: " + c.Due + " (overdue)")
	}
	third := due
	if selected {
		third += theme.HelpStyle.Render("  space: " + c.ToggleLabel)
	}

	block := lipgloss.JoinVertical(lipgloss.Left, first, second, third)
	if selected {
		block = theme.SelectedCardStyle.Render(block)
	} else {
		block = theme.CardStyle.Render(block)
	}

	fmt.Fprint(w, block)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i] + " …"
	}
	return s
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}
