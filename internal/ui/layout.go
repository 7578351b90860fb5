package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/theme"
)

// Layout manages the terminal frame: a header row, an optional toast
// block, the content area and a status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the rows left for content once the header, the
// status bar and toastRows rows of toasts are drawn.
func (l Layout) ContentHeight(toastRows int) int {
	return max(l.Height-l.HeaderHeight-l.StatusBarHeight-toastRows, 1)
}

// ContentTop is the first terminal row of the content area.
func (l Layout) ContentTop(toastRows int) int {
	return l.HeaderHeight + toastRows
}

// RenderHeader renders the title on the left and status on the right.
func (l Layout) RenderHeader(title, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	statusRendered := theme.HeaderStyle.Render(status)

	gap := max(l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(statusRendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.HeaderStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, titleRendered, filler, statusRendered)
}

// RenderStatusBar renders the bottom status bar with keyboard hints.
func (l Layout) RenderStatusBar(hints string) string {
	rendered := theme.StatusBarStyle.Render(hints)

	gap := max(l.Width-lipgloss.Width(rendered), 0)
	filler := lipgloss.NewStyle().
		Width(gap).
		Background(theme.StatusBarStyle.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, rendered, filler)
}

// ToastRows returns the number of rows a rendered toast block takes.
func ToastRows(toasts string) int {
	if toasts == "" {
		return 0
	}
	return lipgloss.Height(toasts)
}

// RenderWithFrame joins the frame parts top to bottom, padding content to
// fill the space between toasts and the status bar.
func (l Layout) RenderWithFrame(header, toasts, content, statusBar string) string {
	parts := []string{header}
	if toasts != "" {
		parts = append(parts, toasts)
	}
	content = lipgloss.NewStyle().
		Height(l.ContentHeight(ToastRows(toasts))).
		MaxHeight(l.ContentHeight(ToastRows(toasts))).
		Render(content)
	parts = append(parts, content, statusBar)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
