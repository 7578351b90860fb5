// Package help renders the keyboard shortcut overlay.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/keys"
	"github.com/nhle/taskclient/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// View renders every binding plus the form and auth shortcuts that live
// outside the key map.
func (m Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Keyboard Shortcuts")

	extra := theme.HelpStyle.Render(
		"Forms: tab/enter next field  esc or click outside to cancel\n" +
			"Login screen: ctrl+t switch between login and register",
	)

	content := lipgloss.JoinVertical(lipgloss.Left, title, m.help.View(m.keys), "", extra)

	return theme.ModalStyle.
		Width(max(m.width-4, 20)).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 8
}
