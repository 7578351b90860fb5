package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/model"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue   = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen  = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed    = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorGray   = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite  = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// Apply forces the light or dark palette. Any other name keeps lipgloss's
// terminal background detection.
func Apply(name string) {
	switch name {
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	case "light":
		lipgloss.SetHasDarkBackground(false)
	}
}

// HeaderStyle is used for the application title bar.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom key hint bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// CardStyle is the base style for a task card.
var CardStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedCardStyle highlights the focused card.
var SelectedCardStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// TitleStyle renders card titles.
var TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(ColorWhite)

// CompletedTitleStyle renders titles of completed tasks.
var CompletedTitleStyle = lipgloss.NewStyle().
	Strikethrough(true).
	Foreground(ColorGray)

// DimmedStyle is used for secondary text.
var DimmedStyle = lipgloss.NewStyle().Foreground(ColorGray)

// OverdueStyle marks due dates in the past.
var OverdueStyle = lipgloss.NewStyle().Foreground(ColorRed)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// ModalStyle frames dialogs drawn over the task list.
var ModalStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBlue)

// FilterActiveStyle marks the selected filter value.
var FilterActiveStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorBlue).
	Underline(true)

var toastBase = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder())

// ToastStyle returns the style for a notification of the given kind.
func ToastStyle(kind model.NotificationKind) lipgloss.Style {
	if kind == model.NotifyError {
		return toastBase.BorderForeground(ColorRed).Foreground(ColorRed)
	}
	return toastBase.BorderForeground(ColorGreen).Foreground(ColorGreen)
}

// PriorityStyle returns a color-coded badge style for the given priority.
func PriorityStyle(p model.Priority) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true).Padding(0, 1)

	switch p {
	case model.PriorityHigh:
		return base.Foreground(ColorRed)
	case model.PriorityMedium:
		return base.Foreground(ColorYellow)
	case model.PriorityLow:
		return base.Foreground(ColorBlue)
	default:
		return base.Foreground(ColorGray)
	}
}
