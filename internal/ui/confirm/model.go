// Package confirm asks the user to confirm deleting a task.
package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/theme"
)

// Prompt is the question shown before a delete.
const Prompt = "Are you sure you want to delete this task?"

// ResultMsg reports the answer for the task that was asked about.
type ResultMsg struct {
	Task      model.Task
	Confirmed bool
}

// Model is a yes/no dialog bound to one task.
type Model struct {
	form    *huh.Form
	confirm *bool
	task    model.Task
	active  bool
	width   int
	height  int
}

// New creates an inactive dialog.
func New(width, height int) Model {
	return Model{confirm: new(bool), width: width, height: height}
}

// Ask shows the dialog for task. The default answer is no.
func (m *Model) Ask(task model.Task) tea.Cmd {
	m.task = task
	m.active = true
	*m.confirm = false
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(Prompt).
				Description(task.Title).
				Affirmative("Yes, delete").
				Negative("Cancel").
				Value(m.confirm),
		),
	).WithWidth(56).WithShowHelp(false)
	return m.form.Init()
}

// Active reports whether the dialog is shown.
func (m Model) Active() bool { return m.active }

// Update handles the dialog. Escape declines.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.active || m.form == nil {
		return m, nil
	}

	if k, ok := msg.(tea.KeyMsg); ok && k.Type == tea.KeyEsc {
		return m.finish(false)
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.finish(*m.confirm)
	case huh.StateAborted:
		return m.finish(false)
	}
	return m, cmd
}

func (m Model) finish(confirmed bool) (Model, tea.Cmd) {
	res := ResultMsg{Task: m.task, Confirmed: confirmed}
	m.active = false
	m.form = nil
	m.task = model.Task{}
	return m, func() tea.Msg { return res }
}

// View renders the dialog centered on screen.
func (m Model) View() string {
	if !m.active || m.form == nil {
		return ""
	}
	box := theme.ModalStyle.Render(m.form.View())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// SetSize updates the screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}
