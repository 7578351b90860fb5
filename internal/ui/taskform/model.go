// Package taskform is the create/edit modal for a single task. The form is
// either closed or open in one of two modes; bindings exist only while it
// is open.
package taskform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/theme"
)

// DueLayout is the datetime-local representation used by the due date field.
const DueLayout = "2006-01-02T15:04"

const closeLabel = "[x]"

// Mode is the purpose of an open form.
type Mode int

const (
	ModeCreate Mode = iota
	ModeEdit
)

// SubmitMsg carries a validated form. Draft is set in create mode; TaskID
// and Update are set in edit mode.
type SubmitMsg struct {
	Mode   Mode
	TaskID int
	Draft  model.TaskDraft
	Update model.TaskUpdate
}

// CancelMsg is dispatched when the user closes the form without submitting.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title       string
	description string
	priority    model.Priority
	dueDate     string
	completed   bool
}

// Model is the Bubble Tea model for the task modal.
type Model struct {
	form    *huh.Form
	fb      *formBindings
	open    bool
	pending bool
	mode    Mode
	taskID  int

	now func() time.Time
	loc *time.Location

	width  int
	height int
}

// New creates a closed form sized to the terminal.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		now:    time.Now,
		loc:    time.Local,
		width:  width,
		height: height,
	}
}

// SetClock replaces the time source and the zone due dates are entered in.
func (m *Model) SetClock(now func() time.Time, loc *time.Location) {
	m.now = now
	m.loc = loc
}

// IsOpen reports whether the modal is shown.
func (m Model) IsOpen() bool { return m.open }

// Mode returns the mode of an open form.
func (m Model) Mode() Mode { return m.mode }

// TaskID returns the task being edited.
func (m Model) TaskID() int { return m.taskID }

// OpenCreate opens an empty form. Priority defaults to medium and the due
// date to this time tomorrow.
func (m *Model) OpenCreate() tea.Cmd {
	m.reset()
	m.open = true
	m.mode = ModeCreate
	m.fb.priority = model.PriorityMedium
	m.fb.dueDate = m.now().In(m.loc).Add(24 * time.Hour).Format(DueLayout)
	return m.rebuild()
}

// OpenEdit opens the form populated from task.
func (m *Model) OpenEdit(task model.Task) tea.Cmd {
	m.reset()
	m.open = true
	m.mode = ModeEdit
	m.taskID = task.ID
	m.fb.title = task.Title
	m.fb.description = task.DescriptionText()
	m.fb.priority = task.Priority
	if !m.fb.priority.Valid() {
		m.fb.priority = model.PriorityMedium
	}
	if task.DueDate != nil {
		m.fb.dueDate = task.DueDate.In(m.loc).Format(DueLayout)
	}
	m.fb.completed = task.Completed
	return m.rebuild()
}

// Pending reports whether a submission is waiting for the server.
func (m Model) Pending() bool { return m.pending }

// Reopen rebuilds the form with the values from the last submission so
// the user can correct them after a failed request.
func (m *Model) Reopen() tea.Cmd {
	if !m.open {
		return nil
	}
	m.pending = false
	return m.rebuild()
}

// Close hides the form and clears every binding.
func (m *Model) Close() {
	m.reset()
}

func (m *Model) reset() {
	m.open = false
	m.pending = false
	m.form = nil
	m.mode = ModeCreate
	m.taskID = 0
	*m.fb = formBindings{}
}

func (m *Model) rebuild() tea.Cmd {
	m.form = m.buildForm()
	return m.form.Init()
}

// Update routes input to the form. Escape, the close control and clicks on
// the backdrop close it.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if !m.open || m.form == nil || m.pending {
		return m, nil
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyEsc {
			return m.cancel()
		}
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			if !m.Contains(msg.X, msg.Y) || m.onCloseControl(msg.X, msg.Y) {
				return m.cancel()
			}
		}
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.pending = true
		return m, m.submit()
	}
	if m.form.State == huh.StateAborted {
		return m.cancel()
	}
	return m, cmd
}

func (m Model) cancel() (Model, tea.Cmd) {
	m.Close()
	return m, func() tea.Msg { return CancelMsg{} }
}

func (m Model) submit() tea.Cmd {
	title := strings.TrimSpace(m.fb.title)
	priority := m.fb.priority

	var desc *string
	if d := strings.TrimSpace(m.fb.description); d != "" {
		desc = &d
	}

	var due *time.Time
	if s := strings.TrimSpace(m.fb.dueDate); s != "" {
		if t, err := time.ParseInLocation(DueLayout, s, m.loc); err == nil {
			utc := t.UTC()
			due = &utc
		}
	}

	if m.mode == ModeEdit {
		completed := m.fb.completed
		msg := SubmitMsg{
			Mode:   ModeEdit,
			TaskID: m.taskID,
			Update: model.TaskUpdate{
				Title:          &title,
				Description:    desc,
				SetDescription: true,
				Priority:       &priority,
				DueDate:        due,
				Completed:      &completed,
			},
		}
		return func() tea.Msg { return msg }
	}

	msg := SubmitMsg{
		Mode: ModeCreate,
		Draft: model.TaskDraft{
			Title:       title,
			Description: desc,
			Priority:    priority,
			DueDate:     due,
		},
	}
	return func() tea.Msg { return msg }
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("What needs to be done?").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[model.Priority]().
			Title("Priority").
			Options(
				huh.NewOption("Low", model.PriorityLow),
				huh.NewOption("Medium", model.PriorityMedium),
				huh.NewOption("High", model.PriorityHigh),
			).
			Value(&m.fb.priority),
		huh.NewInput().
			Title("Due Date").
			Placeholder("YYYY-MM-DDTHH:MM (optional)").
			Value(&m.fb.dueDate).
			Validate(m.validateOptionalDue),
	}
	if m.mode == ModeEdit {
		fields = append(fields,
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Yes").
				Negative("No").
				Value(&m.fb.completed),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithShowHelp(false)
}

// View renders the modal centered over a blank backdrop filling the
// terminal.
func (m Model) View() string {
	if !m.open || m.form == nil {
		return ""
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.box())
}

func (m Model) box() string {
	titleText := "New Task"
	if m.mode == ModeEdit {
		titleText = "Edit Task"
	}

	inner := m.formWidth()
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(titleText)
	gap := inner - lipgloss.Width(title) - len(closeLabel)
	if gap < 1 {
		gap = 1
	}
	header := title + strings.Repeat(" ", gap) + theme.DimmedStyle.Render(closeLabel)

	hint := theme.HelpStyle.Render("enter: next/save  esc: cancel")
	if m.pending {
		hint = theme.HelpStyle.Render("Saving...")
	}
	content := lipgloss.JoinVertical(lipgloss.Left, header, "", m.form.View(), hint)
	return theme.ModalStyle.Width(inner + 4).Render(content)
}

// bounds returns the top-left corner and size of the modal box as placed
// by View.
func (m Model) bounds() (x, y, w, h int) {
	b := m.box()
	w, h = lipgloss.Width(b), lipgloss.Height(b)
	x = max((m.width-w)/2, 0)
	y = max((m.height-h)/2, 0)
	return x, y, w, h
}

// Contains reports whether the cell at (x, y) lies inside the modal box.
func (m Model) Contains(x, y int) bool {
	if !m.open || m.form == nil {
		return false
	}
	bx, by, bw, bh := m.bounds()
	return x >= bx && x < bx+bw && y >= by && y < by+bh
}

// onCloseControl reports whether (x, y) hits the [x] label. The label sits
// on the first content row, inside the border and padding.
func (m Model) onCloseControl(x, y int) bool {
	bx, by, bw, _ := m.bounds()
	row := by + 2
	right := bx + bw - 3
	return y == row && x >= right-len(closeLabel) && x < right
}

// SetSize updates the terminal dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 12
	if w < 40 {
		w = 40
	}
	if w > 72 {
		w = 72
	}
	return w
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func (m Model) validateOptionalDue(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if _, err := time.ParseInLocation(DueLayout, s, m.loc); err != nil {
		return fmt.Errorf("invalid date, use YYYY-MM-DDTHH:MM")
	}
	return nil
}
