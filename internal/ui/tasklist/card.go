package tasklist

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/model"
)

// Placeholder texts shown on cards and for an empty list.
const (
	NoDescription = "No description"
	NoDueDate     = "No due date"
	EmptyMessage  = "No tasks found. Create a new task to get started!"

	dueLayout = "Jan 2, 2006 15:04"
)

// Handlers maps card actions to commands. Each handler receives the task
// the card was projected from.
type Handlers struct {
	Edit   func(model.Task) tea.Cmd
	Delete func(model.Task) tea.Cmd
	Toggle func(model.Task) tea.Cmd
}

// Card is the display form of one task. Its action closures are bound to
// the task it was built from.
type Card struct {
	TaskID      int
	Title       string
	Description string
	Due         string
	Priority    model.Priority
	Completed   bool
	ToggleLabel string

	// Task is the record the card was projected from.
	Task model.Task

	Edit   func() tea.Cmd
	Delete func() tea.Cmd
	Toggle func() tea.Cmd
}

// Project converts tasks to cards, formatting due dates in loc. Nil
// handlers leave the matching closure nil.
func Project(tasks []model.Task, loc *time.Location, h Handlers) []Card {
	if loc == nil {
		loc = time.Local
	}

	cards := make([]Card, 0, len(tasks))
	for _, t := range tasks {
		c := Card{
			TaskID:      t.ID,
			Title:       t.Title,
			Description: NoDescription,
			Due:         NoDueDate,
			Priority:    t.Priority,
			Completed:   t.Completed,
			ToggleLabel: "Mark as complete",
			Task:        t,
		}
		if d := strings.TrimSpace(t.DescriptionText()); d != "" {
			c.Description = d
		}
		if t.DueDate != nil {
			c.Due = t.DueDate.In(loc).Format(dueLayout)
		}
		if t.Completed {
			c.ToggleLabel = "Mark as incomplete"
		}

		c.Edit = bind(h.Edit, t)
		c.Delete = bind(h.Delete, t)
		c.Toggle = bind(h.Toggle, t)

		cards = append(cards, c)
	}
	return cards
}

func bind(fn func(model.Task) tea.Cmd, t model.Task) func() tea.Cmd {
	if fn == nil {
		return nil
	}
	return func() tea.Cmd { return fn(t) }
}
