package tasklist

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/keys"
	"github.com/nhle/taskclient/internal/model"
)

func ptr[T any](v T) *T { return &v }

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestProjectPlaceholders(t *testing.T) {
	cards := Project([]model.Task{{ID: 1, Title: "Buy milk", Priority: model.PriorityLow}}, time.UTC, Handlers{})
	if len(cards) != 1 {
		t.Fatalf("expected 1 card, got %d", len(cards))
	}
	c := cards[0]
	if c.Description != NoDescription {
		t.Errorf("Description = %q", c.Description)
	}
	if c.Due != NoDueDate {
		t.Errorf("Due = %q", c.Due)
	}
	if c.ToggleLabel != "Mark as complete" {
		t.Errorf("ToggleLabel = %q", c.ToggleLabel)
	}
	if c.Edit != nil || c.Delete != nil || c.Toggle != nil {
		t.Error("nil handlers should leave closures nil")
	}
}

func TestProjectFormatsDueDateInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	due := time.Date(2026, 3, 1, 20, 30, 0, 0, time.UTC)

	cards := Project([]model.Task{{
		ID: 1, Title: "t", Description: ptr("details"), DueDate: &due, Completed: true,
	}}, loc, Handlers{})

	if got := cards[0].Due; got != "Mar 2, 2026 03:30" {
		t.Errorf("Due = %q", got)
	}
	if cards[0].Description != "details" {
		t.Errorf("Description = %q", cards[0].Description)
	}
	if cards[0].ToggleLabel != "Mark as incomplete" {
		t.Errorf("ToggleLabel = %q", cards[0].ToggleLabel)
	}
}

func TestClosuresBoundToTheirTask(t *testing.T) {
	var got []int
	h := Handlers{
		Delete: func(task model.Task) tea.Cmd {
			got = append(got, task.ID)
			return nil
		},
	}
	cards := Project([]model.Task{{ID: 7}, {ID: 9}}, time.UTC, h)

	cards[1].Delete()
	cards[0].Delete()

	if len(got) != 2 || got[0] != 9 || got[1] != 7 {
		t.Errorf("handler calls = %v", got)
	}
}

func TestKeysInvokeSelectedCard(t *testing.T) {
	var toggled, edited []model.Task
	h := Handlers{
		Toggle: func(task model.Task) tea.Cmd { toggled = append(toggled, task); return nil },
		Edit:   func(task model.Task) tea.Cmd { edited = append(edited, task); return nil },
	}
	m := New(keys.DefaultKeyMap(), h, time.UTC, 80, 24)
	m.SetTasks([]model.Task{{ID: 3, Title: "a"}, {ID: 4, Title: "b"}}, model.DefaultFilter())

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m, _ = m.Update(runeKey('e'))

	if len(toggled) != 1 || toggled[0].ID != 3 {
		t.Errorf("toggled = %+v", toggled)
	}
	if len(edited) != 1 || edited[0].ID != 3 {
		t.Errorf("edited = %+v", edited)
	}
}

func TestDeleteWithoutTasksDoesNothing(t *testing.T) {
	called := false
	h := Handlers{Delete: func(model.Task) tea.Cmd { called = true; return nil }}
	m := New(keys.DefaultKeyMap(), h, time.UTC, 80, 24)

	_, cmd := m.Update(runeKey('d'))
	if cmd != nil || called {
		t.Error("delete on an empty list should be a no-op")
	}
}

func TestFilterKeysEmitNextFilter(t *testing.T) {
	m := New(keys.DefaultKeyMap(), Handlers{}, time.UTC, 80, 24)
	m.SetTasks(nil, model.Filter{Status: model.StatusAll, Priority: model.PriorityHigh})

	_, cmd := m.Update(runeKey('s'))
	msg, ok := cmd().(FilterMsg)
	if !ok {
		t.Fatal("expected FilterMsg")
	}
	if msg.Filter.Status != model.StatusActive || msg.Filter.Priority != model.PriorityHigh {
		t.Errorf("status cycle = %+v", msg.Filter)
	}

	_, cmd = m.Update(runeKey('p'))
	msg = cmd().(FilterMsg)
	if msg.Filter.Priority != model.PriorityAll || msg.Filter.Status != model.StatusAll {
		t.Errorf("priority cycle = %+v", msg.Filter)
	}
}

func TestEmptyViewShowsPlaceholder(t *testing.T) {
	m := New(keys.DefaultKeyMap(), Handlers{}, time.UTC, 80, 10)
	m.SetTasks([]model.Task{}, model.DefaultFilter())

	if !strings.Contains(m.View(), EmptyMessage) {
		t.Errorf("view missing placeholder:\n%s", m.View())
	}
}

func TestDelegateMarksOnlyOpenPastDueTasks(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	d := cardDelegate{now: func() time.Time { return now }}
	l := list.New(nil, d, 80, 20)

	render := func(task model.Task) string {
		var buf bytes.Buffer
		d.Render(&buf, l, 0, cardItem{card: Project([]model.Task{task}, time.UTC, Handlers{})[0]})
		return buf.String()
	}

	if out := render(model.Task{ID: 1, Title: "late", Priority: model.PriorityLow, DueDate: &past}); !strings.Contains(out, "(overdue)") {
		t.Errorf("open past-due task not marked:\n%s", out)
	}
	if out := render(model.Task{ID: 2, Title: "done", Priority: model.PriorityLow, DueDate: &past, Completed: true}); strings.Contains(out, "(overdue)") {
		t.Errorf("completed task marked overdue:\n%s", out)
	}
	if out := render(model.Task{ID: 3, Title: "soon", Priority: model.PriorityLow, DueDate: &future}); strings.Contains(out, "(overdue)") {
		t.Errorf("future task marked overdue:\n%s", out)
	}
}
