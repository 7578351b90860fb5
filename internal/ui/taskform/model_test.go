package taskform

import (
	"encoding/json"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/model"
)

var (
	zone  = time.FixedZone("UTC+2", 2*3600)
	clock = time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
)

func newForm() Model {
	m := New(100, 40)
	m.SetClock(func() time.Time { return clock }, zone)
	return m
}

func submitted(t *testing.T, m Model) SubmitMsg {
	t.Helper()
	msg, ok := m.submit()().(SubmitMsg)
	if !ok {
		t.Fatal("submit did not produce SubmitMsg")
	}
	return msg
}

func TestOpenCreateDefaults(t *testing.T) {
	m := newForm()
	m.OpenCreate()

	if !m.IsOpen() || m.Mode() != ModeCreate {
		t.Fatalf("open=%v mode=%v", m.IsOpen(), m.Mode())
	}
	if m.fb.priority != model.PriorityMedium {
		t.Errorf("priority = %q", m.fb.priority)
	}
	if m.fb.dueDate != "2026-03-02T11:15" {
		t.Errorf("due date = %q", m.fb.dueDate)
	}
	if m.fb.title != "" || m.fb.description != "" || m.fb.completed {
		t.Errorf("fields not cleared: %+v", *m.fb)
	}
}

func TestCancelThenReopenIsCleared(t *testing.T) {
	m := newForm()
	m.OpenCreate()
	m.fb.title = "half typed"
	m.fb.description = "notes"
	m.fb.priority = model.PriorityHigh

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.IsOpen() {
		t.Fatal("esc should close the form")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Error("expected CancelMsg")
	}

	m.OpenCreate()
	if m.fb.title != "" || m.fb.description != "" || m.fb.priority != model.PriorityMedium {
		t.Errorf("reopened form kept old values: %+v", *m.fb)
	}
}

func TestCancelledEditLeavesNothingForCreate(t *testing.T) {
	desc := "quarterly numbers"
	due := time.Date(2026, 4, 10, 8, 0, 0, 0, time.UTC)

	m := newForm()
	m.OpenEdit(model.Task{
		ID: 7, Title: "Report", Description: &desc,
		Priority: model.PriorityHigh, DueDate: &due, Completed: true,
	})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.IsOpen() {
		t.Fatal("esc should close the edit form")
	}

	m.OpenCreate()
	if m.Mode() != ModeCreate || m.TaskID() != 0 {
		t.Errorf("mode=%v id=%d", m.Mode(), m.TaskID())
	}
	if m.fb.title != "" || m.fb.description != "" || m.fb.completed {
		t.Errorf("edit values leaked into create: %+v", *m.fb)
	}
	if m.fb.priority != model.PriorityMedium {
		t.Errorf("priority = %q", m.fb.priority)
	}
	if m.fb.dueDate != "2026-03-02T11:15" {
		t.Errorf("due date = %q, want the now+24h default", m.fb.dueDate)
	}
}

func TestOpenEditPopulatesLocalTime(t *testing.T) {
	desc := "two litres"
	due := time.Date(2026, 3, 5, 22, 30, 0, 0, time.UTC)

	m := newForm()
	m.OpenEdit(model.Task{
		ID: 42, Title: "Buy milk", Description: &desc,
		Priority: model.PriorityHigh, DueDate: &due, Completed: true,
	})

	if m.Mode() != ModeEdit || m.TaskID() != 42 {
		t.Fatalf("mode=%v id=%d", m.Mode(), m.TaskID())
	}
	if m.fb.dueDate != "2026-03-06T00:30" {
		t.Errorf("due date = %q", m.fb.dueDate)
	}
	if m.fb.title != "Buy milk" || m.fb.description != desc || !m.fb.completed {
		t.Errorf("bindings = %+v", *m.fb)
	}
}

func TestCreateSubmitBuildsDraft(t *testing.T) {
	m := newForm()
	m.OpenCreate()
	m.fb.title = "  Buy milk "
	m.fb.priority = model.PriorityLow
	m.fb.dueDate = ""

	msg := submitted(t, m)
	if msg.Mode != ModeCreate {
		t.Fatalf("mode = %v", msg.Mode)
	}
	body, _ := json.Marshal(msg.Draft)
	if string(body) != `{"title":"Buy milk","description":null,"priority":"low"}` {
		t.Errorf("draft body = %s", body)
	}
}

func TestEditSubmitSendsUTC(t *testing.T) {
	m := newForm()
	m.OpenEdit(model.Task{ID: 5, Title: "Report", Priority: model.PriorityMedium})
	m.fb.dueDate = "2026-03-01T10:30"
	m.fb.description = ""

	msg := submitted(t, m)
	if msg.Mode != ModeEdit || msg.TaskID != 5 {
		t.Fatalf("msg = %+v", msg)
	}
	body, _ := json.Marshal(msg.Update)
	want := `{"completed":false,"description":null,"due_date":"2026-03-01T08:30:00Z","priority":"medium","title":"Report"}`
	if string(body) != want {
		t.Errorf("update body = %s\nwant %s", body, want)
	}
}

func TestBackdropClickCloses(t *testing.T) {
	m := newForm()
	m.OpenCreate()

	x, y, w, h := m.bounds()
	inside := tea.MouseMsg{X: x + w/2, Y: y + h/2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, cmd := m.Update(inside)
	if !m.IsOpen() || cmd != nil {
		t.Fatal("click inside the box should keep the form open")
	}

	outside := tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, cmd = m.Update(outside)
	if m.IsOpen() {
		t.Fatal("backdrop click should close the form")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Error("expected CancelMsg")
	}
}

func TestCloseControlCloses(t *testing.T) {
	m := newForm()
	m.OpenCreate()

	x, y, w, _ := m.bounds()
	click := tea.MouseMsg{X: x + w - 4, Y: y + 2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
	m, _ = m.Update(click)
	if m.IsOpen() {
		t.Error("clicking [x] should close the form")
	}
}

func TestReopenAfterFailureKeepsValues(t *testing.T) {
	m := newForm()
	m.OpenCreate()
	m.fb.title = "Buy milk"
	m.pending = true

	m.Reopen()
	if !m.IsOpen() || m.Pending() {
		t.Fatalf("open=%v pending=%v", m.IsOpen(), m.Pending())
	}
	if m.fb.title != "Buy milk" {
		t.Errorf("title = %q", m.fb.title)
	}
}

func TestPendingIgnoresInput(t *testing.T) {
	m := newForm()
	m.OpenCreate()
	m.pending = true

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !m.IsOpen() || cmd != nil {
		t.Error("input while saving should be ignored")
	}
}
