package confirm

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/model"
)

func TestEscDeclines(t *testing.T) {
	m := New(80, 24)
	m.Ask(model.Task{ID: 3, Title: "Buy milk"})
	if !m.Active() {
		t.Fatal("dialog should be active")
	}

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.Active() {
		t.Error("dialog should close")
	}
	res, ok := cmd().(ResultMsg)
	if !ok {
		t.Fatal("expected ResultMsg")
	}
	if res.Confirmed || res.Task.ID != 3 {
		t.Errorf("result = %+v", res)
	}
}

func TestInactiveIgnoresInput(t *testing.T) {
	m := New(80, 24)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("inactive dialog should not emit commands")
	}
	if m.View() != "" {
		t.Error("inactive dialog should render nothing")
	}
}

func TestFinishReportsAnswer(t *testing.T) {
	m := New(80, 24)
	m.Ask(model.Task{ID: 8})

	m, cmd := m.finish(true)
	res := cmd().(ResultMsg)
	if !res.Confirmed || res.Task.ID != 8 {
		t.Errorf("result = %+v", res)
	}
	if m.Active() {
		t.Error("dialog should close after answering")
	}
}
