package app

import (
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/api"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/taskcache"
	"github.com/nhle/taskclient/internal/ui/tasklist"
)

// Toast texts for task operations.
const (
	msgCreated      = "Task created successfully"
	msgUpdated      = "Task updated successfully"
	msgCompleted    = "Task marked as completed"
	msgActive       = "Task marked as active"
	msgDeleted      = "Task deleted successfully"
	msgLoadFailed   = "Failed to load tasks"
	msgSaveFailed   = "Failed to save task"
	msgUpdateFailed = "Failed to update task"
	msgDeleteFailed = "Failed to delete task"
)

type editRequestMsg struct{ task model.Task }

type deleteRequestMsg struct{ task model.Task }

type toggleRequestMsg struct{ task model.Task }

// cardHandlers turns card actions into messages for the root model.
func cardHandlers() tasklist.Handlers {
	return tasklist.Handlers{
		Edit: func(t model.Task) tea.Cmd {
			return func() tea.Msg { return editRequestMsg{task: t} }
		},
		Delete: func(t model.Task) tea.Cmd {
			return func() tea.Msg { return deleteRequestMsg{task: t} }
		},
		Toggle: func(t model.Task) tea.Cmd {
			return func() tea.Msg { return toggleRequestMsg{task: t} }
		},
	}
}

// handleResult applies a finished fetch or mutation and reports it. Errors,
// including a rejected token, only produce a toast; the session is left as is.
func (m Model) handleResult(msg taskcache.ResultMsg) (tea.Model, tea.Cmd) {
	if m.session.User() == nil {
		// Logged out while the request was in flight.
		return m, nil
	}

	if m.cache.Apply(msg) {
		m.taskList.SetTasks(m.cache.Tasks(), m.cache.Filter())
	}

	if msg.Err != nil {
		log.Printf("app: task op %d failed: %v", msg.Op, msg.Err)
		var cmds []tea.Cmd
		if msg.Op == taskcache.OpCreate || msg.Op == taskcache.OpUpdate {
			cmds = append(cmds, m.form.Reopen())
		}
		cmds = append(cmds, m.toasts.Error(api.Message(msg.Err, failureText(msg.Op))))
		return m, tea.Batch(cmds...)
	}

	var cmds []tea.Cmd
	switch msg.Op {
	case taskcache.OpCreate, taskcache.OpUpdate:
		m.form.Close()
		if m.currentView == ViewForm {
			m.currentView = ViewTasks
		}
	}
	if text := successText(msg); text != "" {
		cmds = append(cmds, m.toasts.Success(text))
	}
	if msg.ListErr != nil {
		log.Printf("app: refetch after op %d failed: %v", msg.Op, msg.ListErr)
		cmds = append(cmds, m.toasts.Error(api.Message(msg.ListErr, msgLoadFailed)))
	}
	return m, tea.Batch(cmds...)
}

func successText(msg taskcache.ResultMsg) string {
	switch msg.Op {
	case taskcache.OpCreate:
		return msgCreated
	case taskcache.OpUpdate:
		return msgUpdated
	case taskcache.OpToggle:
		if msg.Completed {
			return msgCompleted
		}
		return msgActive
	case taskcache.OpDelete:
		return msgDeleted
	default:
		return ""
	}
}

func failureText(op taskcache.Op) string {
	switch op {
	case taskcache.OpCreate, taskcache.OpUpdate:
		return msgSaveFailed
	case taskcache.OpToggle:
		return msgUpdateFailed
	case taskcache.OpDelete:
		return msgDeleteFailed
	default:
		return msgLoadFailed
	}
}
