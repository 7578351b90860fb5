package model

import (
	"encoding/json"
	"time"
)

// Priority is the backend's priority label for a task.
type Priority string

// Priority labels accepted by the task API.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority in display order.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priority labels.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Task is the client-side copy of a task record owned by the backend.
type Task struct {
	// ID is assigned by the server on creation.
	ID int `json:"id"`

	// Title is the human-readable summary. Never empty.
	Title string `json:"title"`

	// Description is optional free text; nil when the server has none.
	Description *string `json:"description"`

	// DueDate is an absolute timestamp, nil when unset.
	DueDate *time.Time `json:"due_date"`

	// Priority is one of the Priority* labels.
	Priority Priority `json:"priority"`

	// Completed marks the task as done.
	Completed bool `json:"completed"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `json:"user_id"`
}

// DescriptionText returns the description or an empty string.
func (t Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}

// IsOverdue reports whether an open task is past its due date.
func (t Task) IsOverdue(now time.Time) bool {
	return !t.Completed && t.DueDate != nil && t.DueDate.Before(now)
}

// TaskDraft is the body of a create request.
type TaskDraft struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

// TaskUpdate is the body of an update request. Only the fields that are
// set are serialized, so the server leaves everything else untouched.
type TaskUpdate struct {
	Title     *string
	Priority  *Priority
	DueDate   *time.Time
	Completed *bool

	// Description is sent only when SetDescription is true; a nil
	// Description then clears it on the server.
	Description    *string
	SetDescription bool
}

// MarshalJSON emits only the supplied fields.
func (u TaskUpdate) MarshalJSON() ([]byte, error) {
	body := make(map[string]any, 5)
	if u.Title != nil {
		body["title"] = *u.Title
	}
	if u.SetDescription {
		body["description"] = u.Description
	}
	if u.Priority != nil {
		body["priority"] = *u.Priority
	}
	if u.DueDate != nil {
		body["due_date"] = u.DueDate.UTC()
	}
	if u.Completed != nil {
		body["completed"] = *u.Completed
	}
	return json.Marshal(body)
}

// CompletionUpdate builds an update that only flips the completed flag.
func CompletionUpdate(completed bool) TaskUpdate {
	return TaskUpdate{Completed: &completed}
}
