package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/nhle/taskclient/internal/model"
)

// ListTasks fetches one page (up to 100) of the caller's tasks.
func (c *Client) ListTasks(ctx context.Context, filter model.Filter) ([]model.Task, error) {
	tasks := []model.Task{}
	if err := c.do(ctx, c.httpClient, http.MethodGet, "/tasks/?"+filter.Query(), nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask posts a new task and returns the stored record.
func (c *Client) CreateTask(ctx context.Context, draft model.TaskDraft) (*model.Task, error) {
	if draft.DueDate != nil {
		utc := draft.DueDate.UTC()
		draft.DueDate = &utc
	}

	var task model.Task
	if err := c.do(ctx, c.httpClient, http.MethodPost, "/tasks/", draft, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateTask sends only the fields set in update.
func (c *Client) UpdateTask(ctx context.Context, id int, update model.TaskUpdate) (*model.Task, error) {
	var task model.Task
	if err := c.do(ctx, c.httpClient, http.MethodPut, fmt.Sprintf("/tasks/%d", id), update, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// DeleteTask removes a task. Callers confirm with the user first.
func (c *Client) DeleteTask(ctx context.Context, id int) error {
	return c.do(ctx, c.httpClient, http.MethodDelete, fmt.Sprintf("/tasks/%d", id), nil, nil)
}
