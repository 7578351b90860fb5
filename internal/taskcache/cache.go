// Package taskcache keeps the client's copy of the task list. The copy is
// never patched locally: every successful mutation is followed by a full
// refetch with the active filter, and that list replaces the cache.
package taskcache

import (
	"context"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/model"
)

// API is the subset of the REST client the cache drives.
type API interface {
	ListTasks(ctx context.Context, filter model.Filter) ([]model.Task, error)
	CreateTask(ctx context.Context, draft model.TaskDraft) (*model.Task, error)
	UpdateTask(ctx context.Context, id int, update model.TaskUpdate) (*model.Task, error)
	DeleteTask(ctx context.Context, id int) error
}

// Op identifies what produced a ResultMsg.
type Op int

const (
	OpRefresh Op = iota
	OpCreate
	OpUpdate
	OpToggle
	OpDelete
)

// ResultMsg is delivered to the UI when a list fetch or a mutation
// (plus its refetch) finishes.
type ResultMsg struct {
	Op Op

	// Seq orders list fetches by the moment their GET started. Filter is
	// the filter that GET used.
	Seq    uint64
	Filter model.Filter
	epoch  uint64

	// TaskID is the target of an update, toggle or delete.
	TaskID int
	// Completed is the requested state for OpToggle.
	Completed bool
	// Task is the record returned by create/update.
	Task *model.Task

	// Err is the mutation error, or the list error for OpRefresh.
	Err error

	// Tasks is the refetched list; valid when ListErr is nil and the
	// mutation succeeded.
	Tasks   []model.Task
	ListErr error
}

// Refetched reports whether the message carries a fresh list.
func (m ResultMsg) Refetched() bool {
	return m.Err == nil && m.ListErr == nil && m.Tasks != nil
}

// Cache is owned by the UI goroutine. Commands it returns only capture
// values, never the cache itself.
type Cache struct {
	api     API
	timeout time.Duration
	filter  model.Filter
	tasks   []model.Task
	loaded  bool

	// fetches is shared with running commands; it is bumped right before
	// each list GET.
	fetches *atomic.Uint64
	applied uint64
	epoch   uint64
}

// New creates an empty cache with the default filter.
func New(api API, timeout time.Duration) *Cache {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Cache{
		api:     api,
		timeout: timeout,
		filter:  model.DefaultFilter(),
		fetches: new(atomic.Uint64),
	}
}

// Tasks returns a copy of the cached list.
func (c *Cache) Tasks() []model.Task {
	out := make([]model.Task, len(c.tasks))
	copy(out, c.tasks)
	return out
}

// Loaded reports whether at least one list has been applied.
func (c *Cache) Loaded() bool { return c.loaded }

// Filter returns the active filter.
func (c *Cache) Filter() model.Filter { return c.filter }

// Find returns the cached task with the given id.
func (c *Cache) Find(id int) (model.Task, bool) {
	for _, t := range c.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return model.Task{}, false
}

// SetFilter replaces the filter and refetches.
func (c *Cache) SetFilter(f model.Filter) tea.Cmd {
	c.filter = f
	return c.Refresh()
}

// Refresh fetches the list with the active filter.
func (c *Cache) Refresh() tea.Cmd {
	return c.command(ResultMsg{Op: OpRefresh}, nil)
}

// Create posts a new task, then refetches.
func (c *Cache) Create(draft model.TaskDraft) tea.Cmd {
	api := c.api
	return c.command(ResultMsg{Op: OpCreate}, func(ctx context.Context) (*model.Task, error) {
		return api.CreateTask(ctx, draft)
	})
}

// Update sends the supplied fields for task id, then refetches.
func (c *Cache) Update(id int, update model.TaskUpdate) tea.Cmd {
	api := c.api
	return c.command(ResultMsg{Op: OpUpdate, TaskID: id}, func(ctx context.Context) (*model.Task, error) {
		return api.UpdateTask(ctx, id, update)
	})
}

// Toggle sends a completion-only update, then refetches.
func (c *Cache) Toggle(id int, completed bool) tea.Cmd {
	api := c.api
	return c.command(ResultMsg{Op: OpToggle, TaskID: id, Completed: completed}, func(ctx context.Context) (*model.Task, error) {
		return api.UpdateTask(ctx, id, model.CompletionUpdate(completed))
	})
}

// Delete removes task id, then refetches. Confirmation happens before.
func (c *Cache) Delete(id int) tea.Cmd {
	api := c.api
	return c.command(ResultMsg{Op: OpDelete, TaskID: id}, func(ctx context.Context) (*model.Task, error) {
		return nil, api.DeleteTask(ctx, id)
	})
}

// Apply replaces the cached list with the one carried by msg. A list is
// dropped when it was fetched with a filter other than the active one, when
// its GET started before that of the newest applied list, or when it
// predates the last Reset. It reports whether the cache changed.
func (c *Cache) Apply(msg ResultMsg) bool {
	if !msg.Refetched() {
		return false
	}
	if msg.epoch != c.epoch || msg.Filter != c.filter || msg.Seq < c.applied {
		return false
	}
	c.applied = msg.Seq
	c.tasks = msg.Tasks
	c.loaded = true
	return true
}

// Reset empties the cache and restores the default filter.
func (c *Cache) Reset() {
	c.tasks = nil
	c.loaded = false
	c.filter = model.DefaultFilter()
	c.applied = 0
	c.epoch++
}

// command captures the filter now, so the refetch uses the filter active
// when the action was issued.
func (c *Cache) command(base ResultMsg, mutate func(context.Context) (*model.Task, error)) tea.Cmd {
	base.Filter = c.filter
	base.epoch = c.epoch

	api := c.api
	fetches := c.fetches
	timeout := c.timeout

	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return execute(ctx, api, fetches, base, mutate)
	}
}

func execute(
	ctx context.Context,
	api API,
	fetches *atomic.Uint64,
	msg ResultMsg,
	mutate func(context.Context) (*model.Task, error),
) ResultMsg {
	if mutate != nil {
		task, err := mutate(ctx)
		if err != nil {
			msg.Err = err
			return msg
		}
		msg.Task = task
	}

	msg.Seq = fetches.Add(1)
	tasks, err := api.ListTasks(ctx, msg.Filter)
	if err != nil {
		if mutate == nil {
			msg.Err = err
		} else {
			msg.ListErr = err
		}
		return msg
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	msg.Tasks = tasks
	return msg
}
