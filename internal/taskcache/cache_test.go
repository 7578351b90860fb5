package taskcache

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/taskclient/internal/api"
	"github.com/nhle/taskclient/internal/credential"
	"github.com/nhle/taskclient/internal/model"
	"github.com/nhle/taskclient/internal/session"
	"github.com/nhle/taskclient/internal/testserver"
	"github.com/nhle/taskclient/tests/testutil"
)

func newCache(t *testing.T) (*Cache, *testserver.Server) {
	t.Helper()

	srv, url := testutil.NewTestServer(t)
	testutil.SeedUser(t, srv, "Ada", "ada@example.com", "s3cret")

	s := session.New(credential.NewStore(testutil.NewTestKeyring()), url, 5*time.Second)
	if _, err := s.Login(context.Background(), "ada@example.com", "s3cret"); err != nil {
		t.Fatalf("Login: %v", err)
	}
	srv.ResetRequests()
	return New(s.Client(), 5*time.Second), srv
}

// resultOf runs a tea.Cmd from the cache and returns its message.
func resultOf(t *testing.T, cmd tea.Cmd) ResultMsg {
	t.Helper()
	raw := cmd()
	msg, ok := raw.(ResultMsg)
	if !ok {
		t.Fatalf("unexpected message %T", raw)
	}
	return msg
}

func TestCreateRefetchesList(t *testing.T) {
	c, srv := newCache(t)

	msg := resultOf(t, c.Create(model.TaskDraft{Title: "Buy milk", Priority: model.PriorityLow}))
	if msg.Err != nil || msg.ListErr != nil {
		t.Fatalf("create: err=%v listErr=%v", msg.Err, msg.ListErr)
	}
	if !c.Apply(msg) {
		t.Fatal("refetched list was not applied")
	}

	tasks := c.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
		t.Fatalf("tasks = %+v", tasks)
	}

	reqs := srv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("expected POST then GET, got %+v", reqs)
	}
	if reqs[0].Method != http.MethodPost || reqs[1].Method != http.MethodGet {
		t.Errorf("request order = %s, %s", reqs[0].Method, reqs[1].Method)
	}
	if reqs[1].URI != "/tasks/?skip=0&limit=100" {
		t.Errorf("refetch URI = %q", reqs[1].URI)
	}
}

func TestToggleSendsOnlyCompletion(t *testing.T) {
	c, srv := newCache(t)
	resultOf(t, c.Create(model.TaskDraft{Title: "Write report", Priority: model.PriorityHigh}))
	id := srv.Tasks()[0].ID
	srv.ResetRequests()

	msg := resultOf(t, c.Toggle(id, true))
	if msg.Err != nil {
		t.Fatalf("toggle: %v", msg.Err)
	}
	c.Apply(msg)

	reqs := srv.Requests()
	if reqs[0].Method != http.MethodPut || reqs[0].Body != `{"completed":true}` {
		t.Errorf("toggle request = %+v", reqs[0])
	}
	task, ok := c.Find(id)
	if !ok || !task.Completed {
		t.Errorf("task after toggle = %+v", task)
	}
}

func TestRefetchUsesFilterAtIssueTime(t *testing.T) {
	c, srv := newCache(t)

	c.filter = model.Filter{Status: model.StatusActive, Priority: model.PriorityAll}
	cmd := c.Create(model.TaskDraft{Title: "a", Priority: model.PriorityMedium})
	c.filter = model.DefaultFilter()

	resultOf(t, cmd)
	reqs := srv.Requests()
	if got := reqs[len(reqs)-1].URI; got != "/tasks/?skip=0&limit=100&completed=false" {
		t.Errorf("refetch URI = %q", got)
	}
}

func TestFailedMutationSkipsRefetch(t *testing.T) {
	c, srv := newCache(t)

	msg := resultOf(t, c.Delete(999))
	if msg.Err == nil {
		t.Fatal("expected error deleting missing task")
	}
	if got := api.Message(msg.Err, "Failed to delete task"); got != "Task not found" {
		t.Errorf("Message = %q", got)
	}
	if c.Apply(msg) {
		t.Error("failed mutation must not change the cache")
	}
	if n := len(srv.Requests()); n != 1 {
		t.Errorf("expected only the DELETE, got %d requests", n)
	}
}

type stubAPI struct {
	lists   [][]model.Task
	listErr error
	calls   int
}

func (s *stubAPI) ListTasks(context.Context, model.Filter) ([]model.Task, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	out := s.lists[s.calls]
	s.calls++
	return out, nil
}

func (s *stubAPI) CreateTask(_ context.Context, d model.TaskDraft) (*model.Task, error) {
	return &model.Task{ID: 1, Title: d.Title}, nil
}

func (s *stubAPI) UpdateTask(context.Context, int, model.TaskUpdate) (*model.Task, error) {
	return nil, errors.New("boom")
}

func (s *stubAPI) DeleteTask(context.Context, int) error { return nil }

func TestApplyDropsListForReplacedFilter(t *testing.T) {
	stub := &stubAPI{lists: [][]model.Task{
		{{ID: 1, Title: "old"}},
		{{ID: 2, Title: "new"}},
	}}
	c := New(stub, time.Second)

	older := c.Refresh()
	newer := c.SetFilter(model.Filter{Status: model.StatusCompleted, Priority: model.PriorityAll})

	first := resultOf(t, older)
	second := resultOf(t, newer)

	if !c.Apply(second) {
		t.Fatal("newest list should apply")
	}
	if c.Apply(first) {
		t.Error("list fetched with the previous filter was applied")
	}
	if tasks := c.Tasks(); len(tasks) != 1 || tasks[0].Title != "new" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestApplyDropsListFetchedEarlier(t *testing.T) {
	stub := &stubAPI{lists: [][]model.Task{
		{{ID: 1, Title: "earlier"}},
		{{ID: 1, Title: "later"}},
	}}
	c := New(stub, time.Second)

	a, b := c.Refresh(), c.Refresh()
	// b's GET runs first, so a carries the more recent list.
	fetchedFirst := resultOf(t, b)
	fetchedLast := resultOf(t, a)

	if !c.Apply(fetchedLast) {
		t.Fatal("latest fetch should apply")
	}
	if c.Apply(fetchedFirst) {
		t.Error("an earlier fetch overwrote a later one")
	}
	if tasks := c.Tasks(); tasks[0].Title != "later" {
		t.Errorf("tasks = %+v", tasks)
	}
}

// memAPI is a tiny in-memory backend whose UpdateTask can be held back.
type memAPI struct {
	mu    sync.Mutex
	tasks []model.Task
	gate  chan struct{}
}

func (m *memAPI) ListTasks(context.Context, model.Filter) ([]model.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Task, len(m.tasks))
	copy(out, m.tasks)
	return out, nil
}

func (m *memAPI) CreateTask(context.Context, model.TaskDraft) (*model.Task, error) {
	return nil, errors.New("not supported")
}

func (m *memAPI) UpdateTask(_ context.Context, id int, u model.TaskUpdate) (*model.Task, error) {
	if m.gate != nil {
		<-m.gate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			if u.Completed != nil {
				m.tasks[i].Completed = *u.Completed
			}
			t := m.tasks[i]
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *memAPI) DeleteTask(context.Context, int) error { return nil }

func TestToggleRefetchWinsOverRefreshThatFetchedFirst(t *testing.T) {
	backend := &memAPI{
		tasks: []model.Task{{ID: 1, Title: "Report"}},
		gate:  make(chan struct{}),
	}
	c := New(backend, time.Second)

	toggle := c.Toggle(1, true)
	refresh := c.Refresh()

	done := make(chan tea.Msg, 1)
	go func() { done <- toggle() }()

	// The refresh completes while the PUT is still held.
	if !c.Apply(resultOf(t, refresh)) {
		t.Fatal("refresh list should apply")
	}
	if task, _ := c.Find(1); task.Completed {
		t.Fatal("refresh should see the task still open")
	}

	close(backend.gate)
	msg, ok := (<-done).(ResultMsg)
	if !ok || msg.Err != nil {
		t.Fatalf("toggle result = %+v", msg)
	}
	if !c.Apply(msg) {
		t.Fatal("refetch after the toggle was dropped")
	}
	if task, _ := c.Find(1); !task.Completed {
		t.Errorf("cache is stale after a successful toggle: %+v", task)
	}
}

func TestResetDropsInFlightLists(t *testing.T) {
	stub := &stubAPI{lists: [][]model.Task{{{ID: 1, Title: "before logout"}}}}
	c := New(stub, time.Second)

	cmd := c.Refresh()
	c.Reset()

	if c.Apply(resultOf(t, cmd)) {
		t.Error("list requested before Reset was applied")
	}
}

func TestFailedRefreshKeepsPreviousList(t *testing.T) {
	stub := &stubAPI{lists: [][]model.Task{{{ID: 1, Title: "kept"}}}}
	c := New(stub, time.Second)

	c.Apply(resultOf(t, c.Refresh()))

	stub.listErr = &api.NetworkError{Op: "GET /tasks/", Err: errors.New("refused")}
	msg := resultOf(t, c.Refresh())
	if msg.Err == nil {
		t.Fatal("expected refresh error")
	}
	if c.Apply(msg) {
		t.Error("failed refresh changed the cache")
	}
	if tasks := c.Tasks(); len(tasks) != 1 || tasks[0].Title != "kept" {
		t.Errorf("tasks = %+v", tasks)
	}
}

func TestResetClearsState(t *testing.T) {
	stub := &stubAPI{lists: [][]model.Task{{{ID: 1}}}}
	c := New(stub, time.Second)
	c.SetFilter(model.Filter{Status: model.StatusActive, Priority: model.PriorityHigh})
	c.Apply(resultOf(t, c.Refresh()))

	c.Reset()
	if c.Loaded() || len(c.Tasks()) != 0 {
		t.Error("reset left tasks behind")
	}
	if !c.Filter().IsDefault() {
		t.Errorf("filter = %+v", c.Filter())
	}
}
