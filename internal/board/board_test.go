package board

import (
	"context"
	"errors"
	"testing"

	"taskline/internal/logging"
	"taskline/internal/taskapi"
)

type fakeService struct {
	listFn   func(ctx context.Context) (taskapi.Page, error)
	createFn func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error)
	deleteFn func(ctx context.Context, id int64) error
	toggleFn func(ctx context.Context, task taskapi.Task) (taskapi.Task, error)
}

func (f *fakeService) ListTasks(ctx context.Context) (taskapi.Page, error) {
	if f.listFn == nil {
		return taskapi.Page{}, nil
	}
	return f.listFn(ctx)
}

func (f *fakeService) CreateTask(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
	if f.createFn == nil {
		return taskapi.Task{}, errors.New("unexpected create")
	}
	return f.createFn(ctx, req)
}

func (f *fakeService) DeleteTask(ctx context.Context, id int64) error {
	if f.deleteFn == nil {
		return errors.New("unexpected delete")
	}
	return f.deleteFn(ctx, id)
}

func (f *fakeService) ToggleTask(ctx context.Context, task taskapi.Task) (taskapi.Task, error) {
	if f.toggleFn == nil {
		return taskapi.Task{}, errors.New("unexpected toggle")
	}
	return f.toggleFn(ctx, task)
}

type fakeSessions struct {
	token  string
	clears int
}

func (f *fakeSessions) Token() (string, bool) { return f.token, f.token != "" }

func (f *fakeSessions) Save(token string) error {
	f.token = token
	return nil
}

func (f *fakeSessions) Clear() error {
	f.token = ""
	f.clears++
	return nil
}

func newTestBoard(svc TaskService, sessions *fakeSessions) *Board {
	return New(svc, sessions, nil, logging.NewNop())
}

func seedTasks() []taskapi.Task {
	return []taskapi.Task{
		{ID: 3, Title: "newest", Priority: taskapi.PriorityHigh},
		{ID: 2, Title: "middle", Priority: taskapi.PriorityMedium, Completed: true},
		{ID: 1, Title: "oldest", Priority: taskapi.PriorityLow},
	}
}

func loadSeeded(t *testing.T, b *Board, tasks []taskapi.Task, svc *fakeService) {
	t.Helper()
	svc.listFn = func(ctx context.Context) (taskapi.Page, error) {
		return taskapi.Page{Content: tasks}, nil
	}
	if err := b.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadReplacesListVerbatim(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})

	loadSeeded(t, b, seedTasks(), svc)

	got := b.Tasks()
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(got))
	}
	for i, want := range []int64{3, 2, 1} {
		if got[i].ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, got[i].ID)
		}
	}

	// A second load replaces rather than appends.
	loadSeeded(t, b, seedTasks()[:1], svc)
	if got := b.Tasks(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("expected reload to replace list, got %+v", got)
	}
}

func TestLoadSessionExpiry(t *testing.T) {
	sessions := &fakeSessions{token: "tok"}
	svc := &fakeService{
		listFn: func(ctx context.Context) (taskapi.Page, error) {
			return taskapi.Page{}, &taskapi.StatusError{Code: 401, Body: "expired"}
		},
	}
	b := newTestBoard(svc, sessions)

	err := b.Load(context.Background())
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if sessions.clears != 1 {
		t.Fatalf("expected session cleared once, cleared %d times", sessions.clears)
	}
}

func TestCreatePrependsOnConfirmation(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	svc.createFn = func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
		return taskapi.Task{ID: 9, UserID: 1, Title: req.Title, Priority: req.Priority}, nil
	}

	created, err := b.Create(context.Background(), taskapi.CreateTaskRequest{
		Title:    "write report",
		Priority: taskapi.PriorityHigh,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID != 9 {
		t.Fatalf("expected server id 9, got %d", created.ID)
	}

	got := b.Tasks()
	if len(got) != 4 || got[0].ID != 9 {
		t.Fatalf("expected created task prepended, got %+v", got)
	}
}

func TestCreateWithoutLoadMergesIntoSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.ReplaceSnapshot(ctx, seedTasks()); err != nil {
		t.Fatalf("ReplaceSnapshot: %v", err)
	}

	svc := &fakeService{
		createFn: func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
			return taskapi.Task{ID: 9, UserID: 1, Title: req.Title, Priority: req.Priority}, nil
		},
	}
	b := New(svc, &fakeSessions{token: "tok"}, store, logging.NewNop())

	// No Load: the in-memory list is empty, the snapshot is not.
	if _, err := b.Create(ctx, taskapi.CreateTaskRequest{
		Title:    "write report",
		Priority: taskapi.PriorityHigh,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cached, _, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(cached) != 4 {
		t.Fatalf("expected cached tasks retained alongside the creation, got %d rows", len(cached))
	}
	if cached[0].ID != 9 {
		t.Fatalf("expected created task first, got id %d", cached[0].ID)
	}
	for i, want := range []int64{3, 2, 1} {
		if cached[i+1].ID != want {
			t.Fatalf("position %d: expected cached id %d, got %d", i+1, want, cached[i+1].ID)
		}
	}
}

func TestCreateAfterLoadReplacesSnapshot(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	svc := &fakeService{}
	b := New(svc, &fakeSessions{token: "tok"}, store, logging.NewNop())
	loadSeeded(t, b, seedTasks(), svc)

	svc.createFn = func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
		return taskapi.Task{ID: 9, UserID: 1, Title: req.Title, Priority: req.Priority}, nil
	}
	if _, err := b.Create(ctx, taskapi.CreateTaskRequest{
		Title:    "write report",
		Priority: taskapi.PriorityMedium,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	cached, _, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(cached) != 4 || cached[0].ID != 9 {
		t.Fatalf("expected loaded list persisted with creation first, got %+v", cached)
	}
}

func TestCreateRejectsInvalidWithoutCallingServer(t *testing.T) {
	called := false
	svc := &fakeService{
		createFn: func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
			called = true
			return taskapi.Task{}, nil
		},
	}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})

	_, err := b.Create(context.Background(), taskapi.CreateTaskRequest{Title: "ab"})
	if !errors.Is(err, taskapi.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if called {
		t.Fatal("server must not be called for an invalid request")
	}
}

func TestCreateFailureLeavesListUnchanged(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	svc.createFn = func(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
		return taskapi.Task{}, &taskapi.StatusError{Code: 500, Body: "boom"}
	}

	_, err := b.Create(context.Background(), taskapi.CreateTaskRequest{
		Title:    "write report",
		Priority: taskapi.PriorityMedium,
	})
	if !errors.Is(err, taskapi.ErrRequestFailed) {
		t.Fatalf("expected request failure, got %v", err)
	}
	if got := b.Tasks(); len(got) != 3 {
		t.Fatalf("expected list unchanged after failed create, got %d tasks", len(got))
	}
}

func TestDeleteRemovesExactlyMatchingTask(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	var deleted int64
	svc.deleteFn = func(ctx context.Context, id int64) error {
		deleted = id
		return nil
	}

	if err := b.Delete(context.Background(), 2); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected server delete of id 2, got %d", deleted)
	}

	got := b.Tasks()
	if len(got) != 2 {
		t.Fatalf("expected 2 tasks after delete, got %d", len(got))
	}
	for _, task := range got {
		if task.ID == 2 {
			t.Fatal("deleted task still present")
		}
	}
}

func TestDeleteFailureLeavesListUnchanged(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	svc.deleteFn = func(ctx context.Context, id int64) error {
		return &taskapi.StatusError{Code: 500, Body: "boom"}
	}

	if err := b.Delete(context.Background(), 2); err == nil {
		t.Fatal("expected delete failure")
	}
	if got := b.Tasks(); len(got) != 3 {
		t.Fatalf("expected list unchanged after failed delete, got %d tasks", len(got))
	}
}

func TestDeleteUnknownTask(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	err := b.Delete(context.Background(), 42)
	if !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestToggleFlipsBeforeServerResponds(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	var observed *bool
	svc.toggleFn = func(ctx context.Context, task taskapi.Task) (taskapi.Task, error) {
		// The local list must already show the flip while the request
		// is still in flight.
		for _, item := range b.Tasks() {
			if item.ID == 1 {
				v := item.Completed
				observed = &v
			}
		}
		updated := task
		updated.Completed = !task.Completed
		return updated, nil
	}

	updated, err := b.Toggle(context.Background(), 1)
	if err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if observed == nil || !*observed {
		t.Fatal("expected the flip to be visible before the server responded")
	}
	if !updated.Completed {
		t.Fatal("expected toggled task to be completed")
	}
	for _, task := range b.Tasks() {
		if task.ID == 1 && !task.Completed {
			t.Fatal("expected confirmed flip to persist")
		}
	}
}

func TestToggleRollsBackOnFailure(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	svc.toggleFn = func(ctx context.Context, task taskapi.Task) (taskapi.Task, error) {
		return taskapi.Task{}, &taskapi.StatusError{Code: 500, Body: "boom"}
	}

	_, err := b.Toggle(context.Background(), 1)
	if !errors.Is(err, taskapi.ErrRequestFailed) {
		t.Fatalf("expected request failure, got %v", err)
	}
	for _, task := range b.Tasks() {
		if task.ID == 1 && task.Completed {
			t.Fatal("expected failed toggle to be rolled back")
		}
	}
}

func TestToggleSendsFullResource(t *testing.T) {
	svc := &fakeService{}
	b := newTestBoard(svc, &fakeSessions{token: "tok"})
	loadSeeded(t, b, seedTasks(), svc)

	var sent taskapi.Task
	svc.toggleFn = func(ctx context.Context, task taskapi.Task) (taskapi.Task, error) {
		sent = task
		updated := task
		updated.Completed = !task.Completed
		return updated, nil
	}

	if _, err := b.Toggle(context.Background(), 3); err != nil {
		t.Fatalf("Toggle: %v", err)
	}
	if sent.Title != "newest" || sent.Priority != taskapi.PriorityHigh {
		t.Fatalf("expected the original task fields forwarded, got %+v", sent)
	}
}

func TestMutationAuthFailureClearsSession(t *testing.T) {
	sessions := &fakeSessions{token: "tok"}
	svc := &fakeService{}
	b := newTestBoard(svc, sessions)
	loadSeeded(t, b, seedTasks(), svc)

	svc.toggleFn = func(ctx context.Context, task taskapi.Task) (taskapi.Task, error) {
		return taskapi.Task{}, &taskapi.StatusError{Code: 403, Body: "forbidden"}
	}

	_, err := b.Toggle(context.Background(), 1)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if sessions.clears != 1 {
		t.Fatalf("expected session cleared once, cleared %d times", sessions.clears)
	}
	for _, task := range b.Tasks() {
		if task.ID == 1 && task.Completed {
			t.Fatal("expected optimistic flip rolled back on auth failure")
		}
	}
}
