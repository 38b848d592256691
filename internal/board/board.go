package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"taskline/internal/logging"
	"taskline/internal/session"
	"taskline/internal/taskapi"
)

// ErrSessionExpired is returned when the server rejects the session. The
// persisted session has already been cleared when this surfaces; the caller
// should direct the user back to login.
var ErrSessionExpired = errors.New("session expired; run `taskline login`")

// ErrTaskNotFound is returned when a mutation names a task absent from the
// in-memory list.
var ErrTaskNotFound = errors.New("task not found")

// TaskService is the slice of the API client the board depends on.
type TaskService interface {
	ListTasks(ctx context.Context) (taskapi.Page, error)
	CreateTask(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ToggleTask(ctx context.Context, task taskapi.Task) (taskapi.Task, error)
}

// Board mirrors the server's task list in memory and applies optimistic
// mutations against it. The in-memory list is a cache, not a source of truth:
// every successful reload replaces it verbatim with the server's content
// order, and confirmed creations are prepended.
//
// Operations are serialized: overlapping reloads or mutations queue behind
// one another instead of racing (last-response-wins races are designed out).
type Board struct {
	svc      TaskService
	sessions session.Store
	store    *Store
	logger   *slog.Logger

	// flight serializes whole operations; state guards the task list so
	// observers can read it while a server call is in flight.
	flight  sync.Mutex
	state   sync.Mutex
	tasks   []taskapi.Task
	loaded  bool
	loading atomic.Bool
}

// New constructs a board. The journal store may be nil, in which case
// snapshots and pending operations are not persisted.
func New(svc TaskService, sessions session.Store, store *Store, logger *slog.Logger) *Board {
	return &Board{
		svc:      svc,
		sessions: sessions,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "board"),
	}
}

// Tasks returns a copy of the in-memory list.
func (b *Board) Tasks() []taskapi.Task {
	b.state.Lock()
	defer b.state.Unlock()
	out := make([]taskapi.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Loading reports whether a reload is in flight.
func (b *Board) Loading() bool {
	return b.loading.Load()
}

// Load fetches the task list and replaces the in-memory copy with the
// server's content verbatim. A 401/403 clears the session and reports
// ErrSessionExpired; the list is left empty in that case.
func (b *Board) Load(ctx context.Context) error {
	b.flight.Lock()
	defer b.flight.Unlock()

	b.loading.Store(true)
	defer b.loading.Store(false)

	page, err := b.svc.ListTasks(ctx)
	if err != nil {
		return b.mapAuthFailure(err)
	}

	b.state.Lock()
	b.tasks = append([]taskapi.Task(nil), page.Content...)
	b.loaded = true
	b.state.Unlock()

	b.persistSnapshot(ctx)
	b.logger.Debug("task list loaded", logging.Int("count", len(page.Content)))
	return nil
}

// Create validates the request, submits it, and prepends the server-returned
// task (with its real id) on success. The prepend is confirmation-gated:
// unlike toggle, nothing changes locally until the server echoes the created
// resource.
func (b *Board) Create(ctx context.Context, req taskapi.CreateTaskRequest) (taskapi.Task, error) {
	if err := taskapi.ValidateCreate(req); err != nil {
		return taskapi.Task{}, err
	}

	b.flight.Lock()
	defer b.flight.Unlock()

	opID := b.record(ctx, OpCreate, 0, nil, &taskapi.Task{
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	})

	created, err := b.svc.CreateTask(ctx, req)
	if err != nil {
		b.resolve(ctx, opID, StateFailed, err.Error())
		return taskapi.Task{}, b.mapAuthFailure(err)
	}

	b.state.Lock()
	b.tasks = append([]taskapi.Task{created}, b.tasks...)
	b.state.Unlock()

	b.resolve(ctx, opID, StateConfirmed, "")
	b.persistCreated(ctx, created)
	b.logger.Info("task created", logging.Int64(logging.FieldTaskID, created.ID))
	return created, nil
}

// Delete removes a task server-side and, only on success, drops exactly the
// matching item from the in-memory list. Interactive confirmation is the
// caller's responsibility.
func (b *Board) Delete(ctx context.Context, id int64) error {
	b.flight.Lock()
	defer b.flight.Unlock()

	original, ok := b.find(id)
	if !ok {
		return fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}

	opID := b.record(ctx, OpDelete, id, &original, nil)

	if err := b.svc.DeleteTask(ctx, id); err != nil {
		b.resolve(ctx, opID, StateFailed, err.Error())
		return b.mapAuthFailure(err)
	}

	b.state.Lock()
	filtered := b.tasks[:0]
	for _, task := range b.tasks {
		if task.ID != id {
			filtered = append(filtered, task)
		}
	}
	b.tasks = filtered
	b.state.Unlock()

	b.resolve(ctx, opID, StateConfirmed, "")
	b.persistSnapshot(ctx)
	b.logger.Info("task deleted", logging.Int64(logging.FieldTaskID, id))
	return nil
}

// Toggle optimistically flips the task's completed flag in the in-memory
// list before the server call is issued, then confirms against the server.
// On failure the flip is rolled back and the journal entry marked
// rolled_back, so local state never silently diverges.
func (b *Board) Toggle(ctx context.Context, id int64) (taskapi.Task, error) {
	b.flight.Lock()
	defer b.flight.Unlock()

	original, ok := b.find(id)
	if !ok {
		return taskapi.Task{}, fmt.Errorf("%w: id %d", ErrTaskNotFound, id)
	}

	desired := original
	desired.Completed = !original.Completed

	// Optimistic flip happens before any bytes hit the wire.
	b.replace(desired)
	opID := b.record(ctx, OpToggle, id, &original, &desired)

	updated, err := b.svc.ToggleTask(ctx, original)
	if err != nil {
		b.replace(original)
		b.resolve(ctx, opID, StateRolledBack, err.Error())
		b.logger.Warn("toggle rolled back",
			logging.Int64(logging.FieldTaskID, id),
			logging.Error(err),
		)
		return taskapi.Task{}, b.mapAuthFailure(err)
	}

	b.replace(updated)
	b.resolve(ctx, opID, StateConfirmed, "")
	b.persistSnapshot(ctx)
	return updated, nil
}

func (b *Board) find(id int64) (taskapi.Task, bool) {
	b.state.Lock()
	defer b.state.Unlock()
	for _, task := range b.tasks {
		if task.ID == id {
			return task, true
		}
	}
	return taskapi.Task{}, false
}

func (b *Board) replace(task taskapi.Task) {
	b.state.Lock()
	defer b.state.Unlock()
	for i := range b.tasks {
		if b.tasks[i].ID == task.ID {
			b.tasks[i] = task
			return
		}
	}
}

// mapAuthFailure clears the session on the first 401/403 and reports expiry.
// Other failures pass through unchanged.
func (b *Board) mapAuthFailure(err error) error {
	if !errors.Is(err, taskapi.ErrUnauthorized) {
		return err
	}
	if clearErr := b.sessions.Clear(); clearErr != nil {
		b.logger.Warn("failed to clear expired session", logging.Error(clearErr))
	}
	return fmt.Errorf("%w: %v", ErrSessionExpired, err)
}

func (b *Board) isLoaded() bool {
	b.state.Lock()
	defer b.state.Unlock()
	return b.loaded
}

// persistCreated folds a confirmed creation into the stored snapshot. Until
// the server list has been loaded, the in-memory list holds only this
// mutation and must not replace the snapshot wholesale; the new task is
// prepended to the cached rows instead.
func (b *Board) persistCreated(ctx context.Context, created taskapi.Task) {
	if b.store == nil {
		return
	}
	if b.isLoaded() {
		b.persistSnapshot(ctx)
		return
	}
	cached, _, err := b.store.Snapshot(ctx)
	if err != nil {
		b.logger.Warn("failed to read task snapshot", logging.Error(err))
		return
	}
	merged := append([]taskapi.Task{created}, cached...)
	if err := b.store.ReplaceSnapshot(ctx, merged); err != nil {
		b.logger.Warn("failed to persist task snapshot", logging.Error(err))
	}
}

func (b *Board) persistSnapshot(ctx context.Context) {
	if b.store == nil {
		return
	}
	if err := b.store.ReplaceSnapshot(ctx, b.Tasks()); err != nil {
		b.logger.Warn("failed to persist task snapshot", logging.Error(err))
	}
}

func (b *Board) record(ctx context.Context, kind OpKind, taskID int64, original, desired *taskapi.Task) int64 {
	if b.store == nil {
		return 0
	}
	id, err := b.store.RecordOperation(ctx, kind, taskID, original, desired)
	if err != nil {
		b.logger.Warn("failed to journal operation", logging.Error(err))
		return 0
	}
	return id
}

func (b *Board) resolve(ctx context.Context, opID int64, state OpState, detail string) {
	if b.store == nil || opID == 0 {
		return
	}
	if err := b.store.ResolveOperation(ctx, opID, state, detail); err != nil {
		b.logger.Warn("failed to resolve journal entry", logging.Error(err))
	}
}
