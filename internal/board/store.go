package board

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"taskline/internal/taskapi"
)

// Store persists the last-known task snapshot and the optimistic-mutation
// journal in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// OpenStore initializes or connects to the board database at path.
func OpenStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure board directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// ReplaceSnapshot stores the server's task list verbatim, dropping the
// previous snapshot.
func (s *Store) ReplaceSnapshot(ctx context.Context, tasks []taskapi.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin snapshot tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_snapshot"); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for position, task := range tasks {
		payload, err := json.Marshal(task)
		if err != nil {
			return fmt.Errorf("marshal task %d: %w", task.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_snapshot (position, task_id, payload_json, refreshed_at) VALUES (?, ?, ?, ?)",
			position, task.ID, string(payload), now,
		); err != nil {
			return fmt.Errorf("insert snapshot row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit snapshot: %w", err)
	}
	return nil
}

// Snapshot returns the cached task list in stored order, with the refresh
// time of the snapshot (zero when no snapshot exists).
func (s *Store) Snapshot(ctx context.Context) ([]taskapi.Task, time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload_json, refreshed_at FROM task_snapshot ORDER BY position")
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("query snapshot: %w", err)
	}
	defer rows.Close()

	var tasks []taskapi.Task
	var refreshedAt time.Time
	for rows.Next() {
		var payload, stamp string
		if err := rows.Scan(&payload, &stamp); err != nil {
			return nil, time.Time{}, fmt.Errorf("scan snapshot row: %w", err)
		}
		var task taskapi.Task
		if err := json.Unmarshal([]byte(payload), &task); err != nil {
			return nil, time.Time{}, fmt.Errorf("decode snapshot row: %w", err)
		}
		tasks = append(tasks, task)
		if refreshedAt.IsZero() {
			if parsed, err := time.Parse(time.RFC3339Nano, stamp); err == nil {
				refreshedAt = parsed
			}
		}
	}
	return tasks, refreshedAt, rows.Err()
}

// RecordOperation journals a new pending mutation and returns its id.
func (s *Store) RecordOperation(ctx context.Context, kind OpKind, taskID int64, original, desired *taskapi.Task) (int64, error) {
	originalJSON, err := marshalTask(original)
	if err != nil {
		return 0, err
	}
	desiredJSON, err := marshalTask(desired)
	if err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO pending_operations (kind, task_id, original_json, desired_json, state, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		string(kind), taskID, originalJSON, desiredJSON, string(StatePending),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// ResolveOperation transitions a journal entry out of pending.
func (s *Store) ResolveOperation(ctx context.Context, id int64, state OpState, detail string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE pending_operations SET state = ?, detail = ?, resolved_at = ? WHERE id = ?",
		string(state), nullableString(detail), time.Now().UTC().Format(time.RFC3339Nano), id,
	)
	if err != nil {
		return fmt.Errorf("resolve operation: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("operation %d not found", id)
	}
	return nil
}

// Operations returns journal entries, newest first, filtered by state when
// any states are provided.
func (s *Store) Operations(ctx context.Context, states ...OpState) ([]Operation, error) {
	query := `SELECT id, kind, task_id, original_json, desired_json, state, detail, created_at, resolved_at
              FROM pending_operations`
	var args []any
	if len(states) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(states)), ",")
		query += " WHERE state IN (" + placeholders + ")"
		for _, state := range states {
			args = append(args, string(state))
		}
	}
	query += " ORDER BY id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// PruneResolved removes non-pending journal entries older than the cutoff.
func (s *Store) PruneResolved(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM pending_operations WHERE state != ? AND created_at < ?",
		string(StatePending), cutoff.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("prune operations: %w", err)
	}
	return res.RowsAffected()
}

func scanOperation(rows *sql.Rows) (Operation, error) {
	var (
		op           Operation
		kind, state  string
		originalJSON sql.NullString
		desiredJSON  sql.NullString
		detail       sql.NullString
		createdAt    string
		resolvedAt   sql.NullString
	)
	if err := rows.Scan(&op.ID, &kind, &op.TaskID, &originalJSON, &desiredJSON, &state, &detail, &createdAt, &resolvedAt); err != nil {
		return Operation{}, fmt.Errorf("scan operation: %w", err)
	}
	op.Kind = OpKind(kind)
	op.State = OpState(state)
	op.Detail = detail.String

	var err error
	if op.Original, err = unmarshalTask(originalJSON); err != nil {
		return Operation{}, err
	}
	if op.Desired, err = unmarshalTask(desiredJSON); err != nil {
		return Operation{}, err
	}

	if parsed, parseErr := time.Parse(time.RFC3339Nano, createdAt); parseErr == nil {
		op.CreatedAt = parsed
	}
	if resolvedAt.Valid {
		if parsed, parseErr := time.Parse(time.RFC3339Nano, resolvedAt.String); parseErr == nil {
			op.ResolvedAt = parsed
		}
	}
	return op, nil
}

func marshalTask(task *taskapi.Task) (any, error) {
	if task == nil {
		return nil, nil
	}
	data, err := json.Marshal(task)
	if err != nil {
		return nil, fmt.Errorf("marshal task: %w", err)
	}
	return string(data), nil
}

func unmarshalTask(value sql.NullString) (*taskapi.Task, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	var task taskapi.Task
	if err := json.Unmarshal([]byte(value.String), &task); err != nil {
		return nil, fmt.Errorf("decode task payload: %w", err)
	}
	return &task, nil
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
