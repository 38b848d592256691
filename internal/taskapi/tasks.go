package taskapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ListTasks fetches the caller's tasks. The server's content order is used
// as-is; no client-side filtering or sorting.
func (c *Client) ListTasks(ctx context.Context) (Page, error) {
	var page Page
	if err := c.doJSON(ctx, http.MethodGet, "/tasks", nil, &page); err != nil {
		return Page{}, err
	}
	return page, nil
}

// CreateTask posts a new task. The server assigns id and userId and echoes the
// full created resource.
func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest) (Task, error) {
	if err := ValidateCreate(req); err != nil {
		return Task{}, err
	}
	var created Task
	if err := c.doJSON(ctx, http.MethodPost, "/tasks", req, &created); err != nil {
		return Task{}, err
	}
	return created, nil
}

// DeleteTask removes a task by id.
func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, "/tasks/"+strconv.FormatInt(id, 10), nil, nil)
}

// ToggleTask flips the task's completed flag and PUT-replaces the entire
// resource, as the server's update endpoint requires a full representation.
// Any field changed concurrently server-side is overwritten by this stale
// copy (last-writer-wins).
func (c *Client) ToggleTask(ctx context.Context, task Task) (Task, error) {
	if task.ID == 0 {
		return Task{}, fmt.Errorf("%w: task id required for toggle", ErrValidation)
	}
	task.Completed = !task.Completed

	var updated Task
	path := "/tasks/" + strconv.FormatInt(task.ID, 10)
	if err := c.doJSON(ctx, http.MethodPut, path, task, &updated); err != nil {
		return Task{}, err
	}
	return updated, nil
}
