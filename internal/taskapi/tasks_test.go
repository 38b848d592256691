package taskapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"taskline/internal/taskapi"
)

func TestListTasksSendsBearerAndDecodesPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" || r.Method != http.MethodGet {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer T1" {
			t.Fatalf("expected bearer header, got %q", got)
		}
		json.NewEncoder(w).Encode(taskapi.Page{
			Content: []taskapi.Task{
				{ID: 1, UserID: 7, Title: "First", Completed: false},
				{ID: 2, UserID: 7, Title: "Second", Completed: true},
			},
			TotalElements: 2,
			TotalPages:    1,
			Size:          20,
			First:         true,
			Last:          true,
		})
	}))
	defer server.Close()

	client, store := newClient(t, server.URL)
	if err := store.Save("T1"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	page, err := client.ListTasks(context.Background())
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(page.Content) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(page.Content))
	}
	if page.Content[0].Title != "First" || page.Content[1].Completed != true {
		t.Fatalf("unexpected content: %+v", page.Content)
	}
	if page.TotalElements != 2 || !page.Last {
		t.Fatalf("pagination metadata not decoded: %+v", page)
	}
}

func TestListTasksMapsAuthFailures(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client, store := newClient(t, server.URL)
		if err := store.Save("expired"); err != nil {
			t.Fatalf("save token: %v", err)
		}

		_, err := client.ListTasks(context.Background())
		if !errors.Is(err, taskapi.ErrUnauthorized) {
			t.Fatalf("status %d: expected ErrUnauthorized, got %v", code, err)
		}
		server.Close()
	}
}

func TestListTasksMapsOtherFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, store := newClient(t, server.URL)
	if err := store.Save("T1"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	_, err := client.ListTasks(context.Background())
	if !errors.Is(err, taskapi.ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
	if errors.Is(err, taskapi.ErrUnauthorized) {
		t.Fatalf("500 must not classify as unauthorized: %v", err)
	}
}

func TestCreateTaskEchoesServerResource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var req taskapi.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode create: %v", err)
		}
		if req.Title != "Buy milk" || req.Priority != taskapi.PriorityLow {
			t.Fatalf("unexpected payload: %+v", req)
		}
		json.NewEncoder(w).Encode(taskapi.Task{
			ID: 42, UserID: 7, Title: req.Title, Priority: req.Priority, Completed: false,
		})
	}))
	defer server.Close()

	client, store := newClient(t, server.URL)
	if err := store.Save("T1"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	created, err := client.CreateTask(context.Background(), taskapi.CreateTaskRequest{
		Title:    "Buy milk",
		Priority: taskapi.PriorityLow,
	})
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if created.ID != 42 || created.UserID != 7 || created.Completed {
		t.Fatalf("unexpected created task: %+v", created)
	}
}

func TestCreateTaskValidationNeverIssuesRequest(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client, _ := newClient(t, server.URL)

	cases := []taskapi.CreateTaskRequest{
		{Title: "ab", Priority: taskapi.PriorityMedium},
		{Title: "this title is way too long to be accepted here", Priority: taskapi.PriorityMedium},
		{Title: "valid title", Priority: "URGENT"},
	}
	for _, req := range cases {
		if _, err := client.CreateTask(context.Background(), req); !errors.Is(err, taskapi.ErrValidation) {
			t.Fatalf("request %+v: expected validation error, got %v", req, err)
		}
	}
	if called {
		t.Fatal("validation failures must not reach the network")
	}
}

func TestDeleteTask(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/42" || r.Method != http.MethodDelete {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client, store := newClient(t, server.URL)
	if err := store.Save("T1"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	if err := client.DeleteTask(context.Background(), 42); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
}

func TestToggleTaskSendsFullReplacement(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tasks/5" || r.Method != http.MethodPut {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var sent taskapi.Task
		if err := json.NewDecoder(r.Body).Decode(&sent); err != nil {
			t.Fatalf("decode put: %v", err)
		}
		if !sent.Completed {
			t.Fatal("expected completed flag flipped to true")
		}
		if sent.Title != "Water plants" || sent.Description != "front garden" || sent.Priority != taskapi.PriorityHigh {
			t.Fatalf("full representation expected, got %+v", sent)
		}
		json.NewEncoder(w).Encode(sent)
	}))
	defer server.Close()

	client, store := newClient(t, server.URL)
	if err := store.Save("T1"); err != nil {
		t.Fatalf("save token: %v", err)
	}

	updated, err := client.ToggleTask(context.Background(), taskapi.Task{
		ID:          5,
		UserID:      7,
		Title:       "Water plants",
		Description: "front garden",
		Priority:    taskapi.PriorityHigh,
		Completed:   false,
	})
	if err != nil {
		t.Fatalf("ToggleTask: %v", err)
	}
	if !updated.Completed {
		t.Fatal("expected server echo with completed true")
	}
}
