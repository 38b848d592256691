package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"taskline/internal/taskapi"
)

const testToken = "test-token"

type fakeAPI struct {
	mu     sync.Mutex
	nextID int64
	tasks  []taskapi.Task

	// forceStatus, when nonzero, fails every authenticated call.
	forceStatus int
	// authDelay stalls the auth endpoints before responding.
	authDelay time.Duration
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{nextID: 1}
}

func (f *fakeAPI) server(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/authenticate", f.handleAuth)
	mux.HandleFunc("/auth/register", f.handleAuth)
	mux.HandleFunc("/tasks", f.handleTasks)
	mux.HandleFunc("/tasks/", f.handleTask)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeAPI) handleAuth(w http.ResponseWriter, r *http.Request) {
	if f.authDelay > 0 {
		time.Sleep(f.authDelay)
	}
	var creds map[string]string
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds["password"] == "wrong-password" {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}
	_ = json.NewEncoder(w).Encode(taskapi.AuthResponse{Token: testToken})
}

func (f *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if f.forceStatus != 0 {
		http.Error(w, "forced failure", f.forceStatus)
		return false
	}
	if r.Header.Get("Authorization") != "Bearer "+testToken {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return false
	}
	return true
}

func (f *fakeAPI) handleTasks(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodGet:
		page := taskapi.Page{
			Content:       append([]taskapi.Task(nil), f.tasks...),
			TotalElements: int64(len(f.tasks)),
			TotalPages:    1,
			Size:          len(f.tasks),
			First:         true,
			Last:          true,
			Empty:         len(f.tasks) == 0,
		}
		_ = json.NewEncoder(w).Encode(page)
	case http.MethodPost:
		var req taskapi.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		task := taskapi.Task{
			ID:          f.nextID,
			UserID:      1,
			Title:       req.Title,
			Description: req.Description,
			Priority:    req.Priority,
			DueDate:     req.DueDate,
		}
		f.nextID++
		f.tasks = append([]taskapi.Task{task}, f.tasks...)
		_ = json.NewEncoder(w).Encode(task)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (f *fakeAPI) handleTask(w http.ResponseWriter, r *http.Request) {
	if !f.authorized(w, r) {
		return
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(r.URL.Path, "/tasks/"), 10, 64)
	if err != nil {
		http.Error(w, "bad id", http.StatusBadRequest)
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	idx := -1
	for i, task := range f.tasks {
		if task.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	switch r.Method {
	case http.MethodDelete:
		f.tasks = append(f.tasks[:idx], f.tasks[idx+1:]...)
		w.WriteHeader(http.StatusNoContent)
	case http.MethodPut:
		var task taskapi.Task
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		task.ID = id
		f.tasks[idx] = task
		_ = json.NewEncoder(w).Encode(task)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

type cliTestEnv struct {
	api        *fakeAPI
	apiURL     string
	configPath string
	dataDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	api := newFakeAPI()
	srv := api.server(t)

	dataDir := filepath.Join(base, "data")
	logDir := filepath.Join(base, "logs")
	configPath := filepath.Join(base, "config.toml")
	content := fmt.Sprintf(
		"[api]\nbase_url = %q\n\n[paths]\ndata_dir = %q\nlog_dir = %q\n",
		srv.URL, dataDir, logDir,
	)
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	return &cliTestEnv{api: api, apiURL: srv.URL, configPath: configPath, dataDir: dataDir}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", env.configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func mustLogin(t *testing.T, env *cliTestEnv) {
	t.Helper()
	if _, _, err := runCLI(t, env, "login", "--email", "user@example.com", "--password", "secret123"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
