package taskapi

import (
	"strings"
)

// Priority is the task priority level understood by the server.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// NormalizePriority maps free-form input onto a server priority. Empty input
// resolves to the server default, MEDIUM.
func NormalizePriority(value string) (Priority, bool) {
	switch Priority(strings.ToUpper(strings.TrimSpace(value))) {
	case PriorityHigh:
		return PriorityHigh, true
	case PriorityMedium, "":
		return PriorityMedium, true
	case PriorityLow:
		return PriorityLow, true
	default:
		return "", false
	}
}

// Task mirrors the task resource owned by the server. ID and UserID are
// server-assigned and immutable; DueDate is an ISO-8601 timestamp without a
// zone, as emitted by the server.
type Task struct {
	ID          int64    `json:"id"`
	UserID      int64    `json:"userId"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	DueDate     string   `json:"dueDate,omitempty"`
	Priority    Priority `json:"priority,omitempty"`
	Completed   bool     `json:"completed"`
}

// CreateTaskRequest is the payload for task creation. The server fills id,
// userId, and completed from the authenticated identity and defaults.
type CreateTaskRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Priority    Priority `json:"priority"`
	DueDate     string   `json:"dueDate,omitempty"`
}

// Page is one page of the server's paginated task listing. Only Content is
// consumed today; the metadata is decoded for completeness.
type Page struct {
	Content       []Task `json:"content"`
	TotalElements int64  `json:"totalElements"`
	TotalPages    int    `json:"totalPages"`
	Size          int    `json:"size"`
	Number        int    `json:"number"`
	First         bool   `json:"first"`
	Last          bool   `json:"last"`
	Empty         bool   `json:"empty"`
}

// AITask is the transcription service's draft extracted from a voice note.
type AITask struct {
	IsTaskDetected bool     `json:"isTaskDetected"`
	Title          string   `json:"title,omitempty"`
	Description    string   `json:"description,omitempty"`
	Priority       Priority `json:"priority,omitempty"`
	DueDate        string   `json:"dueDate,omitempty"`
}

// Draft converts a detected AI task into a creation request, applying the
// MEDIUM default and truncating the due date to minute precision.
func (a AITask) Draft() CreateTaskRequest {
	priority := a.Priority
	if priority == "" {
		priority = PriorityMedium
	}
	return CreateTaskRequest{
		Title:       strings.TrimSpace(a.Title),
		Description: strings.TrimSpace(a.Description),
		Priority:    priority,
		DueDate:     TruncateDueDate(a.DueDate),
	}
}

// TruncateDueDate trims an ISO-8601 timestamp to minute precision
// (2006-01-02T15:04), the granularity task drafts carry.
func TruncateDueDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) > 16 {
		return value[:16]
	}
	return value
}

// LoginRequest is the credential payload for authentication.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the payload for account creation.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// AuthResponse carries the bearer token returned by both auth endpoints.
type AuthResponse struct {
	Token string `json:"token"`
}
