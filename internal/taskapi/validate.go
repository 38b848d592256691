package taskapi

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	titleMinLength    = 3
	titleMaxLength    = 40
	passwordMinLength = 6
)

// ValidateCreate enforces the client-side constraints on task creation. A
// violation blocks submission entirely; no network call is made.
func ValidateCreate(req CreateTaskRequest) error {
	length := utf8.RuneCountInString(strings.TrimSpace(req.Title))
	if length < titleMinLength {
		return fmt.Errorf("%w: title must be at least %d characters", ErrValidation, titleMinLength)
	}
	if length > titleMaxLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, titleMaxLength)
	}
	switch req.Priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
	default:
		return fmt.Errorf("%w: priority must be HIGH, MEDIUM, or LOW", ErrValidation)
	}
	return nil
}

// ValidateLogin enforces credential constraints before any request is issued.
func ValidateLogin(email, password string) error {
	if err := validateEmail(email); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < passwordMinLength {
		return fmt.Errorf("%w: password must be at least %d characters", ErrValidation, passwordMinLength)
	}
	return nil
}

// ValidateRegister enforces registration constraints. Names are optional,
// matching the registration form.
func ValidateRegister(req RegisterRequest) error {
	return ValidateLogin(req.Email, req.Password)
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 || strings.ContainsAny(email, " \t") {
		return fmt.Errorf("%w: email address is not valid", ErrValidation)
	}
	return nil
}
