// Package taskapi is the HTTP client for the remote task service.
//
// It covers the three remote surfaces the CLI depends on: the authentication
// endpoints (login and register, both of which persist the returned bearer
// token), the task CRUD endpoints, and the voice-note transcription endpoint.
// The Authorizer transport attaches the persisted session to every
// authenticated request by cloning it, never mutating the caller's request.
//
// Failures fall into a small taxonomy: ErrValidation (blocked before any
// network call), ErrUnauthorized (401/403, treated uniformly as session
// expiry), and ErrRequestFailed (everything else). Nothing is retried.
package taskapi
