package taskapi

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"taskline/internal/session"
)

// Authorizer is an http.RoundTripper that attaches the persisted session as a
// bearer credential. Requests are treated as immutable: when a token is
// present the authorizer clones the request and sets exactly one
// Authorization header on the copy; the caller's request is never touched.
// Requests to the authentication endpoints pass through untouched, as do all
// requests when no session exists.
//
// Every request, authorized or not, is stamped with an X-Request-ID for
// correlation unless the caller already set one.
type Authorizer struct {
	Base     http.RoundTripper
	Sessions session.Store
}

// NewAuthorizer wraps base (http.DefaultTransport when nil) with session
// authorization backed by store.
func NewAuthorizer(base http.RoundTripper, store session.Store) *Authorizer {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Authorizer{Base: base, Sessions: store}
}

func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if clone.Header.Get(headerRequestID) == "" {
		clone.Header.Set(headerRequestID, uuid.NewString())
	}

	if a.Sessions != nil && !isAuthPath(clone.URL.Path) {
		if token, ok := a.Sessions.Token(); ok {
			clone.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return a.base().RoundTrip(clone)
}

func (a *Authorizer) base() http.RoundTripper {
	if a.Base == nil {
		return http.DefaultTransport
	}
	return a.Base
}

const headerRequestID = "X-Request-ID"

func isAuthPath(path string) bool {
	return strings.Contains(path, "/auth/")
}
