// Package session owns the single persisted bearer-token session.
//
// Exactly one session exists at a time: it is written on successful login or
// registration, read by the request authorizer on every outgoing API call, and
// removed on logout or on the first 401/403 the server returns. Expiry is
// discovered reactively; no client-side token inspection happens here.
package session
