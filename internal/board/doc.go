// Package board maintains the local mirror of the remote task list and the
// durable journal of operations applied to it. Mutations follow two
// disciplines: creations and deletions are confirmation-gated, while
// completion toggles are optimistic with rollback on failure.
package board
