// Package kv abstracts the hosted key-value store behind a small interface
// covering the primitives the audit and reminder stores need: string values,
// append-only lists, and conditional writes.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("kv: key not found")

// Store is the key-value adapter contract. All operations are independently
// atomic single-key operations; there are no multi-key transactions.
type Store interface {
	// Get returns the value at key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value at key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX stores value at key only if the key does not exist. Returns
	// true when the write happened. This is the conditional-write primitive
	// the reminder processor uses as a dispatch claim.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete removes keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error

	// Exists reports whether key is present.
	Exists(ctx context.Context, key string) (bool, error)

	// ListAppend appends values to the list at key, creating it if absent.
	ListAppend(ctx context.Context, key string, values ...string) error

	// ListRange returns list elements in [start, stop]; negative indexes
	// count from the end, so (0, -1) returns the whole list.
	ListRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ListLen returns the length of the list at key (0 if absent).
	ListLen(ctx context.Context, key string) (int64, error)

	// ListRemove removes occurrences of value from the list at key.
	ListRemove(ctx context.Context, key, value string) error
}
