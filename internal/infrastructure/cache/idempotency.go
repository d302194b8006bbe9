package cache

import (
	"context"
	"time"
)

// StoredResponse is a cached HTTP response replayed when a request repeats
// an Idempotency-Key
type StoredResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// IdempotencyStore tracks Idempotency-Keys across requests. Keys are already
// tenant-scoped by the caller.
type IdempotencyStore interface {
	// Reserve atomically claims a key for the given TTL.
	// Returns true if the caller now owns the key and must execute the
	// request, false if the key was already claimed.
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// StoreResponse records the response produced under a claimed key
	StoreResponse(ctx context.Context, key string, response StoredResponse, ttl time.Duration) error
	// GetResponse returns the recorded response for a key.
	// The second return is false while the original request is still in
	// flight or when the key is unknown.
	GetResponse(ctx context.Context, key string) (*StoredResponse, bool, error)
	// Release frees a claimed key whose request failed before producing a
	// response worth replaying
	Release(ctx context.Context, key string) error
	// Close releases store resources
	Close() error
}
