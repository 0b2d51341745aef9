package store

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Backend.Get when a key is absent or expired.
	ErrNotFound = errors.New("store: key not found")

	// ErrCapacityExceeded is returned by Backend.Set when a value is larger
	// than the medium accepts.
	ErrCapacityExceeded = errors.New("store: value exceeds medium capacity")
)

// Backend is a key/value medium with per-entry expiry.
type Backend interface {
	// Name identifies the medium in logs.
	Name() string

	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

func expiry(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).UnixMilli()
}

func expired(now time.Time, expiresAt int64) bool {
	return expiresAt > 0 && now.UnixMilli() >= expiresAt
}
