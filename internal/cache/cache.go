// Package cache provides a pluggable, context-aware cache used ahead of
// failure-memory lookups (the orchestrator's extraction-result cache).
// The failure memory itself does not persist through it. Adapted from the
// teacher's cache package, whose
// own Cache interface didn't match the signature its backends actually
// implemented; this version is internally consistent.
package cache

import (
	"context"
	"time"
)

// Cache is the interface every backend implements.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	Close() error
}
