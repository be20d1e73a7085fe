package services

import (
	"context"
	"time"
)

// Cache is the key/value store behind cached enrichment modules.
// Get reports a miss as "" with no error.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error

	// Flush drops every key starting with prefix and returns how many went
	Flush(ctx context.Context, prefix string) (int, error)

	Ping(ctx context.Context) error
	WaitForConnection(ctx context.Context) error
	Close() error
}
