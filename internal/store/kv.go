package store

import (
	"context"
	"errors"
)

// ErrMiss is returned by Get when the key holds no value.
var ErrMiss = errors.New("slot miss")

// KV is the named-slot substrate. Every Set replaces the whole value of one key
// atomically; there are no multi-key transactions.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	// Delete removes keys; keys that do not exist are ignored.
	Delete(ctx context.Context, keys ...string) error
	// ScanKeys lists keys matching a glob pattern ("*" wildcard).
	ScanKeys(ctx context.Context, pattern string) ([]string, error)
}
