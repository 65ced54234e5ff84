// Package metadata is the on-device key-value store holding flags, keys,
// remembered credentials, session tokens and visit counters.
package metadata

import (
	"context"
)

// Repository is a string-keyed byte store. Get returns (nil, nil) for a
// missing key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
	DeleteMany(ctx context.Context, keys []string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
