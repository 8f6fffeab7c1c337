// Package metadata is the key/value store backing the driver's local state.
// Values are opaque byte slices; callers encode their own payloads.
package metadata

import (
	"context"
)

// Repository stores small values under string keys.
//
// Get returns (nil, nil) when the key is absent.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}
