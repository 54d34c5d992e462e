// Package metadata is the durable key/value store of the client. It backs
// the bearer credential and the must-change-password flag so they survive
// restarts.
package metadata

import (
	"context"
)

// Repository stores opaque values under fixed keys.
//
// Get returns (nil, nil) for a key that was never set.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete is a no-op for a missing key.
	Delete(ctx context.Context, key string) error
}
