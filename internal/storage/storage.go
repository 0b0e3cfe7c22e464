// Package storage provides the durable key-value store backing the session
// manager. The session manager is the only component that touches it.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no stored value.
var ErrNotFound = errors.New("key not found")

// Store is a minimal durable key-value capability. Values survive process
// restarts in the sqlite implementation; the memory implementation exists
// for tests.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
