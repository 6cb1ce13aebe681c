// Package store holds the key-value persistence behind the settings manager
// and the provider that lazily opens it.
package store

import (
	"context"
	"errors"
	"fmt"
)

var ErrClosed = errors.New("store is closed")

// DecodeError reports a stored value that does not fit the requested type.
// The store itself is still usable.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Store is a persistent key-value store with an in-memory cache. Values are
// staged with Set and only reach disk on Save.
type Store interface {
	// Load replaces the cache with the contents of the backing file.
	Load(ctx context.Context) error
	// Get decodes the value stored under key into dst. It reports false when
	// the key is absent or holds null; falsy values are present.
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any) error
	// Save flushes the cache to the backing file.
	Save(ctx context.Context) error
	Path() string
	Close() error
}
