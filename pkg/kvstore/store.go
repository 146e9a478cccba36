// Package kvstore provides the local key/value store that backs all
// application state. Values are opaque strings, normally JSON documents.
package kvstore

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when the key holds no value.
var ErrKeyNotFound = errors.New("key not found")

// Store is a string key/value store. Writes replace the whole value.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
