package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when no blob is stored under a namespace.
var ErrNotFound = errors.New("store: not found")

// Store defines the persistence interface for namespaced blobs. Every
// operation is single-shot; backends report failures instead of retrying.
type Store interface {
	// Put writes blob at the namespace's key, replacing anything stored there.
	Put(ctx context.Context, ns Namespace, blob []byte) error
	// Get returns the blob at the namespace's key, or ErrNotFound.
	Get(ctx context.Context, ns Namespace) ([]byte, error)
	// Exists reports whether a blob is stored at the namespace's key.
	Exists(ctx context.Context, ns Namespace) (bool, error)
	// Delete removes the blob. Deleting a missing key is not an error.
	Delete(ctx context.Context, ns Namespace) error

	// List returns every stored key that starts with prefix, in key order.
	List(ctx context.Context, prefix string) ([]string, error)

	// Lifecycle
	Close() error
}
