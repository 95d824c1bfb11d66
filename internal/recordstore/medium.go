// Package recordstore persists named collections as whole JSON documents on a
// key-value medium. Every mutation reads the whole document, changes it in
// memory and writes the whole document back. Each write carries the version
// that was read, so a writer that lost a race is told instead of silently
// overwriting the other writer's data.
package recordstore

import (
	"context"
	"errors"
)

// Version is the per-key write counter. Zero means the key does not exist.
type Version int64

// Entry is a stored value and its version.
type Entry struct {
	Data    []byte
	Version Version
}

var (
	// ErrKeyNotFound is returned by Medium.Load for absent keys.
	ErrKeyNotFound = errors.New("recordstore: key not found")
	// ErrVersionConflict is returned by Medium.Store when the stored version
	// differs from the expected one.
	ErrVersionConflict = errors.New("recordstore: version conflict")
	// ErrMediumFull is returned when the medium has no capacity left.
	ErrMediumFull = errors.New("recordstore: medium full")
)

// Medium is the underlying storage shared by every collection.
type Medium interface {
	// Load returns the entry for key or ErrKeyNotFound.
	Load(ctx context.Context, key string) (Entry, error)
	// Store writes data if the current version equals expected and returns the
	// new version. expected == 0 requires the key to be absent.
	Store(ctx context.Context, key string, data []byte, expected Version) (Version, error)
	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
	// Usage is the total size of all keys and values held by the medium.
	Usage(ctx context.Context) (int64, error)
	Close() error
}
