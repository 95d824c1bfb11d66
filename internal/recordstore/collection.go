package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
)

// Collection is a named JSON array of T stored as one document.
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection binds a collection name to a store.
func NewCollection[T any](store *Store, name string) *Collection[T] {
	return &Collection[T]{store: store, name: name}
}

// Name returns the collection name without the key prefix.
func (c *Collection[T]) Name() string {
	return c.name
}

// ReadAll returns every record. An absent collection is empty; malformed
// content yields a ParseError.
func (c *Collection[T]) ReadAll(ctx context.Context) ([]T, Version, error) {
	data, version, err := c.store.ReadRaw(ctx, c.name)
	if err != nil {
		return nil, 0, err
	}
	records, err := decode[[]T](c.name, data)
	if err != nil {
		return nil, version, err
	}
	if records == nil {
		records = []T{}
	}
	return records, version, nil
}

// Load is ReadAll with corrupt content treated as an empty collection.
func (c *Collection[T]) Load(ctx context.Context) ([]T, Version, error) {
	records, version, err := c.ReadAll(ctx)
	if errors.Is(err, models.ErrParseError) {
		observability.Logger.WarnContext(ctx, "treating corrupt collection as empty",
			slog.String("collection", c.name),
			slog.String("error", err.Error()),
		)
		return []T{}, version, nil
	}
	return records, version, err
}

// WriteAll overwrites the collection. expected must be the version returned
// by the read the records were derived from.
func (c *Collection[T]) WriteAll(ctx context.Context, records []T, expected Version) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode %q: %w", c.name, err))
	}
	_, err = c.store.WriteRaw(ctx, c.name, data, expected)
	return err
}

// Mutate loads the collection, applies fn and writes the result back under the
// collection lock. If fn returns an error nothing is written. A concurrent
// writer from another process surfaces as a VersionConflict; nothing retries.
func (c *Collection[T]) Mutate(ctx context.Context, fn func([]T) ([]T, error)) error {
	unlock := c.store.lock(c.name)
	defer unlock()

	records, version, err := c.Load(ctx)
	if err != nil {
		return err
	}
	records, err = fn(records)
	if err != nil {
		return err
	}
	return c.WriteAll(ctx, records, version)
}

// Document is a single JSON value of T stored under one name.
type Document[T any] struct {
	store *Store
	name  string
}

// NewDocument binds a document name to a store.
func NewDocument[T any](store *Store, name string) *Document[T] {
	return &Document[T]{store: store, name: name}
}

// Name returns the document name without the key prefix.
func (d *Document[T]) Name() string {
	return d.name
}

// Get returns the value and whether it exists. Malformed content yields a
// ParseError.
func (d *Document[T]) Get(ctx context.Context) (T, bool, error) {
	var zero T
	data, _, err := d.store.ReadRaw(ctx, d.name)
	if err != nil || data == nil {
		return zero, false, err
	}
	v, err := decode[T](d.name, data)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

// Put overwrites the value regardless of what is stored.
func (d *Document[T]) Put(ctx context.Context, v T) error {
	unlock := d.store.lock(d.name)
	defer unlock()

	_, version, err := d.store.ReadRaw(ctx, d.name)
	if err != nil {
		return err
	}
	return d.write(ctx, v, version)
}

// Delete removes the value. Deleting an absent document is a no-op.
func (d *Document[T]) Delete(ctx context.Context) error {
	unlock := d.store.lock(d.name)
	defer unlock()
	return d.store.Remove(ctx, d.name)
}

// Mutate applies fn to the current value (the zero value if absent or
// corrupt) and writes the result at the version that was read.
func (d *Document[T]) Mutate(ctx context.Context, fn func(T) (T, error)) error {
	unlock := d.store.lock(d.name)
	defer unlock()

	data, version, err := d.store.ReadRaw(ctx, d.name)
	if err != nil {
		return err
	}
	current, err := decode[T](d.name, data)
	if err != nil {
		observability.Logger.WarnContext(ctx, "treating corrupt document as empty",
			slog.String("document", d.name),
			slog.String("error", err.Error()),
		)
		var zero T
		current = zero
	}
	next, err := fn(current)
	if err != nil {
		return err
	}
	return d.write(ctx, next, version)
}

func (d *Document[T]) write(ctx context.Context, v T, expected Version) error {
	data, err := json.Marshal(v)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("encode %q: %w", d.name, err))
	}
	_, err = d.store.WriteRaw(ctx, d.name, data, expected)
	return err
}

// decode parses stored JSON. Empty data decodes to the zero value.
func decode[T any](name string, data []byte) (T, error) {
	var v T
	if len(bytes.TrimSpace(data)) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(data, &v); err != nil {
		observability.StoreParseErrors.WithLabelValues(name).Inc()
		var zero T
		return zero, models.NewParseError(name, err)
	}
	return v, nil
}
