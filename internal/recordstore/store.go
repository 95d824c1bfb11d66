package recordstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
)

// DefaultPrefix is prepended to every collection name to form the medium key.
const DefaultPrefix = "socialvibe_"

// Option configures a Store.
type Option func(*Store)

// WithPrefix overrides the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithQuota caps the total bytes the store may occupy on the medium.
// Zero disables the check.
func WithQuota(bytes int64) Option {
	return func(s *Store) { s.quota = bytes }
}

// Store is the only component that talks to the medium.
type Store struct {
	medium Medium
	prefix string
	quota  int64

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewStore creates a store over medium.
func NewStore(medium Medium, opts ...Option) *Store {
	s := &Store{
		medium: medium,
		prefix: DefaultPrefix,
		locks:  make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Medium returns the underlying medium.
func (s *Store) Medium() Medium {
	return s.medium
}

// Key returns the medium key for a collection name.
func (s *Store) Key(name string) string {
	return s.prefix + name
}

// lock serializes read-modify-write sequences on one name inside this process.
func (s *Store) lock(name string) func() {
	s.mu.Lock()
	l, ok := s.locks[name]
	if !ok {
		l = &sync.Mutex{}
		s.locks[name] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// ReadRaw returns the stored bytes for name and their version. An absent name
// yields nil data and version 0.
func (s *Store) ReadRaw(ctx context.Context, name string) (data []byte, version Version, err error) {
	ctx, span := observability.StartStoreSpan(ctx, "read", name)
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackStore("read", name)()
	defer func() { observability.CountStore("read", name, err) }()

	entry, err := s.medium.Load(ctx, s.Key(name))
	if errors.Is(err, ErrKeyNotFound) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, models.NewInternalError(fmt.Errorf("read %q: %w", name, err))
	}
	return entry.Data, entry.Version, nil
}

// WriteRaw replaces the stored bytes for name if the stored version still
// equals expected, and returns the new version.
func (s *Store) WriteRaw(ctx context.Context, name string, data []byte, expected Version) (version Version, err error) {
	ctx, span := observability.StartStoreSpan(ctx, "write", name)
	defer func() { observability.EndSpan(span, err) }()
	defer observability.TrackStore("write", name)()
	defer func() { observability.CountStore("write", name, err) }()

	key := s.Key(name)

	if s.quota > 0 {
		if err := s.checkQuota(ctx, key, name, data); err != nil {
			return 0, err
		}
	}

	version, err = s.medium.Store(ctx, key, data, expected)
	switch {
	case err == nil:
		observability.StoreDocumentBytes.WithLabelValues(name).Set(float64(len(data)))
		return version, nil
	case errors.Is(err, ErrVersionConflict):
		observability.StoreVersionConflicts.WithLabelValues(name).Inc()
		return 0, models.NewVersionConflictError(name)
	case errors.Is(err, ErrMediumFull):
		observability.StoreQuotaExceeded.WithLabelValues(name).Inc()
		return 0, models.NewQuotaExceededError(name, err)
	default:
		return 0, models.NewInternalError(fmt.Errorf("write %q: %w", name, err))
	}
}

func (s *Store) checkQuota(ctx context.Context, key, name string, data []byte) error {
	usage, err := s.medium.Usage(ctx)
	if err != nil {
		return models.NewInternalError(fmt.Errorf("usage: %w", err))
	}

	var old int64
	if entry, err := s.medium.Load(ctx, key); err == nil {
		old = int64(len(key) + len(entry.Data))
	}

	next := usage - old + int64(len(key)+len(data))
	if next > s.quota {
		observability.StoreQuotaExceeded.WithLabelValues(name).Inc()
		return models.NewQuotaExceededError(name,
			fmt.Errorf("%w: %d of %d bytes", ErrMediumFull, next, s.quota))
	}
	return nil
}

// Remove deletes name from the medium.
func (s *Store) Remove(ctx context.Context, name string) (err error) {
	ctx, span := observability.StartStoreSpan(ctx, "remove", name)
	defer func() { observability.EndSpan(span, err) }()
	defer func() { observability.CountStore("remove", name, err) }()

	if err := s.medium.Remove(ctx, s.Key(name)); err != nil {
		return models.NewInternalError(fmt.Errorf("remove %q: %w", name, err))
	}
	return nil
}

// Usage reports the bytes held by the medium.
func (s *Store) Usage(ctx context.Context) (int64, error) {
	return s.medium.Usage(ctx)
}

// Close closes the medium.
func (s *Store) Close() error {
	return s.medium.Close()
}
