package recordstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMedium stores every key as a hash with "data" and "version" fields
// under a namespace. Writes use WATCH/MULTI so concurrent writers from
// other processes are detected.
type RedisMedium struct {
	client    *redis.Client
	namespace string
}

// NewRedisMedium wraps an existing client.
func NewRedisMedium(client *redis.Client, namespace string) *RedisMedium {
	return &RedisMedium{client: client, namespace: namespace}
}

// OpenRedis connects to redis by URL ("redis://...") or host:port and pings it.
func OpenRedis(ctx context.Context, addr, namespace string) (*RedisMedium, error) {
	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URL %q: %w", addr, err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return NewRedisMedium(client, namespace), nil
}

func (r *RedisMedium) key(k string) string {
	return r.namespace + k
}

func (r *RedisMedium) Load(ctx context.Context, key string) (Entry, error) {
	vals, err := r.client.HMGet(ctx, r.key(key), "data", "version").Result()
	if err != nil {
		return Entry{}, err
	}
	data, ok := vals[0].(string)
	if !ok {
		return Entry{}, ErrKeyNotFound
	}
	var version int64
	if s, ok := vals[1].(string); ok {
		version, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Entry{}, fmt.Errorf("corrupt version for %q: %w", key, err)
		}
	}
	return Entry{Data: []byte(data), Version: Version(version)}, nil
}

func (r *RedisMedium) Store(ctx context.Context, key string, data []byte, expected Version) (Version, error) {
	k := r.key(key)
	next := expected + 1

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.HGet(ctx, k, "version").Int64()
		if errors.Is(err, redis.Nil) {
			cur = 0
		} else if err != nil {
			return err
		}
		if Version(cur) != expected {
			return ErrVersionConflict
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, k, "data", data, "version", int64(next))
			return nil
		})
		return err
	}, k)

	switch {
	case err == nil:
		return next, nil
	case errors.Is(err, ErrVersionConflict), errors.Is(err, redis.TxFailedErr):
		return 0, ErrVersionConflict
	case strings.HasPrefix(err.Error(), "OOM"):
		return 0, fmt.Errorf("%w: %v", ErrMediumFull, err)
	default:
		return 0, err
	}
}

func (r *RedisMedium) Remove(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *RedisMedium) Usage(ctx context.Context) (int64, error) {
	var total int64
	iter := r.client.Scan(ctx, 0, r.namespace+"*", 100).Iterator()
	for iter.Next(ctx) {
		k := iter.Val()
		n, err := r.client.HStrLen(ctx, k, "data").Result()
		if err != nil {
			return 0, err
		}
		total += int64(len(strings.TrimPrefix(k, r.namespace))) + n
	}
	return total, iter.Err()
}

func (r *RedisMedium) Close() error {
	return r.client.Close()
}
