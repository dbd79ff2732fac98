// Package dedup claims keys for one-shot side effects so that replayed
// callbacks do not repeat them.
package dedup

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper reports whether a key was already claimed within its TTL.
type Deduper interface {
	Seen(ctx context.Context, key string) (bool, error)
}

type redisDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisDeduper) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.prefix+":"+key, "1", d.ttl).Result()
	if err != nil {
		return false, err
	}
	// false => already exists => duplicate
	return !ok, nil
}

type memoryDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
	now    func() time.Time
}

// NewMemory returns a process-local deduper.
func NewMemory(ttl time.Duration) Deduper {
	return newMemoryDeduper(ttl, time.Now)
}

func newMemoryDeduper(ttl time.Duration, now func() time.Time) *memoryDeduper {
	return &memoryDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now().Add(ttl),
		now:    now,
	}
}

func (d *memoryDeduper) Seen(_ context.Context, key string) (bool, error) {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if exp, ok := d.seen[key]; ok && exp.After(now) {
		return true, nil
	}

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}

	return false, nil
}

// New builds a Redis deduper and falls back to in-memory on failure.
func New(addr, pass string, db int, prefix string, ttl time.Duration) (Deduper, error) {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	if addr == "" {
		return NewMemory(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return NewMemory(ttl), err
	}

	return NewRedis(client, prefix, ttl), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) Deduper {
	return &redisDeduper{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}
