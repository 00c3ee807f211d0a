// Package lock provides short lived mutual exclusion keyed by string,
// backed by Redis across instances or by process memory for a single instance.
package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker acquires and releases named locks. Lock returns an ownership token,
// or ok=false without error when the key is held by someone else. Unlock only
// releases the key while it is still held under token.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// unlockScript deletes the key only when it still holds our token
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLock is a SETNX based Locker shared by every instance using the same Redis
type RedisLock struct {
	client *redis.Client
	owner  string
}

// RedisOptions configures the Redis connection
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisLock connects to Redis and verifies the connection
func NewRedisLock(ctx context.Context, opts RedisOptions) (*RedisLock, error) {
	const op = "lock.NewRedisLock"

	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &RedisLock{client: client, owner: uuid.NewString()}, nil
}

func redisKey(key string) string {
	return fmt.Sprintf("lock:%s", key)
}

func (r *RedisLock) Lock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	const op = "lock.RedisLock.Lock"

	token := r.owner + ":" + uuid.NewString()
	ok, err := r.client.SetNX(ctx, redisKey(key), token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (r *RedisLock) Unlock(ctx context.Context, key, token string) error {
	const op = "lock.RedisLock.Unlock"

	if token == "" {
		return nil
	}
	if err := unlockScript.Run(ctx, r.client, []string{redisKey(key)}, token).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r *RedisLock) Close() error {
	return r.client.Close()
}

type heldLock struct {
	token string
	until time.Time
}

// MemoryLock is a process local Locker with per-key expiry
type MemoryLock struct {
	mu    sync.Mutex
	held  map[string]heldLock
	clock func() time.Time
}

func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[string]heldLock), clock: time.Now}
}

func (m *MemoryLock) Lock(_ context.Context, key string, ttl time.Duration) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock()
	if h, ok := m.held[key]; ok && now.Before(h.until) {
		return "", false, nil
	}
	token := uuid.NewString()
	m.held[key] = heldLock{token: token, until: now.Add(ttl)}
	return token, true, nil
}

func (m *MemoryLock) Unlock(_ context.Context, key, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// An expired lock may since have been taken by someone else
	if h, ok := m.held[key]; ok && h.token == token {
		delete(m.held, key)
	}
	return nil
}

// ErrNotAcquired is returned by Acquire when the wait budget runs out
var ErrNotAcquired = errors.New("lock not acquired")

// Acquire retries Lock every poll interval until it succeeds, wait elapses or ctx ends.
// The returned release func is safe to call once and never drops a lock
// that expired and was acquired by another caller.
func Acquire(ctx context.Context, l Locker, key string, ttl, wait, poll time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		token, ok, err := l.Lock(ctx, key, ttl)
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { _ = l.Unlock(context.WithoutCancel(ctx), key, token) }, nil
		}
		if time.Now().After(deadline) {
			return nil, ErrNotAcquired
		}

		timer := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}
