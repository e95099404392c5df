// AngelaMos | 2026
// attempts.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/angelamos/studio-portal/internal/core"
	"github.com/angelamos/studio-portal/internal/metrics"
)

// CounterStore is a fixed-window counter keyed by identifier. The window
// starts at the first increment and the key vanishes when it expires.
type CounterStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
	Count(ctx context.Context, key string) (int64, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

type RedisCounterStore struct {
	client *redis.Client
	prefix string
}

func NewRedisCounterStore(client *redis.Client, prefix string) *RedisCounterStore {
	return &RedisCounterStore{client: client, prefix: prefix}
}

func (s *RedisCounterStore) Increment(
	ctx context.Context,
	key string,
	window time.Duration,
) (int64, error) {
	k := s.prefix + key

	n, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", k, err)
	}
	if n == 1 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return n, fmt.Errorf("expire %s: %w", k, err)
		}
	}
	return n, nil
}

func (s *RedisCounterStore) Count(ctx context.Context, key string) (int64, time.Duration, error) {
	k := s.prefix + key

	n, err := s.client.Get(ctx, k).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("get %s: %w", k, err)
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return n, 0, fmt.Errorf("ttl %s: %w", k, err)
	}
	return n, max(ttl, 0), nil
}

func (s *RedisCounterStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return fmt.Errorf("reset %s: %w", key, err)
	}
	return nil
}

type memoryCounter struct {
	count   int64
	expires time.Time
}

// MemoryCounterStore serves single-instance deployments and tests.
type MemoryCounterStore struct {
	mu       sync.Mutex
	counters map[string]memoryCounter
	now      func() time.Time
}

func NewMemoryCounterStore(now func() time.Time) *MemoryCounterStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryCounterStore{
		counters: make(map[string]memoryCounter),
		now:      now,
	}
}

func (s *MemoryCounterStore) Increment(
	_ context.Context,
	key string,
	window time.Duration,
) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expires) {
		c = memoryCounter{expires: now.Add(window)}
	}
	c.count++
	s.counters[key] = c

	if len(s.counters) > 4096 {
		s.sweep(now)
	}
	return c.count, nil
}

func (s *MemoryCounterStore) Count(_ context.Context, key string) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	c, ok := s.counters[key]
	if !ok || !now.Before(c.expires) {
		return 0, 0, nil
	}
	return c.count, c.expires.Sub(now), nil
}

func (s *MemoryCounterStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.counters, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryCounterStore) sweep(now time.Time) {
	for k, c := range s.counters {
		if !now.Before(c.expires) {
			delete(s.counters, k)
		}
	}
}

// ipAttemptFactor lets one address fail more often than one account, since
// an office NAT may front several clients.
const ipAttemptFactor = 4

var ErrLoginLocked = errors.New("login temporarily locked")

type LockoutError struct {
	RetryAfter time.Duration
}

func (e *LockoutError) Error() string {
	return fmt.Sprintf("login temporarily locked, retry in %s", e.RetryAfter.Round(time.Second))
}

func (e *LockoutError) Is(target error) bool {
	return target == ErrLoginLocked || target == core.ErrTooManyRequests
}

// LoginGuard makes the allow/deny decision for sign-in attempts. Store
// failures are logged and treated as a clean record.
type LoginGuard struct {
	store       CounterStore
	maxAttempts int64
	window      time.Duration
	logger      *slog.Logger
}

func NewLoginGuard(
	store CounterStore,
	maxAttempts int,
	window time.Duration,
	logger *slog.Logger,
) *LoginGuard {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoginGuard{
		store:       store,
		maxAttempts: int64(maxAttempts),
		window:      window,
		logger:      logger,
	}
}

func emailKey(email string) string { return "email:" + strings.ToLower(email) }
func ipKey(ip string) string       { return "ip:" + ip }

func (g *LoginGuard) Check(ctx context.Context, email, ip string) error {
	if err := g.checkKey(ctx, emailKey(email), g.maxAttempts); err != nil {
		return err
	}
	if ip == "" {
		return nil
	}
	return g.checkKey(ctx, ipKey(ip), g.maxAttempts*ipAttemptFactor)
}

func (g *LoginGuard) checkKey(ctx context.Context, key string, limit int64) error {
	n, ttl, err := g.store.Count(ctx, key)
	if err != nil {
		g.logger.Warn("login attempt store unavailable", "error", err)
		return nil
	}
	if n >= limit {
		return &LockoutError{RetryAfter: max(ttl, time.Second)}
	}
	return nil
}

func (g *LoginGuard) Fail(ctx context.Context, email, ip string) {
	n, err := g.store.Increment(ctx, emailKey(email), g.window)
	if err != nil {
		g.logger.Warn("record failed login", "error", err)
	} else if n == g.maxAttempts {
		metrics.LoginLockouts.Inc()
		g.logger.Warn("login locked", "email", strings.ToLower(email), "window", g.window)
	}

	if ip == "" {
		return
	}
	if _, err := g.store.Increment(ctx, ipKey(ip), g.window); err != nil {
		g.logger.Warn("record failed login", "error", err)
	}
}

func (g *LoginGuard) Succeed(ctx context.Context, email string) {
	if err := g.store.Reset(ctx, emailKey(email)); err != nil {
		g.logger.Warn("reset login attempts", "error", err)
	}
}
