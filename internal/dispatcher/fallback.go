package dispatcher

import (
	"context"
	"sync"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// FallbackStore remembers that the vision model was rate limited so the next
// independent request starts directly on the OCR+text path. The state expires
// after a fixed cool-down; mid-request the controller never re-probes the primary.
type FallbackStore interface {
	Active(ctx context.Context) bool
	Trip(ctx context.Context)
	Clear(ctx context.Context)
}

// MemoryFallback is the in-process store. The clock is injectable so cool-down
// behavior is deterministic under test.
type MemoryFallback struct {
	mu       sync.Mutex
	until    time.Time
	cooldown time.Duration
	now      func() time.Time
}

func NewMemoryFallback(cooldown time.Duration) *MemoryFallback {
	return &MemoryFallback{cooldown: cooldown, now: time.Now}
}

// NewMemoryFallbackClock is NewMemoryFallback with an explicit clock, for tests.
func NewMemoryFallbackClock(cooldown time.Duration, now func() time.Time) *MemoryFallback {
	return &MemoryFallback{cooldown: cooldown, now: now}
}

func (m *MemoryFallback) Active(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now().Before(m.until)
}

func (m *MemoryFallback) Trip(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.until = m.now().Add(m.cooldown)
	log.Warn().Time("until", m.until).Msg("fallback cool-down started")
}

func (m *MemoryFallback) Clear(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.until = time.Time{}
}

// RedisFallback shares cool-down state across processes that hit the same API key.
type RedisFallback struct {
	rdb      *redis.Client
	cooldown time.Duration
}

const fallbackKey = "answerpipe:fallback:vision"

func NewRedisFallback(redisURL string, cooldown time.Duration) (*RedisFallback, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	return &RedisFallback{rdb: c, cooldown: cooldown}, nil
}

func (r *RedisFallback) Active(ctx context.Context) bool {
	ts, err := r.rdb.Get(ctx, fallbackKey).Int64()
	if err != nil {
		return false
	}
	return time.Now().Unix() < ts
}

func (r *RedisFallback) Trip(ctx context.Context) {
	until := time.Now().Add(r.cooldown)
	if err := r.rdb.Set(ctx, fallbackKey, until.Unix(), r.cooldown).Err(); err != nil {
		log.Warn().Err(err).Msg("failed to persist fallback cool-down")
		return
	}
	log.Warn().Time("until", until).Msg("fallback cool-down started (shared)")
}

func (r *RedisFallback) Clear(ctx context.Context) {
	_ = r.rdb.Del(ctx, fallbackKey).Err()
}

func (r *RedisFallback) Close() error { return r.rdb.Close() }
