package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/chat"
	"github.com/jwebster45206/turn-engine/pkg/narrative"
	"github.com/redis/go-redis/v9"
)

// ErrQuotaExceeded is returned when the narrator quota for the current window
// is used up
var ErrQuotaExceeded = errors.New("narrator quota exceeded")

const quotaKeyPrefix = "narrator-quota:"

// QuotaTracker counts uses per key inside a fixed window. A limit <= 0
// means unlimited.
type QuotaTracker interface {
	// Allow records one use of key and reports whether it fit in the window
	Allow(ctx context.Context, key string) (bool, error)
}

// RedisQuota is a fixed-window counter shared by every worker
type RedisQuota struct {
	client   *redis.Client
	limit    int64
	interval time.Duration
}

var _ QuotaTracker = (*RedisQuota)(nil)

func NewRedisQuota(client *redis.Client, limit int, interval time.Duration) *RedisQuota {
	return &RedisQuota{client: client, limit: int64(limit), interval: interval}
}

func (q *RedisQuota) Allow(ctx context.Context, key string) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}
	k := quotaKeyPrefix + key
	// SET NX opens the window with its TTL; INCR keeps it
	var incr *redis.IntCmd
	_, err := q.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, k, 0, q.interval)
		incr = pipe.Incr(ctx, k)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to increment quota: %w", err)
	}
	n := incr.Val()
	return n <= q.limit, nil
}

type quotaWindow struct {
	start time.Time
	count int
}

// MemoryQuota is a fixed-window counter local to one process
type MemoryQuota struct {
	mu       sync.Mutex
	limit    int
	interval time.Duration
	now      func() time.Time
	windows  map[string]*quotaWindow
}

var _ QuotaTracker = (*MemoryQuota)(nil)

// NewMemoryQuota creates an in-process tracker. A nil clock uses time.Now.
func NewMemoryQuota(limit int, interval time.Duration, now func() time.Time) *MemoryQuota {
	if now == nil {
		now = time.Now
	}
	return &MemoryQuota{
		limit:    limit,
		interval: interval,
		now:      now,
		windows:  make(map[string]*quotaWindow),
	}
}

func (q *MemoryQuota) Allow(ctx context.Context, key string) (bool, error) {
	if q.limit <= 0 {
		return true, nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	w, ok := q.windows[key]
	if !ok || !now.Before(w.start.Add(q.interval)) {
		w = &quotaWindow{start: now}
		q.windows[key] = w
	}
	w.count++
	return w.count <= q.limit, nil
}

// QuotaNarrator spends one unit of quota per narration
type QuotaNarrator struct {
	inner   Narrator
	tracker QuotaTracker
	scope   string
	logger  *slog.Logger
}

var _ Narrator = (*QuotaNarrator)(nil)

// NewQuotaNarrator wraps inner. All calls share the quota named by scope.
func NewQuotaNarrator(inner Narrator, tracker QuotaTracker, scope string, logger *slog.Logger) *QuotaNarrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &QuotaNarrator{inner: inner, tracker: tracker, scope: scope, logger: logger}
}

func (q *QuotaNarrator) Narrate(ctx context.Context, messages []chat.ChatMessage) (*narrative.Narration, error) {
	ok, err := q.tracker.Allow(ctx, q.scope)
	if err != nil {
		return nil, fmt.Errorf("failed to check narrator quota: %w", err)
	}
	if !ok {
		q.logger.Warn("Narrator quota exhausted", "scope", q.scope)
		return nil, ErrQuotaExceeded
	}
	return q.inner.Narrate(ctx, messages)
}
