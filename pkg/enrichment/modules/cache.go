package modules

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jwebster45206/turn-engine/pkg/enrichment"
	"github.com/jwebster45206/turn-engine/pkg/state"
)

const (
	// DefaultCacheTTL applies when a cached module is built with a zero TTL
	DefaultCacheTTL = 10 * time.Minute

	// CacheKeyPrefix starts every key the decorator writes
	CacheKeyPrefix = "enrichment:"
)

// Cache is the subset of the service cache the decorator needs. Get returns
// an empty string and no error on a miss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// CachedModule memoises another module's results keyed by the inputs it sees
type CachedModule struct {
	inner  enrichment.Module
	cache  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewCachedModule wraps m. Cache failures fall through to m.
func NewCachedModule(m enrichment.Module, cache Cache, ttl time.Duration, logger *slog.Logger) *CachedModule {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedModule{inner: m, cache: cache, ttl: ttl, logger: logger}
}

func (c *CachedModule) ID() string {
	return c.inner.ID()
}

func (c *CachedModule) Dependencies() []enrichment.ModuleDependency {
	return c.inner.Dependencies()
}

func (c *CachedModule) Enrich(ctx context.Context, ec enrichment.EnrichedContext) (enrichment.ModuleEnrichmentResult, error) {
	key, err := cacheKey(c.inner.ID(), ec)
	if err != nil {
		c.logger.Warn("Failed to build enrichment cache key", "module_id", c.inner.ID(), "error", err)
		return c.inner.Enrich(ctx, ec)
	}

	start := time.Now()
	if raw, err := c.cache.Get(ctx, key); err != nil {
		c.logger.Warn("Enrichment cache read failed", "module_id", c.inner.ID(), "error", err)
	} else if raw != "" {
		var res enrichment.ModuleEnrichmentResult
		if err := json.Unmarshal([]byte(raw), &res); err == nil {
			res.ExecutionTime = time.Since(start)
			c.logger.Debug("Enrichment cache hit", "module_id", c.inner.ID())
			return res, nil
		}
		c.logger.Warn("Discarding unreadable enrichment cache entry", "module_id", c.inner.ID(), "key", key)
	}

	res, err := c.inner.Enrich(ctx, ec)
	if err != nil {
		return res, err
	}
	encoded, err := json.Marshal(res)
	if err != nil {
		c.logger.Warn("Failed to encode enrichment result for cache", "module_id", c.inner.ID(), "error", err)
		return res, nil
	}
	if err := c.cache.Set(ctx, key, string(encoded), c.ttl); err != nil {
		c.logger.Warn("Enrichment cache write failed", "module_id", c.inner.ID(), "error", err)
	}
	return res, nil
}

// cacheKey hashes everything a module can observe apart from timings and the
// turn counter
func cacheKey(id string, ec enrichment.EnrichedContext) (string, error) {
	subject := ec.Subject
	subject.Turn = 0
	deps := make(map[string]any, len(ec.DependencyResults))
	for depID, r := range ec.DependencyResults {
		deps[depID] = r.Data
	}
	raw, err := json.Marshal(struct {
		Subject enrichment.PlayerSnapshot `json:"subject"`
		Action  enrichment.ActionInfo     `json:"action"`
		Ambient state.Ambient             `json:"ambient"`
		Deps    map[string]any            `json:"deps"`
	}{subject, ec.Action, ec.Ambient, deps})
	if err != nil {
		return "", fmt.Errorf("failed to encode context: %w", err)
	}
	sum := sha256.Sum256(raw)
	return CacheKeyPrefix + id + ":" + hex.EncodeToString(sum[:12]), nil
}
