package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"trellis/pkg/domain"
)

// DefaultCacheTTL bounds how long a cached eligibility verdict may be served.
// Keep it short: revocations at the registry must take effect promptly.
const DefaultCacheTTL = 5 * time.Minute

const cacheKeyPrefix = "idgate:eligible:"

// CachedGate fronts another Gate with a Redis cache. Cache failures degrade
// to the underlying gate rather than failing the operation.
type CachedGate struct {
	client *redis.Client
	next   Gate
	ttl    time.Duration
	log    *slog.Logger
}

var _ Gate = (*CachedGate)(nil)

type CachedGateOption func(*CachedGate)

func WithTTL(ttl time.Duration) CachedGateOption {
	return func(g *CachedGate) {
		g.ttl = ttl
	}
}

func WithLogger(log *slog.Logger) CachedGateOption {
	return func(g *CachedGate) {
		g.log = log
	}
}

func NewCachedGate(client *redis.Client, next Gate, opts ...CachedGateOption) *CachedGate {
	g := &CachedGate{
		client: client,
		next:   next,
		ttl:    DefaultCacheTTL,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *CachedGate) IsEligible(ctx context.Context, addr domain.Address) (bool, error) {
	key := cacheKeyPrefix + addr.String()

	cached, err := g.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		return cached == "1", nil
	case !errors.Is(err, redis.Nil):
		g.log.Warn("eligibility cache read failed", "address", addr, "error", err)
	}

	eligible, err := g.next.IsEligible(ctx, addr)
	if err != nil {
		return false, err
	}

	value := "0"
	if eligible {
		value = "1"
	}
	if err := g.client.Set(ctx, key, value, g.ttl).Err(); err != nil {
		g.log.Warn("eligibility cache write failed", "address", addr, "error", err)
	}
	return eligible, nil
}

// Invalidate drops the cached verdict for addr, forcing the next check
// through to the registry.
func (g *CachedGate) Invalidate(ctx context.Context, addr domain.Address) error {
	return g.client.Del(ctx, cacheKeyPrefix+addr.String()).Err()
}
