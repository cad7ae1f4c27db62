// Package gateway answers per-entity reads from the primary store and falls
// back to the static snapshot when the primary fails.
package gateway

import (
	"context"
	"errors"
	"time"

	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/models"
	"business-assistant/internal/store"
)

var errNoPrimary = errors.New("PRIMARY_STORE_NOT_CONFIGURED")

const DefaultTimeout = 5 * time.Second

type Gateway struct {
	primary   store.PrimaryStore
	secondary store.PrimaryStore
	cache     *Cache
	timeout   time.Duration
	now       func() time.Time
	metrics   *metrics.Metrics
	logger    logger.Logger
}

type Option func(*Gateway)

func WithTimeout(d time.Duration) Option {
	return func(g *Gateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

func WithCache(c *Cache) Option {
	return func(g *Gateway) { g.cache = c }
}

func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gateway) { g.metrics = m }
}

// New wires a gateway. primary may be nil, in which case every read is
// answered by the secondary snapshot.
func New(primary, secondary store.PrimaryStore, log logger.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		primary:   primary,
		secondary: secondary,
		timeout:   DefaultTimeout,
		now:       time.Now,
		logger:    logger.Component(log, "gateway"),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.metrics == nil {
		g.metrics = metrics.NewNop()
	}
	return g
}

type fetchFunc[T any] func(ctx context.Context, st store.PrimaryStore) (T, error)

type readResult[T any] struct {
	value  T
	source models.Source
	cached bool
}

// readThrough tries cache, then the primary under the gateway deadline, then
// the snapshot. It fails only when the caller's ctx is done.
func readThrough[T any](ctx context.Context, g *Gateway, entity, key string, fetch fetchFunc[T]) (readResult[T], error) {
	var res readResult[T]
	if err := ctx.Err(); err != nil {
		return res, err
	}

	if g.cache != nil && g.cache.get(ctx, key, &res.value) {
		g.metrics.GatewayCacheHits.WithLabelValues(entity).Inc()
		g.metrics.GatewayReads.WithLabelValues(entity, string(models.SourcePrimary)).Inc()
		res.source = models.SourcePrimary
		res.cached = true
		return res, nil
	}

	primaryErr := errNoPrimary
	if g.primary != nil {
		pctx, cancel := context.WithTimeout(ctx, g.timeout)
		value, err := fetch(pctx, g.primary)
		cancel()
		if err == nil {
			g.cache.set(ctx, key, value)
			g.metrics.GatewayReads.WithLabelValues(entity, string(models.SourcePrimary)).Inc()
			res.value = value
			res.source = models.SourcePrimary
			return res, nil
		}
		primaryErr = err
	}

	if err := ctx.Err(); err != nil {
		return res, err
	}

	g.logger.Warn("primary store failed, answering from snapshot", map[string]interface{}{
		"entity": entity,
		"error":  primaryErr,
	})
	g.metrics.GatewayFallbacks.WithLabelValues(entity).Inc()
	g.metrics.GatewayReads.WithLabelValues(entity, string(models.SourceSecondary)).Inc()

	res.source = models.SourceSecondary
	if g.secondary == nil {
		return res, nil
	}
	value, err := fetch(ctx, g.secondary)
	if err != nil {
		g.logger.Error("snapshot read failed", map[string]interface{}{"entity": entity, "error": err})
		return res, nil
	}
	res.value = value
	return res, nil
}

func worse(a, b models.Source) models.Source {
	if a == models.SourceSecondary || b == models.SourceSecondary {
		return models.SourceSecondary
	}
	return models.SourcePrimary
}
