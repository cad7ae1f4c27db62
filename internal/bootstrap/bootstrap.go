// Package bootstrap wires the stores, gateway, dispatcher and orchestrator
// from configuration. Both binaries share it.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/config"
	"business-assistant/internal/common/database"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/common/observability"
	"business-assistant/internal/gateway"
	"business-assistant/internal/intent"
	"business-assistant/internal/orchestrator"
	"business-assistant/internal/protocol"
	"business-assistant/internal/store"
	"business-assistant/internal/store/postgres"
	"business-assistant/internal/store/search"
	"business-assistant/internal/store/snapshot"
	"business-assistant/internal/timeparse"
	"business-assistant/internal/transport/httpapi"
)

// ConnectAttempts bounds the startup retries against the primary store.
var ConnectAttempts = 5

const connectDelay = 2 * time.Second

// Services is the assembled read path.
type Services struct {
	Config       *config.Config
	Catalog      *catalog.Catalog
	Gateway      *gateway.Gateway
	Dispatcher   *protocol.Dispatcher
	Orchestrator *orchestrator.Orchestrator
	Assistant    *orchestrator.Assistant
	Metrics      *metrics.Metrics
	Gatherer     prometheus.Gatherer
	Checks       map[string]httpapi.Checker

	obs     *observability.Observability
	closers []func() error
	logger  logger.Logger
}

// Build connects the configured stores and assembles the services. A primary
// store that stays unreachable is logged and left out; reads then fall back
// to the snapshot.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger) (*Services, error) {
	s := &Services{
		Config:   cfg,
		Catalog:  catalog.New(),
		Gatherer: prometheus.DefaultGatherer,
		Checks:   make(map[string]httpapi.Checker),
		logger:   logger.Component(log, "bootstrap"),
	}

	if cfg.Observability.MetricsEnabled {
		s.Metrics = metrics.New(prometheus.DefaultRegisterer)
		s.obs = observability.New(cfg.Observability.ServiceName, log)
	} else {
		s.Metrics = metrics.NewNop()
		s.obs = observability.NewNop()
	}

	secondary, err := snapshot.Load(cfg.Snapshot.Dir, log)
	if err != nil {
		s.Close()
		return nil, err
	}

	primary := s.connectPrimary(ctx, cfg, log)

	gwOpts := []gateway.Option{
		gateway.WithTimeout(config.GetDuration(cfg.Gateway.Timeout)),
		gateway.WithMetrics(s.Metrics),
	}
	if cfg.Gateway.CacheEnabled {
		rdb := database.NewRedis(cfg.Database.Redis)
		s.closers = append(s.closers, rdb.Close)
		s.Checks["redis"] = rdb.Ping
		gwOpts = append(gwOpts, gateway.WithCache(
			gateway.NewCache(rdb.Client, config.GetDuration(cfg.Gateway.CacheTTL), log),
		))
	}
	s.Gateway = gateway.New(primary, secondary, log, gwOpts...)

	s.Dispatcher = protocol.NewDispatcher(s.Catalog, s.Gateway, log,
		protocol.WithMetrics(s.Metrics),
		protocol.WithObservability(s.obs),
		protocol.WithServerInfo(cfg.App.Name, cfg.App.Version),
	)

	s.Orchestrator = orchestrator.New(protocol.NewClient(s.Dispatcher), s.Catalog, log,
		orchestrator.WithCallTimeout(config.GetDuration(cfg.Orchestrator.CallTimeout)),
		orchestrator.WithOverviewThreshold(cfg.Orchestrator.OverviewThreshold),
		orchestrator.WithMaxParallel(cfg.Orchestrator.MaxParallel),
		orchestrator.WithMetrics(s.Metrics),
		orchestrator.WithObservability(s.obs),
	)

	classifier, err := Classifier(cfg.Intent)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Assistant = orchestrator.NewAssistant(classifier, timeparse.New(), s.Orchestrator, log)

	return s, nil
}

// Classifier builds the intent classifier from the rules file when one is
// configured, else from the built-in table.
func Classifier(cfg config.IntentConfig) (*intent.Classifier, error) {
	rules := intent.DefaultRules
	if cfg.RulesFile != "" {
		loaded, err := intent.LoadRules(cfg.RulesFile)
		if err != nil {
			return nil, err
		}
		rules = loaded
	}
	return intent.NewClassifier(rules, cfg.Locales...), nil
}

func (s *Services) connectPrimary(ctx context.Context, cfg *config.Config, log logger.Logger) store.PrimaryStore {
	switch cfg.Primary.Driver {
	case config.DriverPostgres:
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			s.logger.Error("PostgreSQL client unavailable", map[string]interface{}{"error": err.Error()})
			return nil
		}
		s.closers = append(s.closers, pg.Close)
		s.Checks["postgres"] = pg.Ping
		if err := s.retry(ctx, "PostgreSQL connection", func() error { return pg.Ping(ctx) }); err != nil {
			s.logger.Warn("Starting with snapshot fallback only until PostgreSQL recovers", map[string]interface{}{"error": err.Error()})
		}
		return postgres.New(pg.DB, log)

	case config.DriverElasticsearch:
		es, err := database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			s.logger.Error("Elasticsearch client unavailable", map[string]interface{}{"error": err.Error()})
			return nil
		}
		s.Checks["elasticsearch"] = es.Ping
		if err := s.retry(ctx, "Elasticsearch connection", func() error { return es.Ping(ctx) }); err != nil {
			s.logger.Warn("Starting with snapshot fallback only until Elasticsearch recovers", map[string]interface{}{"error": err.Error()})
		}
		return search.New(es.Client, es.IndexPrefix, log)

	default:
		s.logger.Info("No primary store configured, serving the snapshot", nil)
		return nil
	}
}

// retry runs operation with exponential backoff, giving up after
// ConnectAttempts tries or when ctx ends.
func (s *Services) retry(ctx context.Context, operationName string, operation func() error) error {
	var err error
	delay := connectDelay

	for i := 0; i < ConnectAttempts; i++ {
		if err = operation(); err == nil {
			s.logger.Info(operationName+" established", nil)
			return nil
		}
		if i == ConnectAttempts-1 {
			break
		}
		s.logger.Warn(operationName+" failed, retrying", map[string]interface{}{
			"error":       err.Error(),
			"attempt":     i + 1,
			"maxAttempts": ConnectAttempts,
			"nextRetryIn": delay.String(),
		})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%s failed after %d attempts: %w", operationName, ConnectAttempts, err)
}

// Close releases store connections and flushes telemetry.
func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.logger.Warn("Close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	s.closers = nil
	s.obs.Shutdown()
}
