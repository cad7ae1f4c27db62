// Package orchestrator turns capabilities into concurrent tool calls and
// gathers their answers into one BusinessDataBag.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"business-assistant/internal/catalog"
	"business-assistant/internal/common/logger"
	"business-assistant/internal/common/metrics"
	"business-assistant/internal/common/observability"
	"business-assistant/internal/intent"
	"business-assistant/internal/models"
	"business-assistant/internal/timeparse"
)

const (
	DefaultCallTimeout       = 10 * time.Second
	DefaultOverviewThreshold = 2
	DefaultMaxParallel       = 4

	customerLimit  = 20
	inventoryLimit = 50
)

// ToolCaller is satisfied by *protocol.Client.
type ToolCaller interface {
	CallTool(ctx context.Context, name string, args map[string]interface{}) (models.DataAnswer, error)
}

type Orchestrator struct {
	caller            ToolCaller
	catalog           *catalog.Catalog
	logger            logger.Logger
	metrics           *metrics.Metrics
	obs               *observability.Observability
	callTimeout       time.Duration
	overviewThreshold int
	maxParallel       int
	now               func() time.Time
}

type Option func(*Orchestrator)

func WithCallTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.callTimeout = d
		}
	}
}

// WithOverviewThreshold sets how many capabilities a request may carry before
// an extra overview call is issued.
func WithOverviewThreshold(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.overviewThreshold = n
		}
	}
}

func WithMaxParallel(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxParallel = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

func WithObservability(obs *observability.Observability) Option {
	return func(o *Orchestrator) { o.obs = obs }
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func New(caller ToolCaller, cat *catalog.Catalog, log logger.Logger, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		caller:            caller,
		catalog:           cat,
		logger:            logger.Component(log, "orchestrator"),
		metrics:           metrics.NewNop(),
		callTimeout:       DefaultCallTimeout,
		overviewThreshold: DefaultOverviewThreshold,
		maxParallel:       DefaultMaxParallel,
		now:               time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PlannedCall is one tool call and the bag slot its answer fills.
type PlannedCall struct {
	Key  string
	Tool string
	Args map[string]interface{}
}

type outcome struct {
	answer *models.DataAnswer
	err    error
	at     time.Time
}

// Plan lists the calls Collect would issue, in order. Capabilities without a
// dedicated tool contribute nothing.
func (o *Orchestrator) Plan(caps []intent.Capability, window *timeparse.TimeWindow) []PlannedCall {
	present := make(map[intent.Capability]bool, len(caps))
	for _, c := range caps {
		present[c] = true
	}

	var plan []PlannedCall
	add := func(key, tool string, args map[string]interface{}) {
		for _, p := range plan {
			if p.Key == key {
				return
			}
		}
		plan = append(plan, PlannedCall{Key: key, Tool: tool, Args: o.withPeriod(tool, args, window)})
	}

	for _, c := range caps {
		switch c {
		case intent.CapCustomerInsights:
			add(KeyCustomers, catalog.ToolQueryCustomers, map[string]interface{}{"limit": customerLimit})
		case intent.CapSalesForecasting:
			add(KeySales, catalog.ToolAnalyzeSales, map[string]interface{}{})
		case intent.CapInventoryOptimization:
			add(KeyInventory, catalog.ToolQueryProducts, map[string]interface{}{"limit": inventoryLimit})
		case intent.CapFinancialAnalysis:
			add(KeyFinances, catalog.ToolGenerateFinancialReport, map[string]interface{}{})
		}
	}

	if len(present) > o.overviewThreshold {
		add(KeyOverview, catalog.ToolGetBusinessOverview, map[string]interface{}{
			"includeCustomers": present[intent.CapCustomerInsights],
			"includeSales":     present[intent.CapSalesForecasting],
			"includeInventory": present[intent.CapInventoryOptimization],
			"includeFinances":  present[intent.CapFinancialAnalysis],
		})
	}
	return plan
}

// withPeriod adds period arguments to tools whose schema declares them.
func (o *Orchestrator) withPeriod(tool string, args map[string]interface{}, window *timeparse.TimeWindow) map[string]interface{} {
	if !o.catalog.Accepts(tool, "period") {
		return args
	}
	args["period"] = string(timeparse.PeriodMonth)
	if window != nil {
		args["period"] = string(window.Period)
		args["startDate"] = window.StartDate()
		args["endDate"] = window.EndDate()
	}
	return args
}

// Collect issues every planned call concurrently and waits for all of them.
// A failed call never cancels its siblings; cancelling ctx cancels them all.
func (o *Orchestrator) Collect(ctx context.Context, caps []intent.Capability, window *timeparse.TimeWindow) *BusinessDataBag {
	plan := o.Plan(caps, window)
	bag := &BusinessDataBag{}
	if len(plan) == 0 {
		return bag
	}

	ctx, span := o.obs.StartSpan(ctx, "orchestrator.collect", attribute.Int("calls", len(plan)))
	defer span.End()
	start := time.Now()

	results := make([]outcome, len(plan))
	var g errgroup.Group
	g.SetLimit(o.maxParallel)
	for i, c := range plan {
		g.Go(func() error {
			results[i] = o.invoke(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range plan {
		res := results[i]
		if res.err != nil {
			bag.Failures = append(bag.Failures, Failure{
				Key:       c.Key,
				Tool:      c.Tool,
				Message:   res.err.Error(),
				Timestamp: res.at,
			})
			continue
		}
		*bag.slot(c.Key) = res.answer
	}
	if n := len(bag.Failures); n > 0 {
		last := bag.Failures[n-1]
		bag.Error = &ErrorRecord{
			Message:   fmt.Sprintf("%s: %s", last.Tool, last.Message),
			Timestamp: last.Timestamp,
		}
	}

	o.metrics.CollectionDuration.Observe(time.Since(start).Seconds())
	o.logger.Info("Collection finished", map[string]interface{}{
		"calls":       len(plan),
		"failures":    len(bag.Failures),
		"keys":        bag.Keys(),
		"degraded":    bag.Degraded(),
		"duration_ms": time.Since(start).Milliseconds(),
	})
	return bag
}

func (o *Orchestrator) invoke(ctx context.Context, c PlannedCall) outcome {
	callCtx, cancel := context.WithTimeout(ctx, o.callTimeout)
	defer cancel()

	start := time.Now()
	answer, err := o.caller.CallTool(callCtx, c.Tool, c.Args)

	status := "ok"
	if err != nil {
		status = "error"
		o.logger.Warn("Collection call failed", map[string]interface{}{
			"key":   c.Key,
			"tool":  c.Tool,
			"error": err.Error(),
		})
	} else if answer.IsDegraded() {
		status = "degraded"
	}
	o.metrics.CollectionCalls.WithLabelValues(c.Tool, status).Inc()
	o.obs.RecordCall(ctx, "tool:"+c.Tool, status, time.Since(start))

	if err != nil {
		return outcome{err: err, at: o.now()}
	}
	return outcome{answer: &answer, at: o.now()}
}
