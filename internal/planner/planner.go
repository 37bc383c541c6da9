// Package planner selects a feasible, resource-bounded and risk-bounded plan
// from a task tree with a best-first search over partial plans.
//
// The search keeps, for every partial plan, an agenda of composite nodes still
// to be decomposed. Popping the cheapest partial plan decomposes the first
// composite on its agenda; every option that fits the pool and the risk
// ceiling becomes a new partial plan. A partial plan with nothing left on its
// agenda is complete, and the cheapest complete plan found is returned.
package planner

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/telemetry"
	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// Run outcomes, used as metric labels
const (
	OutcomeSuccess    = "success"
	OutcomeInfeasible = "infeasible"
	OutcomeBudget     = "budget_exceeded"
	OutcomeInvalid    = "invalid"
)

// Planner runs planning searches. It is safe for concurrent use; each call to
// Plan owns its own search state.
type Planner struct {
	cfg      Config
	logger   *log.Logger
	metrics  *metrics.Metrics
	recorder trace.Recorder
	cache    *resultCache

	newRunID func() string
	now      func() time.Time
}

// Option configures a Planner
type Option func(*Planner)

// WithLogger sets the logger; the default discards everything
func WithLogger(l *log.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithMetrics enables Prometheus instrumentation
func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Planner) { p.metrics = m }
}

// WithRecorder receives every search decision
func WithRecorder(r trace.Recorder) Option {
	return func(p *Planner) { p.recorder = r }
}

// New validates cfg and builds a Planner
func New(cfg Config, opts ...Option) (*Planner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	p := &Planner{
		cfg:      cfg,
		logger:   log.Nop(),
		recorder: trace.Nop{},
		newRunID: uuid.NewString,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	cache, err := newResultCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	p.cache = cache
	return p, nil
}

// Config returns the settings the planner was built with
func (p *Planner) Config() Config {
	return p.cfg
}

// Plan selects a plan for the subtree under root.
//
// Structural defects (*tree.CircularDependencyError, unknown root, invalid
// pool) fail before any search work. Exhausting the frontier without a plan
// returns *PlanningError; running out of expansions, time or context returns
// *BudgetExceededError.
func (p *Planner) Plan(ctx context.Context, t *tree.Tree, root domain.NodeID, pool resource.Pool) (*Result, error) {
	start := p.now()
	runID := p.newRunID()
	ctx, span := telemetry.StartPlanSpan(ctx, runID, root.String())
	defer span.End()

	logger := p.logger.With("run_id", runID, "root", root.String())
	logger.DebugContext(ctx, "planning started",
		"risk_ceiling", p.cfg.RiskCeiling,
		"accounting", p.cfg.Accounting.String(),
		"pool", pool)

	res, expansions, err := p.plan(ctx, t, root, pool, runID, logger)
	elapsed := p.now().Sub(start)
	outcome := outcomeOf(err)
	if p.metrics != nil {
		p.metrics.ObserveRun(outcome, elapsed, expansions)
	}

	if err != nil {
		telemetry.RecordError(span, err)
		if p.metrics != nil {
			p.metrics.RecordError(string(errors.CodeOf(err)), "planner")
		}
		logger.WithError(err).InfoContext(ctx, "planning failed",
			"outcome", outcome,
			"expansions", expansions,
			"duration", elapsed)
		return nil, err
	}

	res.Duration = elapsed
	if p.metrics != nil {
		p.metrics.ObservePlan(res.Cost, len(res.Sequence))
	}
	telemetry.RecordSuccess(span,
		attribute.Float64("plan.cost", res.Cost),
		attribute.Float64("plan.risk", res.RiskFactor),
		attribute.Int("plan.nodes", len(res.Sequence)),
		attribute.Int("plan.expansions", res.Expansions),
		attribute.Bool("plan.cached", res.Cached))
	logger.InfoContext(ctx, "plan selected",
		"cost", res.Cost,
		"risk", res.RiskFactor,
		"nodes", len(res.Sequence),
		"expansions", res.Expansions,
		"cached", res.Cached,
		"duration", elapsed)
	return res, nil
}

func (p *Planner) plan(ctx context.Context, t *tree.Tree, root domain.NodeID, pool resource.Pool, runID string, logger *log.Logger) (*Result, int, error) {
	if err := pool.Validate(); err != nil {
		return nil, 0, err
	}
	if err := t.ValidateAcyclic(root); err != nil {
		return nil, 0, err
	}

	var key cacheKey
	if p.cache != nil {
		k, err := p.cache.key(t, root, pool, p.cfg)
		if err != nil {
			return nil, 0, err
		}
		key = k
		if cached, ok := p.cache.get(key); ok {
			if p.metrics != nil {
				p.metrics.CacheHits.Inc()
			}
			cached.RunID = runID
			cached.Cached = true
			return cached, 0, nil
		}
		if p.metrics != nil {
			p.metrics.CacheMisses.Inc()
		}
	}

	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
	}

	s := &search{
		tree:     t,
		root:     root,
		pool:     pool.Clone(),
		cfg:      p.cfg,
		runID:    runID,
		logger:   logger,
		recorder: p.recorder,
		metrics:  p.metrics,
		now:      p.now,
		start:    p.now(),
	}
	res, err := s.run(ctx)
	if p.metrics != nil {
		p.metrics.FrontierPeak.Set(float64(s.queue.peak))
	}
	if err != nil {
		return nil, s.expansions, err
	}

	res.RunID = runID
	if p.cache != nil {
		p.cache.put(key, res)
	}
	return res, s.expansions, nil
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var budget *BudgetExceededError
	if stderrors.As(err, &budget) {
		return OutcomeBudget
	}
	if stderrors.Is(err, ErrNoFeasiblePlan) {
		return OutcomeInfeasible
	}
	return OutcomeInvalid
}
