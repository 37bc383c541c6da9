package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	tperrors "github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

var ignoreRunFields = cmpopts.IgnoreFields(Result{}, "RunID", "Duration", "Cached")

func TestPlan_PrefersCheaperAlternative(t *testing.T) {
	tr := missionTree(t, 0.4)

	res, err := newPlanner(t, nil).Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)

	assert.Equal(t, 60.0, res.Cost)
	assert.LessOrEqual(t, res.RiskFactor, 0.7)
	assert.Equal(t, 0.4, res.RiskFactor)
	assert.Equal(t, ids("AcquireData", "ProcessData", "API", "Clean", "Transform"), res.Sequence)
	assert.Equal(t, ids("API", "Clean", "Transform"), res.Leaves(tr))
	assert.Equal(t, resource.Usage{"cpu": 8, "memory": 5632, "gpu": 1}, res.ResourceUsage)
	assert.Equal(t, domain.NodeID("Mission"), res.Root)
	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.Contains("Sensor"))
}

func TestPlan_CostIsSumOfChosenNodes(t *testing.T) {
	tr := missionTree(t, 0.4)

	res, err := newPlanner(t, nil).Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)

	var sum float64
	for _, id := range res.Sequence {
		n, ok := tr.Node(id)
		require.True(t, ok)
		sum += n.Cost
	}
	assert.Equal(t, sum, res.Cost)
}

func TestPlan_NoFeasiblePlan(t *testing.T) {
	tr := missionTree(t, 0.4)
	pool := resource.Pool{"cpu": 8, "memory": 500, "gpu": 1}

	res, err := newPlanner(t, nil).Plan(context.Background(), tr, "Mission", pool)

	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrNoFeasiblePlan)
	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, tperrors.ErrCodeNoFeasiblePlan, tperrors.CodeOf(err))

	var conflict *resource.ConflictError
	require.ErrorAs(t, err, &conflict, "last conflict is attached as a diagnostic")
	assert.Equal(t, "memory", conflict.Resource)
	assert.Equal(t, 500, conflict.Available)
}

func TestPlan_RiskCeiling(t *testing.T) {
	tr := missionTree(t, 0.9)
	rec := trace.NewMemory(0)

	res, err := newPlanner(t, nil, WithRecorder(rec)).Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)

	assert.False(t, res.Contains("API"), "the cheapest alternative is over the ceiling")
	assert.Equal(t, 80.0, res.Cost)
	assert.Equal(t, 0.2, res.RiskFactor)

	rejected := rec.Filter(trace.EventReject)
	require.Len(t, rejected, 1)
	assert.Equal(t, []string{"API"}, rejected[0].Option)
	assert.Contains(t, rejected[0].Reason, "exceeds ceiling")
}

func TestPlan_RiskCeilingRejectsEverything(t *testing.T) {
	tr := missionTree(t, 0.4)

	_, err := newPlanner(t, func(c *Config) { c.RiskCeiling = 0.1 }).Plan(context.Background(), tr, "Mission", missionPool())

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, 2, planErr.RiskRejections)
	assert.Nil(t, planErr.LastConflict)
}

func TestPlan_Idempotent(t *testing.T) {
	tr := missionTree(t, 0.4)
	p := newPlanner(t, nil)

	first, err := p.Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)
	second, err := p.Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)

	if diff := cmp.Diff(first, second, ignoreRunFields); diff != "" {
		t.Errorf("repeated runs differ (-first +second):\n%s", diff)
	}
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestPlan_Accounting(t *testing.T) {
	// With 7 cpus each option fits on its own, but API plus the processing
	// step overruns once earlier reservations are deducted.
	pool := resource.Pool{"cpu": 7, "memory": 16384, "gpu": 1}

	tests := []struct {
		mode     Accounting
		wantCost float64
		wantLeaf domain.NodeID
	}{
		{AccountingSnapshot, 60, "API"},
		{AccountingCumulative, 80, "Sensor"},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			tr := missionTree(t, 0.4)
			p := newPlanner(t, func(c *Config) { c.Accounting = tt.mode })

			res, err := p.Plan(context.Background(), tr, "Mission", pool)
			require.NoError(t, err)
			assert.Equal(t, tt.wantCost, res.Cost)
			assert.True(t, res.Contains(tt.wantLeaf))
			if tt.mode == AccountingCumulative {
				for name, used := range res.ResourceUsage {
					assert.LessOrEqual(t, used, pool[name], "cumulative plans never exceed the pool")
				}
			}
		})
	}
}

func TestPlan_SharedSubtreeScoredOnce(t *testing.T) {
	tr := tree.New()
	require.NoError(t, tr.AddNode(tree.Node{ID: "shared", Kind: domain.KindLeaf, Cost: 5, Resources: map[string]int{"cpu": 1}}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "altA", Kind: domain.KindLeaf, Cost: 100}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "altB", Kind: domain.KindLeaf, Cost: 100}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "left", Kind: domain.KindOr, Children: ids("shared", "altA")}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "right", Kind: domain.KindOr, Children: ids("shared", "altB")}))
	require.NoError(t, tr.AddNode(tree.Node{ID: "root", Kind: domain.KindAnd, Children: ids("left", "right")}))

	res, err := newPlanner(t, nil).Plan(context.Background(), tr, "root", resource.Pool{"cpu": 4})
	require.NoError(t, err)

	assert.Equal(t, 5.0, res.Cost)
	assert.Equal(t, ids("left", "right", "shared"), res.Sequence)
	assert.Equal(t, resource.Usage{"cpu": 1}, res.ResourceUsage)
}

func TestPlan_LeafRoot(t *testing.T) {
	tr := tree.New()
	require.NoError(t, tr.AddNode(tree.Node{ID: "solo", Kind: domain.KindLeaf, Cost: 5, Risk: 0.1, Resources: map[string]int{"cpu": 1}}))
	rec := trace.NewMemory(0)

	res, err := newPlanner(t, nil, WithRecorder(rec)).Plan(context.Background(), tr, "solo", resource.Pool{"cpu": 1})
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrNoFeasiblePlan)

	var planErr *PlanningError
	require.ErrorAs(t, err, &planErr)
	assert.Equal(t, domain.NodeID("solo"), planErr.Root)
	assert.Zero(t, planErr.Expansions)
	assert.Empty(t, rec.Filter(trace.EventAccept), "a leaf root is never scored")
	assert.Len(t, rec.Filter(trace.EventExhausted), 1)
}

func TestPlan_EmptyAndRoot(t *testing.T) {
	tr := tree.New()
	require.NoError(t, tr.AddNode(tree.Node{ID: "root", Kind: domain.KindAnd}))

	_, err := newPlanner(t, nil).Plan(context.Background(), tr, "root", resource.Pool{})
	assert.ErrorIs(t, err, ErrNoFeasiblePlan)
}

func TestPlan_StructuralErrorsFailFast(t *testing.T) {
	cyclic, err := tree.FromNodes([]tree.Node{
		{ID: "a", Kind: domain.KindAnd, Children: ids("b")},
		{ID: "b", Kind: domain.KindOr, Children: ids("a")},
	})
	require.NoError(t, err)
	rec := trace.NewMemory(0)
	p := newPlanner(t, nil, WithRecorder(rec))

	_, err = p.Plan(context.Background(), cyclic, "a", resource.Pool{})
	var cycle *tree.CircularDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Empty(t, rec.Events(), "no search work before validation passes")

	_, err = p.Plan(context.Background(), missionTree(t, 0.4), "Nope", missionPool())
	var unknown *tree.UnknownNodeError
	assert.ErrorAs(t, err, &unknown)

	_, err = p.Plan(context.Background(), missionTree(t, 0.4), "Mission", resource.Pool{"cpu": -1})
	var invalid *resource.InvalidPoolError
	assert.ErrorAs(t, err, &invalid)
}

func TestPlan_ExpansionBudget(t *testing.T) {
	p := newPlanner(t, func(c *Config) { c.MaxExpansions = 2 })

	_, err := p.Plan(context.Background(), missionTree(t, 0.4), "Mission", missionPool())

	var budget *BudgetExceededError
	require.ErrorAs(t, err, &budget)
	assert.Equal(t, LimitExpansions, budget.Limit)
	assert.Equal(t, 2, budget.Expansions)
	assert.Equal(t, tperrors.ErrCodeBudgetExceeded, tperrors.CodeOf(err))
}

func TestPlan_ContextLimits(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()
	expired, cancelExpired := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancelExpired()

	tests := []struct {
		name      string
		ctx       context.Context
		wantLimit string
		wantCause error
	}{
		{"canceled", canceled, LimitCanceled, context.Canceled},
		{"deadline", expired, LimitTimeout, context.DeadlineExceeded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newPlanner(t, nil).Plan(tt.ctx, missionTree(t, 0.4), "Mission", missionPool())

			var budget *BudgetExceededError
			require.ErrorAs(t, err, &budget)
			assert.Equal(t, tt.wantLimit, budget.Limit)
			assert.True(t, errors.Is(err, tt.wantCause))
		})
	}
}

func TestPlan_ParallelMatchesSequential(t *testing.T) {
	wide := tree.New()
	var alts []domain.NodeID
	for i, cost := range []float64{40, 12, 33, 12, 50, 7, 90, 7} {
		id := domain.NodeID("alt" + string(rune('A'+i)))
		require.NoError(t, wide.AddNode(tree.Node{ID: id, Kind: domain.KindLeaf, Cost: cost, Risk: float64(i) / 10, Resources: map[string]int{"cpu": i % 2}}))
		alts = append(alts, id)
	}
	require.NoError(t, wide.AddNode(tree.Node{ID: "choice", Kind: domain.KindOr, Children: alts}))
	require.NoError(t, wide.AddNode(tree.Node{ID: "root", Kind: domain.KindAnd, Children: ids("choice")}))
	pool := resource.Pool{"cpu": 1}

	seq, err := newPlanner(t, nil).Plan(context.Background(), wide, "root", pool)
	require.NoError(t, err)
	par, err := newPlanner(t, func(c *Config) { c.Parallelism = 4 }).Plan(context.Background(), wide, "root", pool)
	require.NoError(t, err)

	if diff := cmp.Diff(seq, par, ignoreRunFields); diff != "" {
		t.Errorf("parallel result differs (-sequential +parallel):\n%s", diff)
	}
	assert.Equal(t, ids("choice", "altF"), par.Sequence, "equal-cost tie goes to the earlier alternative")
}

func TestPlan_Cache(t *testing.T) {
	_, m := metrics.NewRegistry()
	p := newPlanner(t, func(c *Config) { c.CacheSize = 4 }, WithMetrics(m))
	tr := missionTree(t, 0.4)

	first, err := p.Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)
	second, err := p.Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.NotEqual(t, first.RunID, second.RunID)
	if diff := cmp.Diff(first, second, ignoreRunFields); diff != "" {
		t.Errorf("cached result differs:\n%s", diff)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheMisses))

	// a different pool is a different key
	third, err := p.Plan(context.Background(), tr, "Mission", resource.Pool{"cpu": 7, "memory": 16384, "gpu": 1})
	require.NoError(t, err)
	assert.False(t, third.Cached)

	// mutating the returned result must not leak into the cache
	second.Sequence[0] = "tampered"
	again, err := p.Plan(context.Background(), tr, "Mission", missionPool())
	require.NoError(t, err)
	assert.Equal(t, domain.NodeID("AcquireData"), again.Sequence[0])
}

func TestPlan_Metrics(t *testing.T) {
	_, m := metrics.NewRegistry()
	p := newPlanner(t, nil, WithMetrics(m))

	_, err := p.Plan(context.Background(), missionTree(t, 0.9), "Mission", missionPool())
	require.NoError(t, err)
	_, err = p.Plan(context.Background(), missionTree(t, 0.4), "Mission", resource.Pool{"memory": 500})
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanRuns.WithLabelValues(OutcomeSuccess)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PlanRuns.WithLabelValues(OutcomeInfeasible)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OptionsRejected.WithLabelValues(metrics.ReasonRisk)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("PLAN-001", "planner")))
}

func TestPlan_TraceEvents(t *testing.T) {
	rec := trace.NewMemory(0)
	p := newPlanner(t, nil, WithRecorder(rec))

	res, err := p.Plan(context.Background(), missionTree(t, 0.4), "Mission", missionPool())
	require.NoError(t, err)

	events := rec.Events()
	require.NotEmpty(t, events)
	assert.Equal(t, trace.EventRunStart, events[0].Type)
	assert.Equal(t, trace.EventRunEnd, events[len(events)-1].Type)
	assert.Equal(t, res.RunID, events[0].RunID)
	assert.Len(t, rec.Filter(trace.EventImprove), 1)
	assert.Len(t, rec.Filter(trace.EventPrune), 1, "the Sensor branch is pruned once a cheaper plan exists")
	assert.Equal(t, 6, res.Expansions)
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"risk above one", func(c *Config) { c.RiskCeiling = 1.5 }, "risk_ceiling"},
		{"negative risk", func(c *Config) { c.RiskCeiling = -0.1 }, "risk_ceiling"},
		{"unknown accounting", func(c *Config) { c.Accounting = 9 }, "accounting"},
		{"negative expansions", func(c *Config) { c.MaxExpansions = -1 }, "max_expansions"},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }, "timeout"},
		{"zero parallelism", func(c *Config) { c.Parallelism = 0 }, "parallelism"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			_, err := New(cfg)

			var cfgErr *ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
			assert.Equal(t, tperrors.ErrCodeInvalidConfig, tperrors.CodeOf(err))
		})
	}
}

func TestParseAccounting(t *testing.T) {
	a, err := ParseAccounting("Cumulative")
	require.NoError(t, err)
	assert.Equal(t, AccountingCumulative, a)

	var b Accounting
	require.NoError(t, b.UnmarshalText([]byte("snapshot")))
	assert.Equal(t, AccountingSnapshot, b)

	_, err = ParseAccounting("greedy")
	assert.Error(t, err)
}
