// Package metrics exposes Prometheus instrumentation for planning runs, the CLI
// and the plan server.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rejection reasons recorded by the planner
const (
	ReasonConflict = "resource_conflict"
	ReasonRisk     = "risk_ceiling"
	ReasonPruned   = "pruned"
)

// Metrics holds all Prometheus metrics for taskplan
type Metrics struct {
	// Planning runs
	PlanRuns       *prometheus.CounterVec
	PlanDuration   *prometheus.HistogramVec
	PlanExpansions prometheus.Histogram
	PlanCost       prometheus.Histogram
	PlanSize       prometheus.Histogram

	// Search internals
	OptionsRejected *prometheus.CounterVec
	FrontierPeak    prometheus.Gauge

	// Result cache
	CacheHits   prometheus.Counter
	CacheMisses prometheus.Counter

	// Command execution
	CommandExecutions *prometheus.CounterVec
	CommandDuration   *prometheus.HistogramVec

	// Plan server
	HTTPRequests *prometheus.CounterVec

	// Errors by structured error code
	Errors *prometheus.CounterVec
}

// NewMetrics creates a Metrics instance registered with registry
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		PlanRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_plan_runs_total",
				Help: "Total number of planning runs by outcome",
			},
			[]string{"outcome"},
		),
		PlanDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskplan_plan_duration_seconds",
				Help:    "Planning run duration in seconds",
				Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
			[]string{"outcome"},
		),
		PlanExpansions: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taskplan_plan_expansions",
				Help:    "Search states expanded per planning run",
				Buckets: prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		PlanCost: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taskplan_plan_cost",
				Help:    "Total cost of accepted plans",
				Buckets: prometheus.ExponentialBuckets(1, 2, 16),
			},
		),
		PlanSize: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taskplan_plan_nodes",
				Help:    "Number of nodes in accepted plans",
				Buckets: prometheus.LinearBuckets(1, 4, 12),
			},
		),

		OptionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_options_rejected_total",
				Help: "Decomposition options discarded during search by reason",
			},
			[]string{"reason"},
		),
		FrontierPeak: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "taskplan_frontier_peak",
				Help: "Largest priority queue size seen by the most recent run",
			},
		),

		CacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "taskplan_cache_hits_total",
				Help: "Planning runs answered from the result cache",
			},
		),
		CacheMisses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "taskplan_cache_misses_total",
				Help: "Planning runs that missed the result cache",
			},
		),

		CommandExecutions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_command_executions_total",
				Help: "Total number of command executions",
			},
			[]string{"command", "success"},
		),
		CommandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "taskplan_command_duration_seconds",
				Help:    "Command execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_http_requests_total",
				Help: "Plan server requests by route and status code",
			},
			[]string{"route", "code"},
		),

		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taskplan_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code", "component"},
		),
	}
}

// ObserveRun records the outcome of one planning run
func (m *Metrics) ObserveRun(outcome string, elapsed time.Duration, expansions int) {
	m.PlanRuns.WithLabelValues(outcome).Inc()
	m.PlanDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	m.PlanExpansions.Observe(float64(expansions))
}

// ObservePlan records the shape of an accepted plan
func (m *Metrics) ObservePlan(cost float64, nodes int) {
	m.PlanCost.Observe(cost)
	m.PlanSize.Observe(float64(nodes))
}

// RecordError counts err's code for component
func (m *Metrics) RecordError(code, component string) {
	m.Errors.WithLabelValues(code, component).Inc()
}
