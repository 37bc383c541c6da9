package planner

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/taskplan/internal/domain"
	"github.com/felixgeelhaar/taskplan/internal/log"
	"github.com/felixgeelhaar/taskplan/internal/metrics"
	"github.com/felixgeelhaar/taskplan/internal/resource"
	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/tree"
)

// state is a partial plan. States are never mutated once queued; children get
// fresh copies.
type state struct {
	// agenda holds nodes committed to but not yet decomposed, in order
	agenda []domain.NodeID
	// chosen holds the scored nodes in commit order
	chosen []domain.NodeID
	// planned holds every node this plan has already accounted for
	planned map[domain.NodeID]struct{}

	usage resource.Usage
	cost  float64
	risk  float64
}

// unplanned drops the nodes this plan already accounted for, so a subtree
// shared by two parents is scored once per plan
func (st *state) unplanned(option []domain.NodeID) []domain.NodeID {
	out := make([]domain.NodeID, 0, len(option))
	for _, id := range option {
		if _, ok := st.planned[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (st *state) extend(option []domain.NodeID, ev Evaluation, rest []domain.NodeID, cost, risk float64) *state {
	child := &state{
		agenda:  make([]domain.NodeID, 0, len(ev.Scored)+len(rest)),
		chosen:  make([]domain.NodeID, 0, len(st.chosen)+len(ev.Scored)),
		planned: make(map[domain.NodeID]struct{}, len(st.planned)+len(option)),
		usage:   st.usage.Clone(),
		cost:    cost,
		risk:    risk,
	}
	child.agenda = append(append(child.agenda, ev.Scored...), rest...)
	child.chosen = append(append(child.chosen, st.chosen...), ev.Scored...)
	for id := range st.planned {
		child.planned[id] = struct{}{}
	}
	for _, id := range option {
		child.planned[id] = struct{}{}
	}
	child.usage.Merge(ev.Usage)
	return child
}

// search holds the state of a single run
type search struct {
	tree     *tree.Tree
	root     domain.NodeID
	pool     resource.Pool
	cfg      Config
	runID    string
	logger   *log.Logger
	recorder trace.Recorder
	metrics  *metrics.Metrics
	now      func() time.Time
	start    time.Time

	queue queue
	best  *state

	expansions     int
	conflicts      int
	riskRejections int
	lastConflict   *resource.ConflictError
}

func (s *search) run(ctx context.Context) (*Result, error) {
	s.record(trace.Event{Type: trace.EventRunStart, Node: s.root.String()})

	// A leaf root never decomposes, so it leaves nothing to search and the
	// run ends as infeasible.
	if rootNode, _ := s.tree.Node(s.root); !rootNode.IsLeaf() {
		s.queue.push(0, &state{
			agenda:  []domain.NodeID{s.root},
			planned: map[domain.NodeID]struct{}{s.root: {}},
			usage:   resource.Usage{},
		})
	}

	for s.queue.len() > 0 {
		if err := s.checkBudget(ctx); err != nil {
			s.record(trace.Event{Type: trace.EventRunEnd, Reason: err.Error()})
			return nil, err
		}

		e := s.queue.pop()
		s.expansions++
		st := e.state

		if s.best != nil && e.cost >= s.best.cost {
			s.prune(e.cost)
			continue
		}

		head, rest, ok := s.nextComposite(st.agenda)
		if !ok {
			s.best = st
			s.record(trace.Event{Type: trace.EventImprove, Option: idStrings(st.chosen), Cost: st.cost, Risk: st.risk})
			s.logger.Debug("plan improved", "cost", st.cost, "risk", st.risk, "nodes", len(st.chosen))
			continue
		}

		capacity := s.capacity(st)
		options, err := s.tree.Decompose(head, capacity)
		if err != nil {
			return nil, err
		}
		s.record(trace.Event{Type: trace.EventExpand, Node: head.String(), Cost: st.cost, Risk: st.risk})
		s.logger.Debug("expanding",
			"node", head.String(),
			"options", len(options),
			"cost", st.cost,
			"frontier", s.queue.len())

		if len(options) == 0 {
			s.deadEnd(head, capacity)
			continue
		}
		if err := s.expand(st, head, rest, options); err != nil {
			return nil, err
		}
	}

	if s.best == nil {
		err := &PlanningError{
			Root:           s.root,
			Expansions:     s.expansions,
			Conflicts:      s.conflicts,
			RiskRejections: s.riskRejections,
			LastConflict:   s.lastConflict,
		}
		s.record(trace.Event{Type: trace.EventExhausted, Reason: err.Error()})
		return nil, err
	}

	s.record(trace.Event{Type: trace.EventRunEnd, Option: idStrings(s.best.chosen), Cost: s.best.cost, Risk: s.best.risk})
	return &Result{
		Root:          s.root,
		Sequence:      append([]domain.NodeID(nil), s.best.chosen...),
		ResourceUsage: s.best.usage.Clone(),
		Cost:          s.best.cost,
		RiskFactor:    s.best.risk,
		Expansions:    s.expansions,
	}, nil
}

// nextComposite skips the leaves at the head of the agenda. Leaves were scored
// when their parent's option was accepted, so visiting them adds nothing.
func (s *search) nextComposite(agenda []domain.NodeID) (domain.NodeID, []domain.NodeID, bool) {
	for i, id := range agenda {
		if n, _ := s.tree.Node(id); !n.IsLeaf() {
			return id, agenda[i+1:], true
		}
	}
	return "", nil, false
}

func (s *search) capacity(st *state) resource.Pool {
	if s.cfg.Accounting == AccountingCumulative {
		return s.pool.Remaining(st.usage)
	}
	return s.pool
}

type scoredOption struct {
	ev       Evaluation
	conflict *resource.ConflictError
}

// expand scores the options of head and queues every acceptable one
func (s *search) expand(st *state, head domain.NodeID, rest []domain.NodeID, options [][]domain.NodeID) error {
	capacity := s.capacity(st)
	trimmed := make([][]domain.NodeID, len(options))
	for i, opt := range options {
		trimmed[i] = st.unplanned(opt)
	}

	scored, err := s.evaluateAll(trimmed, capacity)
	if err != nil {
		return err
	}

	for i, sc := range scored {
		option := idStrings(options[i])
		if sc.conflict != nil {
			s.conflicts++
			s.lastConflict = sc.conflict
			s.reject(head, option, metrics.ReasonConflict, sc.conflict.Error())
			continue
		}

		risk := max(st.risk, sc.ev.Risk)
		if risk > s.cfg.RiskCeiling {
			s.riskRejections++
			s.reject(head, option, metrics.ReasonRisk, fmt.Sprintf("risk %.2f exceeds ceiling %.2f", risk, s.cfg.RiskCeiling))
			continue
		}

		total := st.cost + sc.ev.Cost
		if s.best != nil && total >= s.best.cost {
			s.prune(total)
			continue
		}

		s.queue.push(total, st.extend(trimmed[i], sc.ev, rest, total, risk))
		s.record(trace.Event{Type: trace.EventAccept, Node: head.String(), Option: option, Cost: total, Risk: risk})
	}
	return nil
}

// evaluateAll scores every option, concurrently when configured. Results are
// returned in option order so the queue sees the same insertion sequence
// regardless of parallelism.
func (s *search) evaluateAll(options [][]domain.NodeID, capacity resource.Pool) ([]scoredOption, error) {
	out := make([]scoredOption, len(options))
	score := func(i int) error {
		ev, err := Evaluate(s.tree, options[i], capacity)
		var conflict *resource.ConflictError
		switch {
		case err == nil:
			out[i].ev = ev
		case stderrors.As(err, &conflict):
			out[i].conflict = conflict
		default:
			return err
		}
		return nil
	}

	if s.cfg.Parallelism <= 1 || len(options) < 2 {
		for i := range options {
			if err := score(i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.Parallelism)
	for i := range options {
		g.Go(func() error { return score(i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// deadEnd records why a composite produced no options
func (s *search) deadEnd(head domain.NodeID, capacity resource.Pool) {
	n, _ := s.tree.Node(head)
	for _, child := range n.Children {
		var conflict *resource.ConflictError
		if stderrors.As(s.tree.Feasible(child, capacity), &conflict) {
			s.conflicts++
			s.lastConflict = conflict
			s.reject(head, []string{child.String()}, metrics.ReasonConflict, conflict.Error())
		}
	}
}

func (s *search) checkBudget(ctx context.Context) error {
	if s.cfg.MaxExpansions > 0 && s.expansions >= s.cfg.MaxExpansions {
		return &BudgetExceededError{Limit: LimitExpansions, Expansions: s.expansions, Elapsed: s.now().Sub(s.start)}
	}
	if err := ctx.Err(); err != nil {
		limit := LimitCanceled
		if stderrors.Is(err, context.DeadlineExceeded) {
			limit = LimitTimeout
		}
		return &BudgetExceededError{Limit: limit, Expansions: s.expansions, Elapsed: s.now().Sub(s.start), Cause: err}
	}
	return nil
}

func (s *search) reject(head domain.NodeID, option []string, reason, detail string) {
	if s.metrics != nil {
		s.metrics.OptionsRejected.WithLabelValues(reason).Inc()
	}
	s.record(trace.Event{Type: trace.EventReject, Node: head.String(), Option: option, Rule: reason, Reason: detail})
}

func (s *search) prune(cost float64) {
	if s.metrics != nil {
		s.metrics.OptionsRejected.WithLabelValues(metrics.ReasonPruned).Inc()
	}
	s.record(trace.Event{Type: trace.EventPrune, Cost: cost, Rule: metrics.ReasonPruned, Reason: fmt.Sprintf("not cheaper than best plan %.2f", s.best.cost)})
}

func (s *search) record(e trace.Event) {
	e.RunID = s.runID
	s.recorder.Record(e)
}

func idStrings(ids []domain.NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
