// Package explain reconstructs why a planning run chose its plan, or failed
// to find one, from the events it recorded.
package explain

import (
	"bufio"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"os"

	"github.com/felixgeelhaar/taskplan/internal/errors"
	"github.com/felixgeelhaar/taskplan/internal/trace"
)

// Run outcomes
const (
	OutcomePlanned    = "planned"
	OutcomeInfeasible = "infeasible"
	OutcomeStopped    = "stopped"
	OutcomeIncomplete = "incomplete"
)

// Explanation contains the complete explanation for one planning run
type Explanation struct {
	RunID   string `json:"runId" yaml:"run_id"`
	Root    string `json:"root" yaml:"root"`
	Outcome string `json:"outcome" yaml:"outcome"`

	// Plan, Cost and Risk describe the selected plan when Outcome is planned
	Plan []string `json:"plan,omitempty" yaml:"plan,omitempty"`
	Cost float64  `json:"cost" yaml:"cost"`
	Risk float64  `json:"risk" yaml:"risk"`

	// Reason is the terminal error of a run without a plan
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`

	// Per-expansion decisions, in search order
	Steps []Decision `json:"steps" yaml:"steps"`

	Summary Summary `json:"summary" yaml:"summary"`
}

// Decision explains what happened when one composite was decomposed
type Decision struct {
	Node string `json:"node" yaml:"node"`

	// Cost and Risk of the partial plan being extended
	Cost float64 `json:"cost" yaml:"cost"`
	Risk float64 `json:"risk" yaml:"risk"`

	Accepted []Option `json:"accepted,omitempty" yaml:"accepted,omitempty"`
	Rejected []Option `json:"rejected,omitempty" yaml:"rejected,omitempty"`
}

// Option is one decomposition option and its fate
type Option struct {
	Nodes  []string `json:"nodes" yaml:"nodes"`
	Cost   float64  `json:"cost,omitempty" yaml:"cost,omitempty"`
	Risk   float64  `json:"risk,omitempty" yaml:"risk,omitempty"`
	Rule   string   `json:"rule,omitempty" yaml:"rule,omitempty"`
	Reason string   `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// Summary provides aggregate statistics
type Summary struct {
	// Decompositions counts composites expanded
	Decompositions int `json:"decompositions" yaml:"decompositions"`

	Accepted int `json:"accepted" yaml:"accepted"`

	// Rejected counts discarded options by rule
	Rejected map[string]int `json:"rejected" yaml:"rejected"`

	// Pruned counts partial plans dropped for not beating the best plan
	Pruned int `json:"pruned" yaml:"pruned"`

	// Improvements counts complete plans found, the last being selected
	Improvements int `json:"improvements" yaml:"improvements"`
}

// Load reads a JSON-lines trace written by trace.JSONL
func Load(path string) ([]trace.Event, error) {
	f, err := os.Open(path)
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return nil, errors.NewFileNotFoundError(path)
		}
		return nil, errors.NewFileReadError(path, err)
	}
	defer f.Close()

	events, err := Read(f)
	if err != nil {
		return nil, errors.NewFileUnmarshalError(path, "JSONL", err)
	}
	return events, nil
}

// Read decodes one event per line. Blank lines are skipped.
func Read(r io.Reader) ([]trace.Event, error) {
	var events []trace.Event
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(data) == 0 {
			continue
		}
		var e trace.Event
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		events = append(events, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Explain builds the explanation of the last run in events
func Explain(events []trace.Event) (*Explanation, error) {
	events = lastRun(events)
	if len(events) == 0 {
		return nil, fmt.Errorf("trace contains no events")
	}

	x := &Explanation{
		RunID:   events[0].RunID,
		Outcome: OutcomeIncomplete,
		Summary: Summary{Rejected: map[string]int{}},
	}

	// decision returns the step for node, opening one when the events for a
	// node arrive without an expand, as in a trace cut off at its start
	decision := func(node string) *Decision {
		if n := len(x.Steps); n > 0 && x.Steps[n-1].Node == node {
			return &x.Steps[n-1]
		}
		x.Steps = append(x.Steps, Decision{Node: node})
		return &x.Steps[len(x.Steps)-1]
	}

	for _, e := range events {
		switch e.Type {
		case trace.EventRunStart:
			x.Root = e.Node
		case trace.EventExpand:
			x.Summary.Decompositions++
			x.Steps = append(x.Steps, Decision{Node: e.Node, Cost: e.Cost, Risk: e.Risk})
		case trace.EventAccept:
			x.Summary.Accepted++
			d := decision(e.Node)
			d.Accepted = append(d.Accepted, Option{Nodes: e.Option, Cost: e.Cost, Risk: e.Risk})
		case trace.EventReject:
			x.Summary.Rejected[e.Rule]++
			d := decision(e.Node)
			d.Rejected = append(d.Rejected, Option{Nodes: e.Option, Rule: e.Rule, Reason: e.Reason})
		case trace.EventPrune:
			x.Summary.Pruned++
		case trace.EventImprove, trace.EventComplete:
			x.Summary.Improvements++
		case trace.EventExhausted:
			x.Outcome = OutcomeInfeasible
			x.Reason = e.Reason
		case trace.EventRunEnd:
			if len(e.Option) > 0 {
				x.Outcome = OutcomePlanned
				x.Plan = e.Option
				x.Cost = e.Cost
				x.Risk = e.Risk
			} else {
				x.Outcome = OutcomeStopped
				x.Reason = e.Reason
			}
		}
	}
	return x, nil
}

// lastRun keeps the events of the final run id in events
func lastRun(events []trace.Event) []trace.Event {
	if len(events) == 0 {
		return nil
	}
	id := events[len(events)-1].RunID
	start := len(events)
	for start > 0 && events[start-1].RunID == id {
		start--
	}
	return events[start:]
}

// Rejected returns every rejected option, in search order
func (x *Explanation) Rejected() []Option {
	var out []Option
	for _, d := range x.Steps {
		out = append(out, d.Rejected...)
	}
	return out
}
