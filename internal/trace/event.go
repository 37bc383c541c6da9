// Package trace records the decisions a planning run makes so a plan can be
// explained after the fact.
package trace

import (
	"time"
)

// EventType identifies a search decision
type EventType string

const (
	EventRunStart  EventType = "run_start"
	EventExpand    EventType = "expand"
	EventAccept    EventType = "option_accepted"
	EventReject    EventType = "option_rejected"
	EventComplete  EventType = "plan_complete"
	EventImprove   EventType = "plan_improved"
	EventPrune     EventType = "pruned"
	EventExhausted EventType = "exhausted"
	EventRunEnd    EventType = "run_end"
)

// Event is one search decision
type Event struct {
	Seq       int       `json:"seq"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RunID     string    `json:"run_id"`

	// Node is the composite being expanded, when there is one
	Node string `json:"node,omitempty"`

	// Option lists the node ids of the decomposition option concerned
	Option []string `json:"option,omitempty"`

	Cost float64 `json:"cost"`
	Risk float64 `json:"risk"`

	// Rule names the check that discarded an option: resource_conflict,
	// risk_ceiling or pruned
	Rule string `json:"rule,omitempty"`

	// Reason explains rejections and terminal events
	Reason string `json:"reason,omitempty"`
}

// Recorder receives events from a planning run. Implementations must be safe
// for concurrent use because a server may run several plans at once.
type Recorder interface {
	Record(Event)
}

// Nop discards every event
type Nop struct{}

func (Nop) Record(Event) {}

// Multi fans events out to several recorders in order
type Multi []Recorder

func (m Multi) Record(e Event) {
	for _, r := range m {
		r.Record(e)
	}
}
