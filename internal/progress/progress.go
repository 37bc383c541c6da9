// Package progress shows a planning run's search as it happens.
package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskplan/internal/trace"
)

// Indicator renders search progress. It implements trace.Recorder, so it can
// be attached to a planner next to any other recorder.
type Indicator struct {
	writer      io.Writer
	startTime   time.Time
	mu          sync.Mutex
	showSpinner bool
	spinnerIdx  int
	stopChan    chan struct{}
	stopOnce    sync.Once // Ensures Stop() is only called once
	isCI        bool

	stats Stats
}

// Stats counts search decisions seen so far
type Stats struct {
	Decompositions int
	Accepted       int
	Rejected       int
	Pruned         int

	// BestCost is the cost of the cheapest complete plan; valid when HasPlan
	BestCost float64
	HasPlan  bool

	// Node is the composite most recently decomposed
	Node string
}

// Config holds configuration for progress indicator
type Config struct {
	Writer      io.Writer
	ShowSpinner bool
	IsCI        bool // Set to true in CI/CD environments to disable fancy output
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// NewIndicator creates a new progress indicator
func NewIndicator(cfg Config) *Indicator {
	if cfg.Writer == nil {
		cfg.Writer = os.Stderr
	}

	// Auto-detect CI environment
	if !cfg.IsCI {
		cfg.IsCI = os.Getenv("CI") == "true" || os.Getenv("GITHUB_ACTIONS") == "true"
	}

	return &Indicator{
		writer:      cfg.Writer,
		startTime:   time.Now(),
		showSpinner: cfg.ShowSpinner && !cfg.IsCI,
		stopChan:    make(chan struct{}),
		isCI:        cfg.IsCI,
	}
}

// Start begins the progress indicator display
func (p *Indicator) Start() {
	if p.showSpinner {
		go p.spinnerLoop()
	}
}

// Stop stops the progress indicator
func (p *Indicator) Stop() {
	p.stopOnce.Do(func() {
		if p.showSpinner {
			close(p.stopChan)
			// Clear spinner line
			p.mu.Lock()
			fmt.Fprintf(p.writer, "\r%s\r", strings.Repeat(" ", 80))
			p.mu.Unlock()
		}
	})
}

// Stats returns a snapshot of the counters
func (p *Indicator) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// Record implements trace.Recorder
func (p *Indicator) Record(e trace.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Type {
	case trace.EventExpand:
		p.stats.Decompositions++
		p.stats.Node = e.Node
	case trace.EventAccept:
		p.stats.Accepted++
	case trace.EventReject:
		p.stats.Rejected++
	case trace.EventPrune:
		p.stats.Pruned++
	case trace.EventImprove:
		p.stats.BestCost = e.Cost
		p.stats.HasPlan = true
	}

	// In CI mode, print milestones immediately
	if p.isCI {
		p.printEvent(e)
	}
}

// spinnerLoop runs the spinner animation
func (p *Indicator) spinnerLoop() {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopChan:
			return
		case <-ticker.C:
			p.mu.Lock()
			p.renderProgress()
			p.spinnerIdx = (p.spinnerIdx + 1) % len(spinnerFrames)
			p.mu.Unlock()
		}
	}
}

// renderProgress renders the current status line
func (p *Indicator) renderProgress() {
	fmt.Fprint(p.writer, "\r"+p.statusLine())
}

func (p *Indicator) statusLine() string {
	best := "none yet"
	if p.stats.HasPlan {
		best = fmt.Sprintf("%g", p.stats.BestCost)
	}
	return fmt.Sprintf("%s planning | %d decomposed | ✓ %d | ✗ %d | pruned %d | best %s | %s",
		spinnerFrames[p.spinnerIdx],
		p.stats.Decompositions,
		p.stats.Accepted,
		p.stats.Rejected,
		p.stats.Pruned,
		best,
		formatDuration(time.Since(p.startTime)),
	)
}

// printEvent prints a search milestone in CI-friendly format
func (p *Indicator) printEvent(e trace.Event) {
	switch e.Type {
	case trace.EventExpand:
		fmt.Fprintf(p.writer, "▶ decompose %s (partial cost %g)\n", e.Node, e.Cost)
	case trace.EventImprove:
		fmt.Fprintf(p.writer, "✓ plan found, cost %g, risk %.2f\n", e.Cost, e.Risk)
	case trace.EventExhausted:
		fmt.Fprintf(p.writer, "✗ %s\n", e.Reason)
	}
}

// PrintSummary prints the final search summary
func (p *Indicator) PrintSummary() {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintln(p.writer, "───────────────────────────────────────────────")
	fmt.Fprintf(p.writer, "Decomposed:      %d\n", p.stats.Decompositions)
	fmt.Fprintf(p.writer, "Options:         %d accepted ✓, %d rejected ✗\n", p.stats.Accepted, p.stats.Rejected)
	fmt.Fprintf(p.writer, "Pruned:          %d\n", p.stats.Pruned)
	if p.stats.HasPlan {
		fmt.Fprintf(p.writer, "Best cost:       %g\n", p.stats.BestCost)
	}
	fmt.Fprintf(p.writer, "Total time:      %s\n", formatDuration(time.Since(p.startTime)))
	fmt.Fprintln(p.writer, "───────────────────────────────────────────────")
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
