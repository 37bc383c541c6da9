package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Memory keeps events in memory, numbering them as they arrive.
// Once Limit events are held further events are counted but dropped.
type Memory struct {
	mu      sync.Mutex
	events  []Event
	dropped int
	limit   int
	now     func() time.Time
}

// NewMemory creates an in-memory recorder; limit <= 0 means unbounded
func NewMemory(limit int) *Memory {
	return &Memory{limit: limit, now: time.Now}
}

func (m *Memory) Record(e Event) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.limit > 0 && len(m.events) >= m.limit {
		m.dropped++
		return
	}
	e.Seq = len(m.events) + 1
	if e.Timestamp.IsZero() {
		e.Timestamp = m.now()
	}
	m.events = append(m.events, e)
}

// Events returns a copy of the recorded events
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}

// Dropped returns how many events exceeded the limit
func (m *Memory) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Filter returns the recorded events of the given type
func (m *Memory) Filter(t EventType) []Event {
	var out []Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// JSONL writes each event as one JSON line
type JSONL struct {
	mu     sync.Mutex
	enc    *json.Encoder
	closer io.Closer
	seq    int
	err    error
}

// NewJSONL writes events to w
func NewJSONL(w io.Writer) *JSONL {
	j := &JSONL{enc: json.NewEncoder(w)}
	if c, ok := w.(io.Closer); ok {
		j.closer = c
	}
	return j
}

// CreateJSONL truncates or creates path and writes events to it
func CreateJSONL(path string) (*JSONL, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create trace file: %w", err)
	}
	return NewJSONL(f), nil
}

// Record writes e. The first write error is kept and later events are skipped.
func (j *JSONL) Record(e Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.err != nil {
		return
	}
	j.seq++
	e.Seq = j.seq
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	j.err = j.enc.Encode(e)
}

// Err returns the first write error
func (j *JSONL) Err() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.err
}

// Close closes the underlying writer when it is closable
func (j *JSONL) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.closer == nil {
		return j.err
	}
	if err := j.closer.Close(); err != nil {
		return err
	}
	return j.err
}
