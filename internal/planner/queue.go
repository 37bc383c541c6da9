package planner

import (
	"container/heap"
)

type entry struct {
	cost  float64
	seq   uint64
	state *state
}

// frontier is a min-heap on (cost, seq). seq is unique per entry, so the order
// is total and equal-cost states pop in insertion order.
type frontier []*entry

func (f frontier) Len() int { return len(f) }

func (f frontier) Less(i, j int) bool {
	if f[i].cost != f[j].cost {
		return f[i].cost < f[j].cost
	}
	return f[i].seq < f[j].seq
}

func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*entry)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return e
}

type queue struct {
	h    frontier
	seq  uint64
	peak int
}

func (q *queue) push(cost float64, st *state) {
	heap.Push(&q.h, &entry{cost: cost, seq: q.seq, state: st})
	q.seq++
	if len(q.h) > q.peak {
		q.peak = len(q.h)
	}
}

func (q *queue) pop() *entry {
	return heap.Pop(&q.h).(*entry)
}

func (q *queue) len() int {
	return len(q.h)
}
