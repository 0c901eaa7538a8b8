package backtest

import (
	"container/heap"
	"errors"
	"sync"

	"github.com/JP-Fernando/trading-tool/internal/event"
)

// ErrEmptyQueue is returned by Pop when no events remain.
var ErrEmptyQueue = errors.New("backtest: pop from empty queue")

// entry pairs an event with the monotonic sequence assigned at push time.
// The sequence breaks timestamp ties so that pop order is a stable function
// of push order.
type entry struct {
	ev  event.Event
	seq uint64
}

type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }

func (h entryHeap) Less(i, j int) bool {
	if h[i].ev.Ts() != h[j].ev.Ts() {
		return h[i].ev.Ts() < h[j].ev.Ts()
	}
	return h[i].seq < h[j].seq
}

func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *entryHeap) Push(x any) { *h = append(*h, x.(entry)) }

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = entry{}
	*h = old[:n-1]
	return e
}

// Queue is a chronological priority queue feeding the backtest engine.
// Total order is (timestamp ascending, push sequence ascending), so an
// identical push sequence always yields an identical pop sequence.
type Queue struct {
	mu      sync.Mutex
	entries entryHeap
	nextSeq uint64
}

// NewQueue creates an empty event queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push enqueues an event, stamping it with the next insertion sequence.
func (q *Queue) Push(ev event.Event) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(&q.entries, entry{ev: ev, seq: q.nextSeq})
	q.nextSeq++
}

// Pop removes and returns the chronologically next event.
func (q *Queue) Pop() (event.Event, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.entries) == 0 {
		return nil, ErrEmptyQueue
	}
	e := heap.Pop(&q.entries).(entry)
	return e.ev, nil
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Empty reports whether the queue holds no events.
func (q *Queue) Empty() bool {
	return q.Len() == 0
}
