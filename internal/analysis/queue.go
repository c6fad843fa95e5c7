package analysis

import (
	"sync"
)

// job is one network awaiting analysis. Slot is its index in the report list.
type job struct {
	Slot     int
	Database string
}

// Queue implements a thread-safe FIFO of networks with deduplication
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []job
	seen    map[string]bool
	stopped bool
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	q := &Queue{
		items: make([]job, 0),
		seen:  make(map[string]bool),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push adds a job unless its database was queued before or the queue is stopped.
// Returns true if added.
func (q *Queue) Push(j job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.stopped || q.seen[j.Database] {
		return false
	}

	q.seen[j.Database] = true
	q.items = append(q.items, j)
	q.cond.Signal()
	return true
}

// Pop removes and returns the first job, blocking while the queue is empty
// and not stopped. Returns false once stopped and drained.
func (q *Queue) Pop() (job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.items) > 0 {
			j := q.items[0]
			q.items = q.items[1:]
			return j, true
		}

		if q.stopped {
			return job{}, false
		}

		q.cond.Wait()
	}
}

// Size returns the number of queued jobs
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Stop rejects further pushes. Workers drain remaining jobs, then Pop returns false.
func (q *Queue) Stop() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.stopped = true
	q.cond.Broadcast()
}
