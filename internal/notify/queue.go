package notify

import (
	"errors"
	"sync"
)

// DefaultQueueCapacity bounds pending notifications so a burst of stage
// changes cannot grow memory without limit.
const DefaultQueueCapacity = 256

// ErrQueueFull indicates the queue is at capacity. Producers treat this as a
// delivery-pipeline degradation, not a workflow failure.
var ErrQueueFull = errors.New("notification queue full")

// Queue is a bounded concurrent-safe FIFO of pending notification jobs.
// Multiple producers may enqueue concurrently; order is preserved per
// producer. The backing slice is never exposed.
type Queue struct {
	mu       sync.Mutex
	jobs     []*Job
	capacity int
	wake     chan struct{}
}

// NewQueue constructs a queue bounded at capacity. A non-positive capacity
// falls back to DefaultQueueCapacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}
	return &Queue{
		capacity: capacity,
		wake:     make(chan struct{}, 1),
	}
}

// Enqueue appends a job without blocking. It fails with ErrQueueFull when the
// capacity bound is reached.
func (q *Queue) Enqueue(job *Job) error {
	if job == nil {
		return errors.New("job is nil")
	}
	q.mu.Lock()
	if len(q.jobs) >= q.capacity {
		q.mu.Unlock()
		return ErrQueueFull
	}
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Dequeue removes and returns the oldest pending job without blocking.
func (q *Queue) Dequeue() (*Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.jobs) == 0 {
		return nil, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, true
}

// Wake returns a channel that receives a signal after enqueues. The signal is
// coalesced; consumers must still drain the queue fully and keep a periodic
// fallback sweep for missed wake-ups.
func (q *Queue) Wake() <-chan struct{} {
	return q.wake
}

// Len reports the number of pending jobs.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
