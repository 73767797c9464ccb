package notify

import (
	"context"
	"errors"
	"sync"
	"time"

	"gigflow/internal/metrics"
	"gigflow/utils"
)

var (
	// ErrQueueFull is returned by Publish when every slot is taken.
	ErrQueueFull = errors.New("notify: queue is full")
	// ErrQueueClosed is returned by Publish after Shutdown.
	ErrQueueClosed = errors.New("notify: queue is closed")
)

// Publisher accepts events for asynchronous delivery.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// HandlerFunc consumes one event on a worker goroutine.
type HandlerFunc func(ctx context.Context, ev Event)

// Queue is a bounded in-process channel drained by a fixed set of workers.
// Publish never blocks: when the buffer is full the event is dropped.
type Queue struct {
	handle  HandlerFunc
	timeout time.Duration
	events  chan Event
	wg      sync.WaitGroup

	mu     sync.RWMutex
	closed bool
}

// NewQueue starts workers goroutines that pass each event to handle with a
// context bounded by timeout.
func NewQueue(handle HandlerFunc, workers, size int, timeout time.Duration) *Queue {
	if workers <= 0 {
		workers = 1
	}
	if size <= 0 {
		size = workers * 2
	}
	q := &Queue{
		handle:  handle,
		timeout: timeout,
		events:  make(chan Event, size),
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go q.worker()
	}
	return q
}

// Publish enqueues ev without blocking.
func (q *Queue) Publish(_ context.Context, ev Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}
	select {
	case q.events <- ev:
		return nil
	default:
		metrics.ObserveNotification(metrics.NotifyDropped)
		return ErrQueueFull
	}
}

// Shutdown stops accepting events and waits until the queued ones are handled.
// It is safe to call more than once.
func (q *Queue) Shutdown() {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.events)
	}
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for ev := range q.events {
		q.run(ev)
	}
}

// run handles one event, recovering from panics so a bad handler does not
// take the worker down.
func (q *Queue) run(ev Event) {
	ctx := context.Background()
	if q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			utils.Error("notify: handler panicked", map[string]any{
				"user_id": ev.UserID,
				"event":   ev.Name,
				"panic":   r,
			})
		}
	}()
	q.handle(ctx, ev)
}
