// Package dispatch runs best-effort side effects off the caller's path.
//
// A Queue never blocks Submit: when the buffer is full the item is dropped
// and reported to the error sink. Handler errors and panics go to the same
// sink and are never returned to whoever submitted the item.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MaxBossMan1/ddg-prisonrp-rules-sub001/internal/platform/logger"
)

var (
	ErrQueueFull   = errors.New("dispatch queue full")
	ErrQueueClosed = errors.New("dispatch queue closed")
)

// Handler processes one item. ctx carries the per-item timeout.
type Handler[T any] func(ctx context.Context, item T) error

// ErrorSink receives every failure the queue swallows.
type ErrorSink func(name string, err error)

type Options struct {
	Name    string
	Buffer  int
	Workers int
	// Timeout bounds each handler call; zero means 5s.
	Timeout time.Duration
	Sink    ErrorSink
}

type Queue[T any] struct {
	name    string
	items   chan T
	handle  Handler[T]
	timeout time.Duration
	sink    ErrorSink
	log     *logger.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue[T any](log *logger.Logger, opts Options, handle Handler[T]) *Queue[T] {
	if log == nil {
		log = logger.NewNop()
	}
	if opts.Name == "" {
		opts.Name = "dispatch"
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	q := &Queue[T]{
		name:    opts.Name,
		items:   make(chan T, opts.Buffer),
		handle:  handle,
		timeout: opts.Timeout,
		sink:    opts.Sink,
		log:     log.With("component", "DispatchQueue", "queue", opts.Name),
	}
	for i := 0; i < opts.Workers; i++ {
		q.wg.Add(1)
		go q.runLoop(i + 1)
	}
	return q
}

// Submit enqueues item without blocking. It reports false when the item was
// dropped; the drop has already been logged and sent to the sink.
func (q *Queue[T]) Submit(item T) bool {
	if q == nil {
		return false
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.report(ErrQueueClosed)
		return false
	}
	select {
	case q.items <- item:
		return true
	default:
		q.report(ErrQueueFull)
		return false
	}
}

// Close stops accepting items and waits for queued ones to drain or ctx to end.
func (q *Queue[T]) Close(ctx context.Context) error {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.items)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *Queue[T]) runLoop(workerID int) {
	defer q.wg.Done()
	for item := range q.items {
		q.process(workerID, item)
	}
}

func (q *Queue[T]) process(workerID int, item T) {
	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	defer func() {
		if r := recover(); r != nil {
			q.report(fmt.Errorf("handler panic: %v", r))
		}
	}()
	if q.handle == nil {
		return
	}
	if err := q.handle(ctx, item); err != nil {
		q.log.Debug("dispatch handler failed", "worker_id", workerID, "error", err)
		q.report(err)
	}
}

func (q *Queue[T]) report(err error) {
	q.log.Warn("dispatch item dropped", "error", err)
	if q.sink != nil {
		q.sink(q.name, err)
	}
}
