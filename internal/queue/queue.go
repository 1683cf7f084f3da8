// Package queue serializes routing work onto a single worker.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/davidbz/relay/internal/domain"
	"github.com/davidbz/relay/internal/observability"
)

// Config contains request queue settings.
type Config struct {
	Capacity int `env:"QUEUE_CAPACITY" envDefault:"256"`
}

// Handler processes one request.
type Handler interface {
	Handle(ctx context.Context, req *domain.Request) (*domain.Response, error)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, req *domain.Request) (*domain.Response, error)

// Handle calls f(ctx, req).
func (f HandlerFunc) Handle(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	return f(ctx, req)
}

type job struct {
	ctx    context.Context
	req    *domain.Request
	result chan result
}

type result struct {
	resp *domain.Response
	err  error
}

// Option configures a Queue.
type Option func(*Queue)

// WithRequestTimeout bounds each submitted request, time spent queued
// included, when the caller's context carries no deadline.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(q *Queue) {
		q.timeout = timeout
	}
}

// Queue is a bounded FIFO drained by exactly one worker goroutine.
type Queue struct {
	handler Handler
	timeout time.Duration
	jobs    chan *job
	quit    chan struct{}
	done    chan struct{}

	mu      sync.RWMutex
	closed  bool
	started bool
}

// New creates a queue. Call Start to begin processing.
func New(handler Handler, cfg *Config, opts ...Option) *Queue {
	capacity := cfg.Capacity
	if capacity <= 0 {
		capacity = 1
	}

	q := &Queue{
		handler: handler,
		jobs:    make(chan *job, capacity),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker. The queue closes when ctx is cancelled.
// Calling Start more than once has no effect.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	if q.started || q.closed {
		q.mu.Unlock()
		return
	}
	q.started = true
	q.mu.Unlock()

	go q.run(ctx)
}

// Submit enqueues req without blocking and waits for its result. It returns
// ErrQueueFull when no slot is free and ErrQueueClosed once the queue is closed.
// A request still queued when its deadline passes is never handled.
func (q *Queue) Submit(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	if _, ok := ctx.Deadline(); !ok && q.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, q.timeout)
		defer cancel()
	}

	j := &job{ctx: ctx, req: req, result: make(chan result, 1)}

	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return nil, domain.ErrQueueClosed
	}
	select {
	case q.jobs <- j:
	default:
		q.mu.RUnlock()
		return nil, domain.ErrQueueFull
	}
	q.mu.RUnlock()

	select {
	case res := <-j.result:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len returns the number of queued requests.
func (q *Queue) Len() int {
	return len(q.jobs)
}

// Close stops accepting requests, fails every pending request with
// ErrQueueClosed and waits for the in-flight request to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		<-q.done
		return
	}
	q.closed = true
	started := q.started
	close(q.quit)
	q.mu.Unlock()

	if !started {
		q.drain()
		close(q.done)
		return
	}
	<-q.done
}

func (q *Queue) run(ctx context.Context) {
	defer close(q.done)

	for {
		select {
		case <-q.quit:
			q.drain()
			return
		case <-ctx.Done():
			q.mu.Lock()
			if !q.closed {
				q.closed = true
				close(q.quit)
			}
			q.mu.Unlock()
			q.drain()
			return
		case j := <-q.jobs:
			if q.isClosing() {
				j.result <- result{err: domain.ErrQueueClosed}
				q.drain()
				return
			}
			q.process(j)
		}
	}
}

func (q *Queue) isClosing() bool {
	select {
	case <-q.quit:
		return true
	default:
		return false
	}
}

func (q *Queue) process(j *job) {
	if err := j.ctx.Err(); err != nil {
		observability.FromContext(j.ctx).Debug("dropping expired request",
			observability.Error(err))
		j.result <- result{err: err}
		return
	}

	resp, err := q.handler.Handle(j.ctx, j.req)
	j.result <- result{resp: resp, err: err}
}

// drain fails every queued job. No sends can happen once closed is set.
func (q *Queue) drain() {
	for {
		select {
		case j := <-q.jobs:
			j.result <- result{err: domain.ErrQueueClosed}
		default:
			return
		}
	}
}
