package storage

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/saftree/storagebridge/internal/logging"
	"go.uber.org/zap"
)

// ErrSchedulerClosed is returned for work submitted after Close.
var ErrSchedulerClosed = errors.New("storage: scheduler closed")

// Outcome carries one task's deferred result.
type Outcome struct {
	Value interface{}
	Err   error
}

// SchedulerStats is an optional sink for queue instrumentation.
type SchedulerStats interface {
	TaskQueued()
	TaskDone(name string, d time.Duration, err error)
}

type task struct {
	id   string
	name string
	fn   func() (interface{}, error)
	out  chan Outcome
}

// Scheduler serializes all filesystem and document-tree I/O onto one
// dedicated worker goroutine. Tasks run strictly one at a time in
// submission order; a slow traversal delays everything behind it, and in
// exchange the submitting goroutine is never blocked by storage I/O.
// There is no cancellation and no timeout: an in-flight task always runs
// to completion.
type Scheduler struct {
	tasks chan task
	done  chan struct{}

	mu     sync.Mutex
	closed bool

	stats SchedulerStats
	log   *logging.Logger
}

// NewScheduler starts the worker. queueSize bounds how many tasks may
// wait; Submit blocks once the queue is full. stats may be nil.
func NewScheduler(queueSize int, stats SchedulerStats, log *logging.Logger) *Scheduler {
	if queueSize < 1 {
		queueSize = 64
	}
	if log == nil {
		log = logging.Nop()
	}
	s := &Scheduler{
		tasks: make(chan task, queueSize),
		done:  make(chan struct{}),
		stats: stats,
		log:   log,
	}
	go s.run()
	return s
}

// Submit enqueues fn and returns a channel that receives exactly one
// Outcome when fn completes. The channel is buffered: an abandoned result
// never wedges the worker.
func (s *Scheduler) Submit(name string, fn func() (interface{}, error)) <-chan Outcome {
	out := make(chan Outcome, 1)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		out <- Outcome{Err: ErrSchedulerClosed}
		return out
	}
	t := task{id: uuid.NewString(), name: name, fn: fn, out: out}
	if s.stats != nil {
		s.stats.TaskQueued()
	}
	s.tasks <- t
	s.mu.Unlock()
	return out
}

// Wait submits fn and blocks until it completes.
func (s *Scheduler) Wait(name string, fn func() (interface{}, error)) (interface{}, error) {
	o := <-s.Submit(name, fn)
	return o.Value, o.Err
}

// Close stops accepting work and waits for queued tasks to drain.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.tasks)
	s.mu.Unlock()
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	for t := range s.tasks {
		start := time.Now()
		v, err := t.fn()
		elapsed := time.Since(start)

		if s.stats != nil {
			s.stats.TaskDone(t.name, elapsed, err)
		}
		if err != nil {
			s.log.Warn("task failed",
				zap.String("task", t.name), zap.String("id", t.id),
				zap.Duration("elapsed", elapsed), zap.Error(err))
		} else {
			s.log.Debug("task done",
				zap.String("task", t.name), zap.String("id", t.id),
				zap.Duration("elapsed", elapsed))
		}
		t.out <- Outcome{Value: v, Err: err}
	}
}
