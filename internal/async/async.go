// Package async provides a background worker for fire-and-forget work.
// Cache writes, counters and error reporting go through here so they
// can never block or fail the primary response path.
package async

import (
	"sync"

	"go.uber.org/zap"

	"rental-quote/internal/logging"
)

// Worker runs submitted tasks on a single background goroutine.
// Submission never blocks: when the queue is full the task is dropped
// and counted.
type Worker struct {
	tasks   chan func()
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped int64
}

// NewWorker creates and starts a worker with the given queue depth
func NewWorker(queueDepth int) *Worker {
	if queueDepth <= 0 {
		queueDepth = 256
	}
	w := &Worker{
		tasks: make(chan func(), queueDepth),
		done:  make(chan struct{}),
	}
	go w.run()
	return w
}

func (w *Worker) run() {
	defer close(w.done)
	for task := range w.tasks {
		w.safeRun(task)
	}
}

func (w *Worker) safeRun(task func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error("background task panicked", zap.Any("panic", r))
		}
	}()
	task()
}

// Submit enqueues a task without blocking. Returns false when the
// task was dropped.
func (w *Worker) Submit(task func()) bool {
	select {
	case w.tasks <- task:
		return true
	default:
		w.mu.Lock()
		w.dropped++
		w.mu.Unlock()
		return false
	}
}

// Dropped returns how many tasks were dropped on a full queue
func (w *Worker) Dropped() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dropped
}

// Close stops the worker after draining queued tasks
func (w *Worker) Close() {
	w.once.Do(func() {
		close(w.tasks)
	})
	<-w.done
}
