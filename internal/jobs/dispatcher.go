// Package jobs runs background tasks, such as thumbnail decodes, on a bounded
// pool of worker goroutines.
package jobs

import (
	"errors"
	"log/slog"
	"sync"
)

var (
	ErrQueueFull   = errors.New("task queue is full")
	ErrPoolStopped = errors.New("worker pool is stopped")
)

const defaultQueueSize = 256

// Pool implements core.Executor with a fixed number of worker goroutines
// reading from a bounded queue.
type Pool struct {
	queue      chan func()    // Queue of pending tasks.
	maxWorkers int            // Number of concurrent workers.
	wg         sync.WaitGroup // Tracks active workers for graceful shutdown.
	mu         sync.RWMutex   // Guards stopped against concurrent Submit/Stop.
	stopped    bool
	logger     *slog.Logger
}

// NewPool initializes a pool and starts its workers.
// If maxWorkers is 0 or negative, it defaults to 1; a non-positive queueSize
// falls back to 256.
func NewPool(maxWorkers, queueSize int, logger *slog.Logger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	p := &Pool{
		maxWorkers: maxWorkers,
		queue:      make(chan func(), queueSize),
		logger:     logger,
	}
	p.startWorkers()
	return p
}

// startWorkers launches maxWorkers goroutines to process tasks from the queue.
func (p *Pool) startWorkers() {
	for i := range p.maxWorkers {
		p.wg.Add(1)
		go p.startWorker(i)
	}
}

// startWorker processes tasks from the queue until it's closed.
func (p *Pool) startWorker(workerID int) {
	defer p.wg.Done()
	p.logger.Debug("starting decode worker", "id", workerID)

	for task := range p.queue {
		p.run(workerID, task)
	}

	p.logger.Debug("shutting down decode worker", "id", workerID)
}

// run executes a single task; a panicking task is logged and does not take the worker down.
func (p *Pool) run(workerID int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background task panicked", "worker_id", workerID, "panic", r)
		}
	}()
	task()
}

// Submit queues a task without blocking.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	select {
	case p.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.maxWorkers
}

// Stop rejects new tasks, lets the workers drain the queue and waits for them.
// It is safe to call more than once.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	p.mu.Unlock()

	p.logger.Info("stopping worker pool and waiting for tasks to finish")
	p.wg.Wait()
	p.logger.Info("all background tasks have finished")
}
