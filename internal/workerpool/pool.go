// Package workerpool provides the bounded background pool that all
// dispatch, fan-out and replay work runs on, so triggering callers are
// never blocked by delivery cost.
package workerpool

import (
	"sync"

	"github.com/rs/zerolog/log"
)

// Pool runs submitted tasks on a fixed set of workers over a bounded
// queue. Saturation policy is caller-runs: when the queue is full the
// submitting goroutine executes the task itself instead of dropping it
// or blocking indefinitely. That keeps load spikes from silently losing
// notifications at the cost of briefly slowing the producer.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// New creates a Pool with the given worker count and queue capacity.
func New(workers, queueSize int) *Pool {
	if workers <= 0 {
		workers = 4
	}
	if queueSize < 0 {
		queueSize = 0
	}
	p := &Pool{tasks: make(chan func(), queueSize)}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		runTask(task)
	}
}

func runTask(task func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Msg("worker pool task panicked")
		}
	}()
	task()
}

// Submit enqueues the task, or runs it synchronously on the calling
// goroutine when the queue is full or the pool is shut down.
func (p *Pool) Submit(task func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		runTask(task)
		return
	}
	select {
	case p.tasks <- task:
		p.mu.Unlock()
	default:
		p.mu.Unlock()
		runTask(task)
	}
}

// Shutdown stops accepting queued work and waits for in-flight and
// queued tasks to finish. Submit calls after Shutdown run caller-side.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
