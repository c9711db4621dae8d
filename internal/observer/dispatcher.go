package observer

import (
	"runtime"
	"sync"
	"sync/atomic"
)

const queueFactor = 64

// dispatcher runs observer callbacks on a fixed set of workers
type dispatcher struct {
	mu      sync.RWMutex
	closed  bool
	jobs    chan func()
	wg      sync.WaitGroup
	dropped atomic.Int64
}

func newDispatcher(workers int) *dispatcher {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	d := &dispatcher{jobs: make(chan func(), workers*queueFactor)}
	d.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go d.worker()
	}
	return d
}

func (d *dispatcher) worker() {
	defer d.wg.Done()
	for job := range d.jobs {
		job()
	}
}

// submit queues a job without blocking
func (d *dispatcher) submit(job func()) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return false
	}
	select {
	case d.jobs <- job:
		return true
	default:
		d.dropped.Add(1)
		return false
	}
}

// close drains queued jobs; it is safe to call more than once
func (d *dispatcher) close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.jobs)
	}
	d.mu.Unlock()
	d.wg.Wait()
}
