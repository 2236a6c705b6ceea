// internal/matching/service/pool.go
package service

import (
	"sync"

	"agrimatch/internal/common/config"
	"agrimatch/internal/common/logger"
)

// Pool is a bounded worker pool: a fixed set of core workers drains a fixed
// backlog, burst workers up to the max size absorb spikes, and a full pool
// falls back to running the job on an unpooled goroutine so a submission is
// never silently dropped.
type Pool struct {
	jobs   chan func()
	burst  chan struct{}
	wg     sync.WaitGroup
	logger logger.Logger

	mu     sync.Mutex
	closed bool
}

func NewPool(cfg config.PoolConfig, log logger.Logger) *Pool {
	core := cfg.CoreSize
	if core < 1 {
		core = 1
	}
	max := cfg.MaxSize
	if max < core {
		max = core
	}
	queue := cfg.QueueSize
	if queue < 1 {
		queue = 1
	}

	p := &Pool{
		jobs:   make(chan func(), queue),
		burst:  make(chan struct{}, max-core),
		logger: log.WithFields(map[string]interface{}{"component": "worker-pool"}),
	}
	for i := 0; i < core; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit schedules a job for background execution. It never blocks and never
// drops: backlog first, then a burst worker, then a detached goroutine.
func (p *Pool) Submit(job func()) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		go job()
		return
	}
	// The backlog send must happen under the lock: Shutdown closes the
	// channel under the same lock, and a send racing the close panics.
	select {
	case p.jobs <- job:
		p.mu.Unlock()
		return
	default:
	}
	p.mu.Unlock()

	select {
	case p.burst <- struct{}{}:
		p.wg.Add(1)
		go p.burstWorker(job)
	default:
		p.logger.Warn("worker pool saturated, running job unpooled", nil)
		go job()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// burstWorker runs its triggering job, then keeps draining the backlog until
// it is idle, then releases its slot.
func (p *Pool) burstWorker(job func()) {
	defer p.wg.Done()
	defer func() { <-p.burst }()
	job()
	for {
		select {
		case next, ok := <-p.jobs:
			if !ok {
				return
			}
			next()
		default:
			return
		}
	}
}

// Shutdown stops accepting pooled jobs and waits for in-flight work.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()
	p.wg.Wait()
}
