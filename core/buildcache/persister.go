package buildcache

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// persister runs saves on a background goroutine. At most one save is in
// flight; schedule calls made while a save runs collapse into one trailing
// save that observes every record written before it started.
type persister struct {
	save   func(ctx context.Context) error
	logger *zap.Logger

	kick chan struct{}
	done chan struct{}

	mu        sync.Mutex
	cond      *sync.Cond
	scheduled uint64
	saved     uint64
	closed    bool
}

func newPersister(save func(ctx context.Context) error, logger *zap.Logger) *persister {
	p := &persister{
		save:   save,
		logger: logger,
		kick:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)
	go p.loop()
	return p
}

// schedule requests a save and returns immediately.
func (p *persister) schedule() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.scheduled++

	select {
	case p.kick <- struct{}{}:
	default:
		// A save is already pending and will pick this request up.
	}
}

func (p *persister) loop() {
	defer close(p.done)
	for range p.kick {
		p.mu.Lock()
		target := p.scheduled
		p.mu.Unlock()

		if err := p.save(context.Background()); err != nil {
			p.logger.Error("Failed to persist build cache index", zap.Error(err))
		}

		p.mu.Lock()
		if target > p.saved {
			p.saved = target
		}
		p.cond.Broadcast()
		p.mu.Unlock()
	}
}

// flush blocks until every save scheduled before the call has run.
func (p *persister) flush() {
	p.mu.Lock()
	defer p.mu.Unlock()
	want := p.scheduled
	for p.saved < want {
		p.cond.Wait()
	}
}

// close flushes pending saves and stops the loop.
func (p *persister) close() {
	p.flush()

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.kick)
	p.mu.Unlock()

	<-p.done
}
