// Package runner triggers annotation ticks: on a fixed delay, or when a
// watched file settles after a change. Neither trigger ever runs two ticks at
// once.
package runner

import (
	"context"
	"sync"
	"time"

	"boardpoints/internal/logging"

	"go.uber.org/zap"
)

// TickFunc runs one pass. Errors are logged and counted; they never stop the
// trigger.
type TickFunc func(ctx context.Context) error

// Poller runs a TickFunc repeatedly with a fixed delay between the end of one
// tick and the start of the next.
type Poller struct {
	interval time.Duration
	tick     TickFunc

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
	stats   Stats
}

// Stats tracks trigger activity.
type Stats struct {
	Ticks    int
	Errors   int
	LastTick time.Time
	LastErr  error
}

// NewPoller creates a poller. The first tick runs as soon as it starts.
func NewPoller(interval time.Duration, tick TickFunc) *Poller {
	return &Poller{
		interval: interval,
		tick:     tick,
	}
}

// Start begins polling in a goroutine. Starting a running poller is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	go p.run(ctx, p.stopCh, p.doneCh)
}

// Stop halts polling and waits for an in-flight tick to finish.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	stopCh, doneCh := p.stopCh, p.doneCh
	p.mu.Unlock()

	close(stopCh)
	<-doneCh
	logging.RunnerDebug("poller stopped")
}

// Done is closed when the polling goroutine exits, including on context
// cancellation.
func (p *Poller) Done() <-chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.doneCh
}

// Stats returns a snapshot of poller activity.
func (p *Poller) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

func (p *Poller) run(ctx context.Context, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.RunnerDebug("poller context cancelled")
			return
		case <-stopCh:
			return
		case <-timer.C:
			err := p.tick(ctx)
			p.record(err)
			timer.Reset(p.interval)
		}
	}
}

func (p *Poller) record(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Ticks++
	p.stats.LastTick = time.Now()
	p.stats.LastErr = err
	if err != nil {
		p.stats.Errors++
		logging.RunnerError("tick failed", zap.Error(err))
	}
}
