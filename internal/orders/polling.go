package orders

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// pollingSubscription fetches immediately on subscribe and then on a fixed
// interval until unsubscribed.
type pollingSubscription struct {
	coord    *Coordinator
	interval time.Duration
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func (p *pollingSubscription) subscribe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil // already subscribed
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	// Initial load happens on the caller's goroutine so the cache is warm
	// when subscribe returns. A failed first cycle is not fatal; the next
	// tick retries.
	if err := p.coord.Fetch(loopCtx); err != nil {
		p.log.Warn().Err(err).Msg("initial fetch failed")
	}

	go p.loop(loopCtx)
	return nil
}

func (p *pollingSubscription) loop(ctx context.Context) {
	defer close(p.done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.coord.Fetch(ctx); err != nil {
				p.log.Warn().Err(err).Msg("scheduled fetch failed")
			}
		}
	}
}

// unsubscribe stops the poll loop and waits for it to exit, so no refresh
// runs after it returns. Idempotent.
func (p *pollingSubscription) unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	<-p.done
	p.cancel = nil
	p.done = nil
	return nil
}
