package orders

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"PerpMirror/internal/observability"
)

// pushSubscription registers for external change notifications and refreshes
// on each one. Notifications carrying an account payload are reconciled
// incrementally; bare notifications trigger a full single-flight fetch.
type pushSubscription struct {
	coord           *Coordinator
	feed            ChangeFeed
	skipInitialLoad bool
	log             zerolog.Logger
	metrics         *observability.Metrics

	mu     sync.Mutex
	cancel context.CancelFunc
	ctx    context.Context
}

func (p *pushSubscription) subscribe(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return nil // already subscribed
	}

	feedCtx, cancel := context.WithCancel(ctx)

	if !p.skipInitialLoad {
		if err := p.coord.Fetch(feedCtx); err != nil {
			p.log.Warn().Err(err).Msg("initial fetch failed")
		}
	}

	if err := p.feed.Subscribe(feedCtx, p.handle); err != nil {
		cancel()
		return err
	}

	p.ctx = feedCtx
	p.cancel = cancel
	return nil
}

func (p *pushSubscription) handle(u AccountUpdate) {
	p.mu.Lock()
	ctx := p.ctx
	p.mu.Unlock()
	if ctx == nil || ctx.Err() != nil {
		return // unsubscribed; drop late notifications
	}

	if u.Key != "" && len(u.Data) > 0 {
		p.metrics.NotificationsReceived.WithLabelValues("incremental").Inc()
		p.coord.Reconcile(u.Key, u.Data, u.Slot)
		p.metrics.AccountsTracked.Set(float64(p.coord.cache.Len()))
		return
	}

	p.metrics.NotificationsReceived.WithLabelValues("signal").Inc()
	if err := p.coord.Fetch(ctx); err != nil {
		p.log.Warn().Err(err).Msg("notification-driven fetch failed")
	}
}

// unsubscribe detaches from the feed and drops any notifications still in
// flight. Idempotent.
func (p *pushSubscription) unsubscribe() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel == nil {
		return nil
	}
	p.cancel()
	err := p.feed.Unsubscribe()
	p.cancel = nil
	p.ctx = nil
	return err
}
