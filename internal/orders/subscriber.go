package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"PerpMirror/internal/observability"
	"PerpMirror/internal/orderbook"
)

// SubscriptionKind selects the refresh strategy at construction time.
type SubscriptionKind uint8

const (
	// SubscriptionPolling refreshes on a fixed interval.
	SubscriptionPolling SubscriptionKind = iota
	// SubscriptionPush refreshes on external change notifications.
	SubscriptionPush
)

// DefaultPollInterval is used when Config.PollInterval is zero.
const DefaultPollInterval = 5 * time.Second

// Config selects and parameterizes the refresh strategy.
type Config struct {
	Kind         SubscriptionKind
	PollInterval time.Duration

	// Feed delivers change notifications; required for SubscriptionPush.
	Feed ChangeFeed
	// SkipInitialLoad suppresses the initial full scan on the push path.
	SkipInitialLoad bool
}

// subscription is the closed set of refresh strategies behind the
// subscribe/unsubscribe lifecycle.
type subscription interface {
	subscribe(ctx context.Context) error
	unsubscribe() error
}

// Subscriber owns the account cache and its refresh lifecycle. One Subscriber
// means one in-flight refresh at a time; cache lifetime is the subscriber's.
type Subscriber struct {
	id      uuid.UUID
	log     zerolog.Logger
	metrics *observability.Metrics

	cache *Cache
	coord *Coordinator
	sub   subscription
}

// NewSubscriber wires a subscriber from its collaborators and the chosen
// strategy.
func NewSubscriber(cfg Config, source AccountSource, decoder Decoder, log zerolog.Logger, metrics *observability.Metrics) (*Subscriber, error) {
	id := uuid.New()
	log = log.With().Str("subscriber", id.String()).Logger()

	cache := NewCache()
	coord := NewCoordinator(source, decoder, cache, log, metrics)

	s := &Subscriber{
		id:      id,
		log:     log,
		metrics: metrics,
		cache:   cache,
		coord:   coord,
	}

	switch cfg.Kind {
	case SubscriptionPolling:
		interval := cfg.PollInterval
		if interval <= 0 {
			interval = DefaultPollInterval
		}
		s.sub = &pollingSubscription{coord: coord, interval: interval, log: log}
	case SubscriptionPush:
		if cfg.Feed == nil {
			return nil, errors.New("orders: push subscription requires a change feed")
		}
		s.sub = &pushSubscription{
			coord:           coord,
			feed:            cfg.Feed,
			skipInitialLoad: cfg.SkipInitialLoad,
			log:             log,
			metrics:         metrics,
		}
	default:
		return nil, fmt.Errorf("orders: unknown subscription kind %d", cfg.Kind)
	}

	return s, nil
}

// ID identifies this subscriber instance in logs and metrics.
func (s *Subscriber) ID() uuid.UUID {
	return s.id
}

// Subscribe starts the configured refresh strategy.
func (s *Subscriber) Subscribe(ctx context.Context) error {
	s.log.Info().Msg("subscribing")
	return s.sub.subscribe(ctx)
}

// Unsubscribe stops future refreshes. An already in-flight refresh may finish
// but is never rescheduled. Idempotent.
func (s *Subscriber) Unsubscribe() error {
	s.log.Info().Msg("unsubscribing")
	return s.sub.unsubscribe()
}

// Fetch triggers one refresh cycle, coalescing with any in-flight cycle.
func (s *Subscriber) Fetch(ctx context.Context) error {
	return s.coord.Fetch(ctx)
}

// Cache exposes the account cache for read-only consumption.
func (s *Subscriber) Cache() *Cache {
	return s.cache
}

// BuildBook assembles a fresh order book from every currently cached open
// order, tagging each with its owner and the supplied slot. Every cached
// order is fed to the book exactly once per build.
func (s *Subscriber) BuildBook(slot uint64) *orderbook.Book {
	book := orderbook.New()
	s.cache.ForEach(func(key string, e Entry) {
		for i := range e.State.Orders {
			book.InsertOrder(e.State.Orders[i], key, slot)
		}
	})
	s.metrics.BookBuilds.Inc()
	s.metrics.BookOrders.Observe(float64(book.Size()))
	return book
}
