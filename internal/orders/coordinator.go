package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"PerpMirror/internal/observability"
)

// Coordinator drives full-scan refresh cycles and reconciles their results
// into the cache. Concurrent Fetch calls coalesce into one in-flight scan and
// every caller observes the shared outcome.
type Coordinator struct {
	source  AccountSource
	decoder Decoder
	cache   *Cache

	flight  singleflight.Group
	log     zerolog.Logger
	metrics *observability.Metrics
}

func NewCoordinator(source AccountSource, decoder Decoder, cache *Cache, log zerolog.Logger, metrics *observability.Metrics) *Coordinator {
	return &Coordinator{
		source:  source,
		decoder: decoder,
		cache:   cache,
		log:     log,
		metrics: metrics,
	}
}

// Fetch runs one full-scan refresh cycle. If a cycle is already in flight the
// caller attaches to it instead of issuing a second scan; the first caller's
// context governs the shared scan. A transport failure is logged and counted,
// leaves the cache at its last-known-good state, and is returned so callers
// can observe the outcome.
func (c *Coordinator) Fetch(ctx context.Context) error {
	_, err, _ := c.flight.Do("scan", func() (interface{}, error) {
		return nil, c.refresh(ctx)
	})
	return err
}

func (c *Coordinator) refresh(ctx context.Context) error {
	start := time.Now()

	res, err := c.source.Scan(ctx, Filter{OpenOrdersOnly: true})
	if err != nil {
		c.metrics.ScanErrors.Inc()
		c.log.Warn().Err(err).Msg("account scan failed, keeping last-known-good cache")
		return fmt.Errorf("account scan: %w", err)
	}

	seen := make(map[string]struct{}, len(res.Entries))
	for _, entry := range res.Entries {
		seen[entry.Key] = struct{}{}
		c.Reconcile(entry.Key, entry.Data, res.Slot)
	}

	// Anything we track that the filtered scan no longer returns has no open
	// orders left (or no longer exists) and is evicted.
	for _, key := range c.cache.Keys() {
		if _, ok := seen[key]; !ok {
			c.cache.Delete(key)
			c.metrics.AccountsEvicted.Inc()
		}
	}

	c.metrics.ScansTotal.Inc()
	c.metrics.ScanDuration.Observe(time.Since(start).Seconds())
	c.metrics.AccountsTracked.Set(float64(c.cache.Len()))

	c.log.Debug().
		Uint64("slot", res.Slot).
		Int("scanned", len(res.Entries)).
		Int("tracked", c.cache.Len()).
		Dur("took", time.Since(start)).
		Msg("refresh cycle complete")

	return nil
}

// Reconcile applies one (key, raw bytes, slot) observation to the cache:
// stale slots are dropped, decodable accounts with open orders are upserted,
// accounts without open orders are evicted. A decode failure skips only this
// key.
func (c *Coordinator) Reconcile(key string, data []byte, slot uint64) {
	if cached, ok := c.cache.Get(key); ok && cached.Slot >= slot {
		c.metrics.StaleUpdatesDropped.Inc()
		return
	}

	state, err := c.decoder.Decode(data)
	if err != nil {
		c.metrics.DecodeErrors.Inc()
		c.log.Warn().Err(err).Str("account", key).Msg("skipping undecodable account")
		return
	}

	if state.HasOpenOrder() {
		c.cache.Set(key, Entry{Slot: slot, State: state})
		c.metrics.UpdatesApplied.Inc()
	} else {
		c.cache.Delete(key)
		c.metrics.AccountsEvicted.Inc()
	}
}
