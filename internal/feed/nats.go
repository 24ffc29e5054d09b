package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"PerpMirror/internal/orders"
)

// Default subjects served by the ledger gateway.
const (
	DefaultScanSubject    = "ledger.accounts.scan"
	DefaultUpdatesSubject = "ledger.accounts.updates"
)

// ConnectNATS establishes a NATS connection with unbounded reconnects.
func ConnectNATS(url string, log zerolog.Logger) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info().Msg("nats reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return nc, nil
}

type scanRequest struct {
	OpenOrdersOnly bool `json:"open_orders_only"`
}

type scanEntry struct {
	Key  string `json:"key"`
	Data []byte `json:"data"` // base64 via encoding/json
}

type scanResponse struct {
	Slot    uint64      `json:"slot"`
	Entries []scanEntry `json:"entries"`
}

// NATSSource answers the AccountSource contract over request/reply against
// the ledger gateway: one request, one filtered snapshot batch stamped with
// its slot.
type NATSSource struct {
	nc      *nats.Conn
	subject string
	log     zerolog.Logger
}

func NewNATSSource(nc *nats.Conn, subject string, log zerolog.Logger) *NATSSource {
	if subject == "" {
		subject = DefaultScanSubject
	}
	return &NATSSource{nc: nc, subject: subject, log: log}
}

// Scan implements orders.AccountSource.
func (s *NATSSource) Scan(ctx context.Context, f orders.Filter) (orders.ScanResult, error) {
	payload, err := json.Marshal(scanRequest{OpenOrdersOnly: f.OpenOrdersOnly})
	if err != nil {
		return orders.ScanResult{}, fmt.Errorf("marshal scan request: %w", err)
	}

	msg, err := s.nc.RequestWithContext(ctx, s.subject, payload)
	if err != nil {
		return orders.ScanResult{}, fmt.Errorf("scan request on %s: %w", s.subject, err)
	}

	var resp scanResponse
	if err := json.Unmarshal(msg.Data, &resp); err != nil {
		return orders.ScanResult{}, fmt.Errorf("unmarshal scan response: %w", err)
	}

	out := orders.ScanResult{
		Slot:    resp.Slot,
		Entries: make([]orders.AccountEntry, 0, len(resp.Entries)),
	}
	for _, e := range resp.Entries {
		out.Entries = append(out.Entries, orders.AccountEntry{Key: e.Key, Data: e.Data})
	}
	return out, nil
}

type wireUpdate struct {
	Key  string `json:"key"`
	Data []byte `json:"data,omitempty"`
	Slot uint64 `json:"slot"`
}

// NATSFeed delivers account change notifications from a gateway subject.
// Implements orders.ChangeFeed.
type NATSFeed struct {
	nc      *nats.Conn
	subject string
	log     zerolog.Logger

	mu  sync.Mutex
	sub *nats.Subscription
}

func NewNATSFeed(nc *nats.Conn, subject string, log zerolog.Logger) *NATSFeed {
	if subject == "" {
		subject = DefaultUpdatesSubject
	}
	return &NATSFeed{nc: nc, subject: subject, log: log}
}

// Subscribe starts delivering notifications to fn. Malformed messages are
// logged and dropped.
func (f *NATSFeed) Subscribe(ctx context.Context, fn func(orders.AccountUpdate)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub != nil {
		return nil
	}

	sub, err := f.nc.Subscribe(f.subject, func(msg *nats.Msg) {
		var u wireUpdate
		if err := json.Unmarshal(msg.Data, &u); err != nil {
			f.log.Warn().Err(err).Str("subject", msg.Subject).Msg("dropping malformed update")
			return
		}
		fn(orders.AccountUpdate{Key: u.Key, Data: u.Data, Slot: u.Slot})
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", f.subject, err)
	}

	f.sub = sub
	f.log.Info().Str("subject", f.subject).Msg("subscribed to account updates")
	return nil
}

// Unsubscribe stops delivery. Idempotent.
func (f *NATSFeed) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sub == nil {
		return nil
	}
	err := f.sub.Unsubscribe()
	f.sub = nil
	if err != nil {
		return fmt.Errorf("unsubscribe %s: %w", f.subject, err)
	}
	return nil
}
