package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"PerpMirror/internal/orders"
)

const wsReconnectWait = 2 * time.Second

// WSFeed delivers account change notifications from a websocket gateway,
// reconnecting on disconnect until unsubscribed. Implements orders.ChangeFeed.
type WSFeed struct {
	url string
	log zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewWSFeed(url string, log zerolog.Logger) *WSFeed {
	return &WSFeed{url: url, log: log}
}

// Subscribe starts the read loop in its own goroutine and returns.
func (f *WSFeed) Subscribe(ctx context.Context, fn func(orders.AccountUpdate)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		return nil
	}

	runCtx, cancel := context.WithCancel(ctx)
	f.cancel = cancel
	f.done = make(chan struct{})

	go f.run(runCtx, fn)
	return nil
}

func (f *WSFeed) run(ctx context.Context, fn func(orders.AccountUpdate)) {
	defer close(f.done)

	for {
		if ctx.Err() != nil {
			return
		}
		if err := f.runConnection(ctx, fn); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.log.Warn().Err(err).Msg("websocket disconnected, reconnecting")
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(wsReconnectWait):
		}
	}
}

func (f *WSFeed) runConnection(ctx context.Context, fn func(orders.AccountUpdate)) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection when ctx dies so ReadMessage unblocks.
	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	f.log.Info().Str("url", f.url).Msg("websocket connected")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var u wireUpdate
		if err := json.Unmarshal(data, &u); err != nil {
			f.log.Warn().Err(err).Msg("dropping malformed update")
			continue
		}
		fn(orders.AccountUpdate{Key: u.Key, Data: u.Data, Slot: u.Slot})
	}
}

// Unsubscribe tears down the connection and waits for the read loop to exit.
// Idempotent.
func (f *WSFeed) Unsubscribe() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel == nil {
		return nil
	}
	f.cancel()
	<-f.done
	f.cancel = nil
	f.done = nil
	return nil
}
