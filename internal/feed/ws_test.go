package feed_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"PerpMirror/internal/feed"
	"PerpMirror/internal/orders"
)

var upgrader = websocket.Upgrader{}

func wsServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for _, m := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestWSFeed_DeliversUpdates(t *testing.T) {
	srv := wsServer(t, []string{
		`not json`, // dropped, must not kill the read loop
		`{"key":"acct1","slot":12}`,
		`{"key":"acct2","data":"aGVsbG8=","slot":13}`,
	})
	defer srv.Close()

	f := feed.NewWSFeed(wsURL(srv), zerolog.Nop())
	got := make(chan orders.AccountUpdate, 8)
	if err := f.Subscribe(context.Background(), func(u orders.AccountUpdate) {
		got <- u
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer f.Unsubscribe()

	first := waitUpdate(t, got)
	if first.Key != "acct1" || first.Slot != 12 || len(first.Data) != 0 {
		t.Errorf("first update %+v, want bare acct1@12", first)
	}
	second := waitUpdate(t, got)
	if second.Key != "acct2" || second.Slot != 13 || string(second.Data) != "hello" {
		t.Errorf("second update %+v, want acct2@13 with payload", second)
	}
}

func TestWSFeed_UnsubscribeStopsDelivery(t *testing.T) {
	srv := wsServer(t, []string{`{"key":"acct1","slot":1}`})
	defer srv.Close()

	f := feed.NewWSFeed(wsURL(srv), zerolog.Nop())
	got := make(chan orders.AccountUpdate, 8)
	if err := f.Subscribe(context.Background(), func(u orders.AccountUpdate) {
		got <- u
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	waitUpdate(t, got)

	if err := f.Unsubscribe(); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	// Idempotent.
	if err := f.Unsubscribe(); err != nil {
		t.Fatalf("second unsubscribe: %v", err)
	}

	select {
	case u := <-got:
		t.Errorf("update %+v delivered after unsubscribe", u)
	case <-time.After(50 * time.Millisecond):
	}
}

func waitUpdate(t *testing.T, ch <-chan orders.AccountUpdate) orders.AccountUpdate {
	t.Helper()
	select {
	case u := <-ch:
		return u
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
		return orders.AccountUpdate{}
	}
}
