// Package orders maintains a local, eventually-consistent cache of per-account
// trading state mirrored from the ledger, refreshed by polling or push, and
// builds order book snapshots from it.
package orders

import (
	"context"

	"PerpMirror/internal/market"
)

// Filter is the server-side scan filter. The engine only ever tracks accounts
// that currently carry at least one open order.
type Filter struct {
	OpenOrdersOnly bool
}

// AccountEntry is one raw account returned by a scan.
type AccountEntry struct {
	Key  string
	Data []byte
}

// ScanResult is a server-side-filtered snapshot read. Slot is the logical
// clock of the whole batch.
type ScanResult struct {
	Slot    uint64
	Entries []AccountEntry
}

// AccountSource is the ledger read collaborator.
type AccountSource interface {
	Scan(ctx context.Context, f Filter) (ScanResult, error)
}

// Decoder turns raw account bytes into typed state. Malformed bytes fail with
// an error; the coordinator skips that key and carries on.
type Decoder interface {
	Decode(data []byte) (*market.UserAccount, error)
}

// AccountUpdate is one external change notification. When Data is present the
// update is incremental and reconciled directly; otherwise it only signals
// that something changed and a full refresh is triggered.
type AccountUpdate struct {
	Key  string
	Data []byte
	Slot uint64
}

// ChangeFeed delivers external change notifications for the push strategy.
// Subscribe must return promptly and invoke fn from its own goroutine until
// Unsubscribe is called or ctx is cancelled. Unsubscribe is idempotent.
type ChangeFeed interface {
	Subscribe(ctx context.Context, fn func(AccountUpdate)) error
	Unsubscribe() error
}
