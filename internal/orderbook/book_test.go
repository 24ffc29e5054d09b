package orderbook_test

import (
	"math/big"
	"testing"

	"PerpMirror/internal/market"
	"PerpMirror/internal/orderbook"
)

func bn(v int64) *big.Int { return big.NewInt(v) }

func limitOrder(id uint32, dir market.Direction, price, size, filled int64) market.Order {
	return market.Order{
		OrderID:               id,
		Status:                market.OrderStatusOpen,
		Direction:             dir,
		MarketType:            market.MarketTypePerp,
		MarketIndex:           0,
		Price:                 bn(price),
		BaseAssetAmount:       bn(size),
		BaseAssetAmountFilled: bn(filled),
	}
}

func noOracle() market.OraclePriceData {
	return market.OraclePriceData{Price: bn(0), Confidence: bn(0)}
}

func TestInsertOrder_SkipsNonResting(t *testing.T) {
	b := orderbook.New()

	closed := limitOrder(1, market.DirectionLong, 100, 10, 0)
	closed.Status = market.OrderStatusCanceled
	b.InsertOrder(closed, "alice", 1)

	filled := limitOrder(2, market.DirectionLong, 100, 10, 10)
	b.InsertOrder(filled, "alice", 1)

	unpriced := limitOrder(3, market.DirectionLong, 0, 10, 0)
	b.InsertOrder(unpriced, "alice", 1)

	if b.Size() != 0 {
		t.Errorf("book size %d, want 0", b.Size())
	}
}

func TestGetMakerLimitBids_CrossableOnly(t *testing.T) {
	b := orderbook.New()
	b.InsertOrder(limitOrder(1, market.DirectionLong, 105, 10, 0), "alice", 7)
	b.InsertOrder(limitOrder(2, market.DirectionLong, 100, 20, 0), "bob", 7)
	b.InsertOrder(limitOrder(3, market.DirectionLong, 95, 30, 0), "carol", 7)

	bids := b.GetMakerLimitBids(0, 7, market.MarketTypePerp, noOracle(), bn(100))
	if len(bids) != 2 {
		t.Fatalf("got %d crossable bids, want 2", len(bids))
	}
	// Best price first.
	if bids[0].Order.OrderID != 1 || bids[1].Order.OrderID != 2 {
		t.Errorf("got order ids %d, %d; want 1, 2", bids[0].Order.OrderID, bids[1].Order.OrderID)
	}
	if bids[0].Owner != "alice" || bids[0].Slot != 7 {
		t.Errorf("owner/slot tags lost: %q slot %d", bids[0].Owner, bids[0].Slot)
	}
}

func TestGetMakerLimitAsks_CrossableOnly(t *testing.T) {
	b := orderbook.New()
	b.InsertOrder(limitOrder(1, market.DirectionShort, 95, 10, 0), "alice", 7)
	b.InsertOrder(limitOrder(2, market.DirectionShort, 100, 20, 0), "bob", 7)
	b.InsertOrder(limitOrder(3, market.DirectionShort, 105, 30, 0), "carol", 7)

	asks := b.GetMakerLimitAsks(0, 7, market.MarketTypePerp, noOracle(), bn(100))
	if len(asks) != 2 {
		t.Fatalf("got %d crossable asks, want 2", len(asks))
	}
	if asks[0].Order.OrderID != 1 || asks[1].Order.OrderID != 2 {
		t.Errorf("got order ids %d, %d; want 1, 2", asks[0].Order.OrderID, asks[1].Order.OrderID)
	}
}

func TestBook_SegregatesMarkets(t *testing.T) {
	b := orderbook.New()

	other := limitOrder(1, market.DirectionLong, 100, 10, 0)
	other.MarketIndex = 9
	b.InsertOrder(other, "alice", 1)

	spot := limitOrder(2, market.DirectionLong, 100, 10, 0)
	spot.MarketType = market.MarketTypeSpot
	b.InsertOrder(spot, "alice", 1)

	bids := b.GetMakerLimitBids(0, 1, market.MarketTypePerp, noOracle(), bn(1))
	if len(bids) != 0 {
		t.Errorf("got %d bids for market 0, want 0", len(bids))
	}
}

func TestBook_EachOrderAppearsOnce(t *testing.T) {
	b := orderbook.New()
	for i := uint32(1); i <= 5; i++ {
		b.InsertOrder(limitOrder(i, market.DirectionLong, 100+int64(i), 10, 0), "alice", 1)
	}

	bids := b.GetMakerLimitBids(0, 1, market.MarketTypePerp, noOracle(), bn(0))
	seen := make(map[uint32]bool)
	for _, ro := range bids {
		if seen[ro.Order.OrderID] {
			t.Fatalf("order %d returned twice", ro.Order.OrderID)
		}
		seen[ro.Order.OrderID] = true
	}
	if len(seen) != 5 {
		t.Errorf("got %d distinct orders, want 5", len(seen))
	}
}
