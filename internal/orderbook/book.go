// Package orderbook keeps a locally reconstructed view of resting limit
// orders, indexed per market and side. Books are built in one pass by the
// snapshot builder and read-only afterwards; there is no matching here.
package orderbook

import (
	"math/big"
	"sort"

	"PerpMirror/internal/market"
)

type sideKey struct {
	marketType  market.MarketType
	marketIndex uint16
	direction   market.Direction
}

// Book is a price-sorted index of resting limit orders. Bids are kept best
// (highest) first, asks best (lowest) first; ties preserve insertion order.
type Book struct {
	sides map[sideKey][]market.RestingOrder
}

func New() *Book {
	return &Book{sides: make(map[sideKey][]market.RestingOrder)}
}

// InsertOrder adds one order slot to the book, tagged with its owner and the
// snapshot slot. Slots that are not open, have nothing left to fill, or carry
// no limit price are not resting liquidity and are dropped.
func (b *Book) InsertOrder(o market.Order, owner string, slot uint64) {
	if !o.IsOpen() || o.Remaining().Sign() <= 0 {
		return
	}
	if o.Price == nil || o.Price.Sign() <= 0 {
		return
	}

	key := sideKey{marketType: o.MarketType, marketIndex: o.MarketIndex, direction: o.Direction}
	side := b.sides[key]

	resting := market.RestingOrder{Order: o, Owner: owner, Slot: slot}
	pos := sort.Search(len(side), func(i int) bool {
		cmp := side[i].Order.Price.Cmp(o.Price)
		if o.Direction == market.DirectionLong {
			return cmp < 0 // bids descend
		}
		return cmp > 0 // asks ascend
	})

	side = append(side, market.RestingOrder{})
	copy(side[pos+1:], side[pos:])
	side[pos] = resting
	b.sides[key] = side
}

// GetMakerLimitBids returns every resting buy order for the market that is
// marketable against crossPrice (priced at or above it), best price first.
// Each crossable order appears exactly once.
func (b *Book) GetMakerLimitBids(marketIndex uint16, slot uint64, marketType market.MarketType, oracle market.OraclePriceData, crossPrice *big.Int) []market.RestingOrder {
	return b.crossable(marketIndex, marketType, market.DirectionLong, crossPrice)
}

// GetMakerLimitAsks returns every resting sell order for the market that is
// marketable against crossPrice (priced at or below it), best price first.
func (b *Book) GetMakerLimitAsks(marketIndex uint16, slot uint64, marketType market.MarketType, oracle market.OraclePriceData, crossPrice *big.Int) []market.RestingOrder {
	return b.crossable(marketIndex, marketType, market.DirectionShort, crossPrice)
}

func (b *Book) crossable(marketIndex uint16, marketType market.MarketType, dir market.Direction, crossPrice *big.Int) []market.RestingOrder {
	side := b.sides[sideKey{marketType: marketType, marketIndex: marketIndex, direction: dir}]

	var out []market.RestingOrder
	for _, ro := range side {
		cmp := ro.Order.Price.Cmp(crossPrice)
		if dir == market.DirectionLong && cmp < 0 {
			break // sorted descending; nothing below crosses the ask
		}
		if dir == market.DirectionShort && cmp > 0 {
			break // sorted ascending; nothing above crosses the bid
		}
		out = append(out, ro)
	}
	return out
}

// Size returns the total number of resting orders across all markets.
func (b *Book) Size() int {
	n := 0
	for _, side := range b.sides {
		n += len(side)
	}
	return n
}
