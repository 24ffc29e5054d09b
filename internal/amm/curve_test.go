package amm_test

import (
	"math/big"
	"testing"

	"PerpMirror/internal/amm"
	"PerpMirror/internal/market"
)

func bn(v int64) *big.Int { return big.NewInt(v) }

func sampleAMM() market.AMM {
	return market.AMM{
		BaseAssetReserve:    bn(2_000_000_000),
		QuoteAssetReserve:   bn(2_000_000_000),
		MinBaseAssetReserve: bn(1_000_000_000),
		MaxBaseAssetReserve: bn(4_000_000_000),
		PegMultiplier:       bn(47_000_000),
		OrderStepSize:       bn(1_000_000),
		BaseSpread:          10_000, // 1%
	}
}

func oracleAt(price int64) market.OraclePriceData {
	return market.OraclePriceData{Price: bn(price), Confidence: bn(1000), Slot: 100}
}

func TestPrice_EqualReservesYieldPeg(t *testing.T) {
	c := amm.New()
	// quote*peg*pricePrecision / (pegPrecision*base) collapses to peg when
	// the reserves are equal and price/peg precision match.
	got := c.Price(bn(2_000_000_000), bn(2_000_000_000), bn(47_000_000))
	if got.Cmp(bn(47_000_000)) != 0 {
		t.Errorf("got %s, want 47000000", got)
	}
}

func TestPrice_NonPositiveBaseReserve(t *testing.T) {
	c := amm.New()
	if got := c.Price(bn(0), bn(1_000_000), bn(1_000_000)); got.Sign() != 0 {
		t.Errorf("got %s, want 0", got)
	}
}

func TestUpdateToOracle_RepegsToOraclePrice(t *testing.T) {
	c := amm.New()
	upd := c.UpdateToOracle(sampleAMM(), oracleAt(50_000_000))

	price := c.Price(upd.BaseAssetReserve, upd.QuoteAssetReserve, upd.PegMultiplier)
	if price.Cmp(bn(50_000_000)) != 0 {
		t.Errorf("updated price %s, want 50000000", price)
	}
}

func TestUpdateToOracle_DoesNotMutateInput(t *testing.T) {
	c := amm.New()
	a := sampleAMM()
	c.UpdateToOracle(a, oracleAt(90_000_000))
	if a.PegMultiplier.Cmp(bn(47_000_000)) != 0 {
		t.Error("input AMM peg was mutated")
	}
}

func TestUpdateToOracle_UnusableOracleLeavesAMMUnchanged(t *testing.T) {
	c := amm.New()
	upd := c.UpdateToOracle(sampleAMM(), market.OraclePriceData{Price: bn(0)})
	if upd.PegMultiplier.Cmp(bn(47_000_000)) != 0 {
		t.Errorf("peg %s, want 47000000", upd.PegMultiplier)
	}
}

func TestSpreadReserves_NeverInvertsMarket(t *testing.T) {
	c := amm.New()
	a := sampleAMM()
	oracle := oracleAt(50_000_000)

	mid := c.UpdateToOracle(a, oracle)
	midPrice := c.Price(mid.BaseAssetReserve, mid.QuoteAssetReserve, mid.PegMultiplier)

	askRes := c.SpreadReserves(a, market.DirectionLong, oracle)
	bidRes := c.SpreadReserves(a, market.DirectionShort, oracle)
	ask := c.Price(askRes.BaseAssetReserve, askRes.QuoteAssetReserve, askRes.PegMultiplier)
	bid := c.Price(bidRes.BaseAssetReserve, bidRes.QuoteAssetReserve, bidRes.PegMultiplier)

	if bid.Cmp(midPrice) > 0 {
		t.Errorf("bid %s above mid %s", bid, midPrice)
	}
	if ask.Cmp(midPrice) < 0 {
		t.Errorf("ask %s below mid %s", ask, midPrice)
	}
	if bid.Cmp(ask) >= 0 {
		t.Errorf("bid %s not strictly below ask %s with a positive spread", bid, ask)
	}
}

func TestSpreadReserves_ZeroSpreadCollapsesToMid(t *testing.T) {
	c := amm.New()
	a := sampleAMM()
	a.BaseSpread = 0
	oracle := oracleAt(50_000_000)

	askRes := c.SpreadReserves(a, market.DirectionLong, oracle)
	bidRes := c.SpreadReserves(a, market.DirectionShort, oracle)
	ask := c.Price(askRes.BaseAssetReserve, askRes.QuoteAssetReserve, askRes.PegMultiplier)
	bid := c.Price(bidRes.BaseAssetReserve, bidRes.QuoteAssetReserve, bidRes.PegMultiplier)

	if bid.Cmp(ask) != 0 {
		t.Errorf("zero spread: bid %s != ask %s", bid, ask)
	}
}

func TestReservesAfterSwap_HoldsInvariant(t *testing.T) {
	c := amm.New()
	a := sampleAMM()

	quote, base, err := c.ReservesAfterSwap(a, market.AssetBase, bn(1_000_000_000), market.SwapRemove)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if base.Cmp(bn(1_000_000_000)) != 0 {
		t.Errorf("base %s, want 1000000000", base)
	}
	// k = 4e18, base' = 1e9 => quote' = 4e9
	if quote.Cmp(bn(4_000_000_000)) != 0 {
		t.Errorf("quote %s, want 4000000000", quote)
	}
}

func TestReservesAfterSwap_ExhaustedReserves(t *testing.T) {
	c := amm.New()
	a := sampleAMM()

	_, _, err := c.ReservesAfterSwap(a, market.AssetBase, bn(2_000_000_000), market.SwapRemove)
	if err == nil {
		t.Fatal("expected error when swap drains the base reserve")
	}
}

func TestOpenBidAskBounds(t *testing.T) {
	c := amm.New()
	bids, asks := c.OpenBidAskBounds(bn(5000), bn(4000), bn(7000), bn(1))
	if bids.Cmp(bn(1000)) != 0 {
		t.Errorf("bids %s, want 1000", bids)
	}
	if asks.Cmp(bn(-2000)) != 0 {
		t.Errorf("asks %s, want -2000", asks)
	}
}

func TestOpenBidAskBounds_StandardizesToStep(t *testing.T) {
	c := amm.New()
	bids, asks := c.OpenBidAskBounds(bn(5050), bn(4000), bn(7025), bn(100))
	if bids.Cmp(bn(1000)) != 0 {
		t.Errorf("bids %s, want 1000", bids)
	}
	if asks.Cmp(bn(-1900)) != 0 {
		t.Errorf("asks %s, want -1900", asks)
	}
}

func TestOpenBidAskBounds_ClampsAtBounds(t *testing.T) {
	c := amm.New()
	// Reserve already past both bounds: no room either way.
	bids, asks := c.OpenBidAskBounds(bn(3000), bn(4000), bn(2500), bn(1))
	if bids.Sign() != 0 || asks.Sign() != 0 {
		t.Errorf("bids %s asks %s, want 0 0", bids, asks)
	}
}

func TestSwapDirectionFor(t *testing.T) {
	if amm.SwapDirectionFor(market.AssetBase, market.DirectionLong) != market.SwapRemove {
		t.Error("long base swap should remove base from the curve")
	}
	if amm.SwapDirectionFor(market.AssetBase, market.DirectionShort) != market.SwapAdd {
		t.Error("short base swap should add base to the curve")
	}
	if amm.SwapDirectionFor(market.AssetQuote, market.DirectionLong) != market.SwapAdd {
		t.Error("long quote swap should add quote to the curve")
	}
}
