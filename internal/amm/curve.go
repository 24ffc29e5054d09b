// Package amm implements the constant-product virtual curve consumed by the
// analytics layer. The curve is stateless: every method takes an AMM snapshot
// and returns fresh values.
package amm

import (
	"errors"
	"math/big"

	"PerpMirror/internal/market"
	"PerpMirror/internal/math"
)

// ErrSwapExhaustsReserves is returned when a simulated swap would drive a
// reserve to zero or below.
var ErrSwapExhaustsReserves = errors.New("amm: swap exhausts reserves")

// Curve is the constant-product (x*y=k) pricing model with a peg multiplier
// translating the reserve ratio into quote-asset terms.
type Curve struct{}

func New() Curve {
	return Curve{}
}

// Price derives the instantaneous curve price from a reserve pair and peg:
// quote * peg * pricePrecision / (pegPrecision * base). A non-positive base
// reserve yields zero rather than a division fault.
func (Curve) Price(baseReserve, quoteReserve, peg *big.Int) *big.Int {
	if baseReserve.Sign() <= 0 {
		return new(big.Int)
	}
	num := new(big.Int).Mul(quoteReserve, peg)
	num.Mul(num, math.PricePrecision)
	return math.Div(num, new(big.Int).Mul(math.PegPrecision, baseReserve))
}

// UpdateToOracle recomputes the AMM as of the oracle observation by repegging
// the curve so its instantaneous price matches the oracle print. Reserves are
// untouched. An unusable oracle price leaves the AMM unchanged.
func (c Curve) UpdateToOracle(a market.AMM, oracle market.OraclePriceData) market.AMM {
	out := a.Clone()
	if oracle.Price == nil || oracle.Price.Sign() <= 0 || out.QuoteAssetReserve.Sign() <= 0 {
		return out
	}
	// Invert the Price formula for the peg that lands on the oracle price.
	num := new(big.Int).Mul(oracle.Price, math.PegPrecision)
	num.Mul(num, out.BaseAssetReserve)
	peg := math.Div(num, new(big.Int).Mul(math.PricePrecision, out.QuoteAssetReserve))
	out.PegMultiplier = math.Max(peg, big.NewInt(1))
	return out
}

// SpreadReserves applies half the configured base spread to the oracle-updated
// reserves for one side of the market. Short widens the bid down, Long widens
// the ask up; with a sane spread the adjustment can never invert bid past ask.
func (c Curve) SpreadReserves(a market.AMM, dir market.Direction, oracle market.OraclePriceData) market.SpreadReserves {
	upd := c.UpdateToOracle(a, oracle)
	quote := new(big.Int).Set(upd.QuoteAssetReserve)
	if upd.BaseSpread > 0 {
		half := big.NewInt(upd.BaseSpread / 2)
		scale := new(big.Int)
		switch dir {
		case market.DirectionLong:
			scale.Add(math.SpreadPrecision, half)
		case market.DirectionShort:
			scale.Sub(math.SpreadPrecision, half)
		}
		if scale.Sign() > 0 {
			quote = math.MulDiv(quote, scale, math.SpreadPrecision)
		}
	}
	return market.SpreadReserves{
		BaseAssetReserve:  new(big.Int).Set(upd.BaseAssetReserve),
		QuoteAssetReserve: quote,
		PegMultiplier:     new(big.Int).Set(upd.PegMultiplier),
	}
}

// ReservesAfterSwap simulates swapping amount units of the given asset kind
// in the given direction, holding the product invariant. Returns the new
// (quote, base) reserve pair.
func (Curve) ReservesAfterSwap(a market.AMM, kind market.AssetKind, amount *big.Int, dir market.SwapDirection) (quoteReserve, baseReserve *big.Int, err error) {
	if amount.Sign() < 0 {
		return nil, nil, errors.New("amm: negative swap amount")
	}
	k := new(big.Int).Mul(a.BaseAssetReserve, a.QuoteAssetReserve)

	switch kind {
	case market.AssetBase:
		newBase := new(big.Int).Set(a.BaseAssetReserve)
		if dir == market.SwapAdd {
			newBase.Add(newBase, amount)
		} else {
			newBase.Sub(newBase, amount)
		}
		if newBase.Sign() <= 0 {
			return nil, nil, ErrSwapExhaustsReserves
		}
		return math.Div(k, newBase), newBase, nil
	case market.AssetQuote:
		newQuote := new(big.Int).Set(a.QuoteAssetReserve)
		if dir == market.SwapAdd {
			newQuote.Add(newQuote, amount)
		} else {
			newQuote.Sub(newQuote, amount)
		}
		if newQuote.Sign() <= 0 {
			return nil, nil, ErrSwapExhaustsReserves
		}
		return newQuote, math.Div(k, newQuote), nil
	default:
		panic("amm: unknown asset kind")
	}
}

// OpenBidAskBounds returns how much base-asset liquidity the curve itself can
// absorb before hitting its configured reserve bounds, standardized to the
// order step size. The ask bound is negative, matching the ledger convention
// that asks reduce the base reserve.
func (Curve) OpenBidAskBounds(baseReserve, minReserve, maxReserve, stepSize *big.Int) (bids, asks *big.Int) {
	bidRoom := new(big.Int).Sub(baseReserve, minReserve)
	if bidRoom.Sign() < 0 {
		bidRoom.SetInt64(0)
	}
	askRoom := new(big.Int).Sub(maxReserve, baseReserve)
	if askRoom.Sign() < 0 {
		askRoom.SetInt64(0)
	}
	bids = math.Standardize(bidRoom, stepSize)
	asks = math.Neg(math.Standardize(askRoom, stepSize))
	return bids, asks
}

// SwapDirectionFor maps a taker direction onto the reserve effect for the
// swapped asset: buying base removes it from the curve, selling adds it.
func SwapDirectionFor(kind market.AssetKind, dir market.Direction) market.SwapDirection {
	if kind == market.AssetBase {
		if dir == market.DirectionLong {
			return market.SwapRemove
		}
		return market.SwapAdd
	}
	if dir == market.DirectionLong {
		return market.SwapAdd
	}
	return market.SwapRemove
}
