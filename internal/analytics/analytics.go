// Package analytics derives prices, spreads, margin weightings, and available
// liquidity from market snapshots. Every function is pure: inputs are treated
// as immutable and outputs are freshly allocated.
//
// The curve, weighting, and pool-conversion models are collaborators consumed
// through interfaces; internal/amm, internal/margin, and internal/spotbalance
// provide the stock implementations.
package analytics

import (
	"fmt"
	"math/big"

	"PerpMirror/internal/market"
	"PerpMirror/internal/math"
)

// AMMCurve is the virtual curve model: reserve updates, spread adjustment,
// swap simulation, synthetic liquidity bounds, and pricing.
type AMMCurve interface {
	UpdateToOracle(amm market.AMM, oracle market.OraclePriceData) market.AMM
	SpreadReserves(amm market.AMM, dir market.Direction, oracle market.OraclePriceData) market.SpreadReserves
	ReservesAfterSwap(amm market.AMM, kind market.AssetKind, amount *big.Int, dir market.SwapDirection) (quoteReserve, baseReserve *big.Int, err error)
	OpenBidAskBounds(baseReserve, minReserve, maxReserve, stepSize *big.Int) (bids, asks *big.Int)
	Price(baseReserve, quoteReserve, peg *big.Int) *big.Int
}

// MarginWeights is the tiered size-based weighting model.
type MarginWeights interface {
	SizePremiumWeight(size, imfFactor, baseRatio, precision *big.Int) *big.Int
	SizeDiscountWeight(size, imfFactor, baseWeight *big.Int) *big.Int
}

// PoolConverter turns a pool's scaled balance into real token units.
type PoolConverter interface {
	TokenAmount(scaledBalance *big.Int, spot *market.SpotMarket, balanceType market.BalanceType) *big.Int
}

// MakerBook is the read side of the local order book: all currently resting,
// unfilled orders marketable against a cross price, each exactly once.
type MakerBook interface {
	GetMakerLimitBids(marketIndex uint16, slot uint64, marketType market.MarketType, oracle market.OraclePriceData, crossPrice *big.Int) []market.RestingOrder
	GetMakerLimitAsks(marketIndex uint16, slot uint64, marketType market.MarketType, oracle market.OraclePriceData, crossPrice *big.Int) []market.RestingOrder
}

// Analytics bundles the collaborator models. The zero value is not usable;
// construct with New.
type Analytics struct {
	curve   AMMCurve
	weights MarginWeights
	pools   PoolConverter
}

func New(curve AMMCurve, weights MarginWeights, pools PoolConverter) *Analytics {
	return &Analytics{curve: curve, weights: weights, pools: pools}
}

// ReservePrice is the AMM's instantaneous mid price as of the oracle
// observation.
func (a *Analytics) ReservePrice(m *market.PerpMarket, oracle market.OraclePriceData) *big.Int {
	upd := a.curve.UpdateToOracle(m.AMM, oracle)
	return a.curve.Price(upd.BaseAssetReserve, upd.QuoteAssetReserve, upd.PegMultiplier)
}

// BidPrice prices the short-side spread-adjusted reserves.
func (a *Analytics) BidPrice(m *market.PerpMarket, oracle market.OraclePriceData) *big.Int {
	r := a.curve.SpreadReserves(m.AMM, market.DirectionShort, oracle)
	return a.curve.Price(r.BaseAssetReserve, r.QuoteAssetReserve, r.PegMultiplier)
}

// AskPrice prices the long-side spread-adjusted reserves.
func (a *Analytics) AskPrice(m *market.PerpMarket, oracle market.OraclePriceData) *big.Int {
	r := a.curve.SpreadReserves(m.AMM, market.DirectionLong, oracle)
	return a.curve.Price(r.BaseAssetReserve, r.QuoteAssetReserve, r.PegMultiplier)
}

// ProjectMarketAfterTrade simulates swapping |baseAssetAmount| base units in
// the given direction and returns an independent market copy with only the
// AMM reserves replaced. The input market is never mutated.
func (a *Analytics) ProjectMarketAfterTrade(m *market.PerpMarket, baseAssetAmount *big.Int, dir market.Direction) (*market.PerpMarket, error) {
	swapDir := market.SwapAdd
	if dir == market.DirectionLong {
		swapDir = market.SwapRemove
	}

	quote, base, err := a.curve.ReservesAfterSwap(m.AMM, market.AssetBase, math.Abs(baseAssetAmount), swapDir)
	if err != nil {
		return nil, fmt.Errorf("project market %d after trade: %w", m.MarketIndex, err)
	}

	out := m.Clone()
	out.AMM.QuoteAssetReserve = quote
	out.AMM.BaseAssetReserve = base
	return out, nil
}

// OracleSpread is price minus the oracle price.
func OracleSpread(price *big.Int, oracle market.OraclePriceData) *big.Int {
	return new(big.Int).Sub(price, oracle.Price)
}

// OracleReserveSpread is the oracle spread of the reserve price.
func (a *Analytics) OracleReserveSpread(m *market.PerpMarket, oracle market.OraclePriceData) *big.Int {
	return OracleSpread(a.ReservePrice(m, oracle), oracle)
}

// MarginRatio computes the margin requirement for a position of the given
// size. The category set is closed; anything but Initial or Maintenance is a
// caller bug and panics.
func (a *Analytics) MarginRatio(m *market.PerpMarket, size *big.Int, category market.MarginCategory) *big.Int {
	var baseRatio int64
	switch category {
	case market.MarginInitial:
		baseRatio = m.MarginRatioInitial
	case market.MarginMaintenance:
		baseRatio = m.MarginRatioMaintenance
	default:
		panic(fmt.Sprintf("analytics: invalid margin category %d", category))
	}
	return a.weights.SizePremiumWeight(size, big.NewInt(m.IMFFactor), big.NewInt(baseRatio), math.MarginPrecision)
}

// UnrealizedAssetWeight is the collateral weight applied to unrealized PnL.
// Maintenance returns the fixed maintenance weight. Initial starts from the
// fixed initial weight, scales it down by maxImbalance/netImbalance when the
// net user PnL imbalance exceeds the market's configured maximum (assets
// backed by an over-extended PnL pool count for less), then applies the size
// discount. The imbalance scaling must run before the size discount.
func (a *Analytics) UnrealizedAssetWeight(m *market.PerpMarket, quoteSpotMarket *market.SpotMarket, unrealizedPnl *big.Int, category market.MarginCategory, oracle market.OraclePriceData) *big.Int {
	switch category {
	case market.MarginMaintenance:
		return big.NewInt(m.UnrealizedPnlMaintenanceAssetWeight)
	case market.MarginInitial:
		weight := big.NewInt(m.UnrealizedPnlInitialAssetWeight)

		if m.UnrealizedPnlMaxImbalance != nil && m.UnrealizedPnlMaxImbalance.Sign() > 0 {
			imbalance := a.NetUserPnlImbalance(m, quoteSpotMarket, oracle)
			if imbalance.Cmp(m.UnrealizedPnlMaxImbalance) > 0 {
				weight = math.MulDiv(weight, m.UnrealizedPnlMaxImbalance, imbalance)
			}
		}

		return a.weights.SizeDiscountWeight(unrealizedPnl, big.NewInt(m.UnrealizedPnlIMFFactor), weight)
	default:
		panic(fmt.Sprintf("analytics: invalid margin category %d", category))
	}
}

// MarketAvailablePnl is the perp market's PnL pool in real token units.
func (a *Analytics) MarketAvailablePnl(m *market.PerpMarket, spot *market.SpotMarket) *big.Int {
	return a.pools.TokenAmount(m.PnlPool.ScaledBalance, spot, market.BalanceTypeDeposit)
}

// MarketMaxAvailableInsurance is the unsettled insurance allocation plus the
// AMM fee pool in real token units. The spot market must be the quote market;
// anything else is a caller bug and panics.
func (a *Analytics) MarketMaxAvailableInsurance(m *market.PerpMarket, spot *market.SpotMarket) *big.Int {
	if spot.MarketIndex != math.QuoteSpotMarketIndex {
		panic(fmt.Sprintf("analytics: insurance requires quote spot market, got index %d", spot.MarketIndex))
	}

	allocation := new(big.Int).Sub(m.InsuranceClaim.QuoteMaxInsurance, m.InsuranceClaim.QuoteSettledInsurance)
	feePool := a.pools.TokenAmount(m.AMM.FeePool.ScaledBalance, spot, market.BalanceTypeDeposit)
	return allocation.Add(allocation, feePool)
}

// NetUserPnl approximates the aggregate unrealized PnL of all users against
// the AMM: its net base exposure marked at the oracle price plus its quote
// cost basis.
func (a *Analytics) NetUserPnl(m *market.PerpMarket, oracle market.OraclePriceData) *big.Int {
	positionValue := new(big.Int).Mul(m.AMM.BaseAssetAmountWithAMM, oracle.Price)
	positionValue = math.Div(positionValue, math.BasePrecision)
	positionValue = math.Div(positionValue, math.PriceToQuotePrecision)
	return positionValue.Add(positionValue, m.AMM.QuoteAssetAmount)
}

// NetUserPnlImbalance is net user PnL minus the real token value of the PnL
// and fee pools. Positive means users are owed more than the pools hold.
func (a *Analytics) NetUserPnlImbalance(m *market.PerpMarket, spot *market.SpotMarket, oracle market.OraclePriceData) *big.Int {
	netPnl := a.NetUserPnl(m, oracle)
	pnlPool := a.pools.TokenAmount(m.PnlPool.ScaledBalance, spot, market.BalanceTypeDeposit)
	feePool := a.pools.TokenAmount(m.AMM.FeePool.ScaledBalance, spot, market.BalanceTypeDeposit)
	return netPnl.Sub(netPnl, pnlPool.Add(pnlPool, feePool))
}

// AvailablePerpLiquidity merges the synthetic liquidity the curve can absorb
// before hitting its reserve bounds with resting limit orders that are
// immediately marketable against the current synthetic quotes. Resting size is
// additive: no depth overlap is modeled, so the result is a conservative upper
// bound.
func (a *Analytics) AvailablePerpLiquidity(m *market.PerpMarket, oracle market.OraclePriceData, book MakerBook, slot uint64) market.LiquidityBounds {
	bids, asks := a.curve.OpenBidAskBounds(
		m.AMM.BaseAssetReserve,
		m.AMM.MinBaseAssetReserve,
		m.AMM.MaxBaseAssetReserve,
		m.AMM.OrderStepSize,
	)
	asks = math.Abs(asks)

	bidPrice := a.BidPrice(m, oracle)
	askPrice := a.AskPrice(m, oracle)

	for _, bid := range book.GetMakerLimitBids(m.MarketIndex, slot, market.MarketTypePerp, oracle, askPrice) {
		bids.Add(bids, bid.Order.Remaining())
	}
	for _, ask := range book.GetMakerLimitAsks(m.MarketIndex, slot, market.MarketTypePerp, oracle, bidPrice) {
		asks.Add(asks, ask.Order.Remaining())
	}

	return market.LiquidityBounds{Bids: bids, Asks: asks}
}
