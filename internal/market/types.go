// Package market holds the decoded on-ledger account shapes consumed by the
// synchronization engine and the analytics layer. Values are scaled integers;
// see internal/math for the precision of each field.
package market

import "math/big"

// Direction is the side of a position or order.
type Direction uint8

const (
	DirectionLong Direction = iota
	DirectionShort
)

func (d Direction) String() string {
	switch d {
	case DirectionLong:
		return "long"
	case DirectionShort:
		return "short"
	default:
		return "unknown"
	}
}

// MarketType distinguishes perpetual from spot markets.
type MarketType uint8

const (
	MarketTypePerp MarketType = iota
	MarketTypeSpot
)

func (mt MarketType) String() string {
	switch mt {
	case MarketTypePerp:
		return "perp"
	case MarketTypeSpot:
		return "spot"
	default:
		return "unknown"
	}
}

// MarginCategory selects which margin requirement a computation targets.
// The set is closed: Initial and Maintenance are the only valid values and
// analytics panics on anything else.
type MarginCategory uint8

const (
	MarginInitial MarginCategory = iota
	MarginMaintenance
)

// BalanceType selects the interest curve used when converting a scaled spot
// balance into token units.
type BalanceType uint8

const (
	BalanceTypeDeposit BalanceType = iota
	BalanceTypeBorrow
)

// SwapDirection is the AMM-side effect of a swap on one reserve.
type SwapDirection uint8

const (
	SwapAdd SwapDirection = iota
	SwapRemove
)

// AssetKind names which reserve a swap amount is denominated in.
type AssetKind uint8

const (
	AssetBase AssetKind = iota
	AssetQuote
)

// OraclePriceData is one observation from the external price oracle.
type OraclePriceData struct {
	Price      *big.Int // price precision
	Confidence *big.Int // price precision
	Slot       uint64
}

// PoolBalance is a pool's balance in spot-balance precision. Converting it to
// token units requires the owning spot market's interest state.
type PoolBalance struct {
	ScaledBalance *big.Int
}

// AMM is the virtual constant-product curve embedded in a perp market.
type AMM struct {
	BaseAssetReserve    *big.Int // base precision
	QuoteAssetReserve   *big.Int // base precision
	MinBaseAssetReserve *big.Int
	MaxBaseAssetReserve *big.Int
	PegMultiplier       *big.Int // peg precision
	OrderStepSize       *big.Int // base precision

	// BaseSpread is the full bid/ask spread in spread precision; half is
	// applied per side.
	BaseSpread int64

	// BaseAssetAmountWithAMM is the AMM's net base exposure against users.
	BaseAssetAmountWithAMM *big.Int // base precision, signed
	// QuoteAssetAmount is the AMM's accumulated quote cost basis.
	QuoteAssetAmount *big.Int // quote precision, signed

	FeePool PoolBalance
}

// InsuranceClaim tracks the perp market's allocation of the insurance fund.
type InsuranceClaim struct {
	QuoteMaxInsurance     *big.Int // quote precision
	QuoteSettledInsurance *big.Int // quote precision
}

// PerpMarket is an immutable snapshot of one perpetual market account.
// Analytics never mutates a snapshot in place; the one operation that projects
// a post-trade state returns an independent Clone.
type PerpMarket struct {
	MarketIndex uint16
	AMM         AMM
	PnlPool     PoolBalance

	MarginRatioInitial     int64 // margin precision
	MarginRatioMaintenance int64 // margin precision
	IMFFactor              int64 // spot imf precision

	UnrealizedPnlInitialAssetWeight     int64 // spot weight precision
	UnrealizedPnlMaintenanceAssetWeight int64 // spot weight precision
	UnrealizedPnlIMFFactor              int64 // spot imf precision
	UnrealizedPnlMaxImbalance           *big.Int // quote precision

	InsuranceClaim InsuranceClaim
}

// SpotMarket carries the balance scaling metadata needed to convert a pool's
// scaled balance into a real token amount.
type SpotMarket struct {
	MarketIndex               uint16
	Decimals                  uint32
	CumulativeDepositInterest *big.Int // spot cumulative interest precision
	CumulativeBorrowInterest  *big.Int // spot cumulative interest precision
}

// SpreadReserves is the AMM reserve set after a directional spread adjustment.
type SpreadReserves struct {
	BaseAssetReserve  *big.Int
	QuoteAssetReserve *big.Int
	PegMultiplier     *big.Int
}

// LiquidityBounds is the aggregated immediately-available liquidity per side.
type LiquidityBounds struct {
	Bids *big.Int
	Asks *big.Int
}

// RestingOrder is an open limit order as surfaced by the local order book,
// tagged with the owning account and the snapshot slot it was built at.
type RestingOrder struct {
	Order Order
	Owner string
	Slot  uint64
}
