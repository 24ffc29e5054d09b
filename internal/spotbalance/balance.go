// Package spotbalance converts pool balances held in spot-balance precision
// into real token amounts using the owning spot market's cumulative interest.
package spotbalance

import (
	"math/big"

	"PerpMirror/internal/market"
	"PerpMirror/internal/math"
)

// Converter is the stateless balance-to-token model.
type Converter struct{}

func New() Converter {
	return Converter{}
}

// TokenAmount converts a scaled balance into token units at the market's
// native decimals. Deposits round down, borrows round up, so the pool can
// never be credited more than it holds.
func (Converter) TokenAmount(scaledBalance *big.Int, spot *market.SpotMarket, balanceType market.BalanceType) *big.Int {
	var interest *big.Int
	switch balanceType {
	case market.BalanceTypeDeposit:
		interest = spot.CumulativeDepositInterest
	case market.BalanceTypeBorrow:
		interest = spot.CumulativeBorrowInterest
	default:
		panic("spotbalance: unknown balance type")
	}

	// scaled (1e9) * interest (1e10) carries 19 decimal places; divide back
	// down to the market's native decimals.
	exp := 19 - int64(spot.Decimals)
	if exp < 0 {
		exp = 0
	}
	precision := new(big.Int).Exp(big.NewInt(10), big.NewInt(exp), nil)

	raw := new(big.Int).Mul(scaledBalance, interest)
	if balanceType == market.BalanceTypeBorrow {
		return math.DivCeil(raw, precision)
	}
	return math.Div(raw, precision)
}
