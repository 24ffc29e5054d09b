package math

import "math/big"

// All on-ledger quantities are scaled integers. Precisions below mirror the
// ledger program's constants; analytics must never mix scales without an
// explicit conversion through one of the helpers in this package.
var (
	PricePrecision  = big.NewInt(1_000_000)     // 1e6, quote units per base unit
	QuotePrecision  = big.NewInt(1_000_000)     // 1e6
	BasePrecision   = big.NewInt(1_000_000_000) // 1e9
	MarginPrecision = big.NewInt(10_000)        // 1e4, margin ratios
	PegPrecision    = big.NewInt(1_000_000)     // 1e6, AMM peg multiplier

	SpotBalancePrecision            = big.NewInt(1_000_000_000)  // 1e9
	SpotCumulativeInterestPrecision = big.NewInt(10_000_000_000) // 1e10
	SpotWeightPrecision             = big.NewInt(10_000)         // 1e4, asset weights
	SpotIMFPrecision                = big.NewInt(1_000_000)      // 1e6, imf factors
	SpreadPrecision                 = big.NewInt(1_000_000)      // 1e6, AMM bid/ask spread

	// PriceToQuotePrecision = PricePrecision / QuotePrecision.
	PriceToQuotePrecision = big.NewInt(1)
)

// QuoteSpotMarketIndex is the index of the spot market holding the quote asset.
const QuoteSpotMarketIndex uint16 = 0

// Mul returns a*b in a fresh big.Int.
func Mul(a, b *big.Int) *big.Int {
	return new(big.Int).Mul(a, b)
}

// Div returns a/b truncated toward zero. A zero denominator is a programming
// error; callers own the guard.
func Div(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic("math: division by zero")
	}
	return new(big.Int).Quo(a, b)
}

// DivCeil returns a/b rounded away from zero when there is a remainder and the
// signs agree. Used for borrow-side balance conversion.
func DivCeil(a, b *big.Int) *big.Int {
	if b.Sign() == 0 {
		panic("math: division by zero")
	}
	q, r := new(big.Int).QuoRem(a, b, new(big.Int))
	if r.Sign() != 0 && (a.Sign() >= 0) == (b.Sign() >= 0) {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// MulDiv returns a*b/denom with the product carried at full width, so the
// intermediate never overflows regardless of operand scale.
func MulDiv(a, b, denom *big.Int) *big.Int {
	return Div(new(big.Int).Mul(a, b), denom)
}

// Abs returns |a| in a fresh big.Int.
func Abs(a *big.Int) *big.Int {
	return new(big.Int).Abs(a)
}

// Neg returns -a in a fresh big.Int.
func Neg(a *big.Int) *big.Int {
	return new(big.Int).Neg(a)
}

// Max returns a copy of the larger operand.
func Max(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Min returns a copy of the smaller operand.
func Min(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return new(big.Int).Set(a)
	}
	return new(big.Int).Set(b)
}

// Sqrt returns the integer square root of a. Negative input is a programming
// error.
func Sqrt(a *big.Int) *big.Int {
	if a.Sign() < 0 {
		panic("math: square root of negative value")
	}
	return new(big.Int).Sqrt(a)
}

// Standardize rounds amount down to a multiple of step. A non-positive step
// leaves the amount unchanged.
func Standardize(amount, step *big.Int) *big.Int {
	if step.Sign() <= 0 {
		return new(big.Int).Set(amount)
	}
	out := new(big.Int).Quo(amount, step)
	return out.Mul(out, step)
}

// Clamp bounds v into [lo, hi].
func Clamp(v, lo, hi *big.Int) *big.Int {
	if v.Cmp(lo) < 0 {
		return new(big.Int).Set(lo)
	}
	if v.Cmp(hi) > 0 {
		return new(big.Int).Set(hi)
	}
	return new(big.Int).Set(v)
}
