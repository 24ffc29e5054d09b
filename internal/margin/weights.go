// Package margin implements the tiered size-based weighting functions used by
// the analytics layer: liability ratios grow and asset weights shrink as
// position size grows, controlled by the market's imf factor.
package margin

import (
	"math/big"

	"PerpMirror/internal/math"
)

// Weights is the stateless size-weighting model.
type Weights struct{}

func New() Weights {
	return Weights{}
}

// SizePremiumWeight scales a base liability ratio up with the square root of
// position size. With a zero imf factor the base ratio is returned unchanged,
// and the result is never below the base ratio.
func (Weights) SizePremiumWeight(size, imfFactor, baseRatio, precision *big.Int) *big.Int {
	if imfFactor.Sign() <= 0 {
		return new(big.Int).Set(baseRatio)
	}

	sizeSqrt := sizeSqrt(size)

	// Start 20% below base so small sizes stay at the base ratio after the
	// max() at the end.
	num := new(big.Int).Sub(baseRatio, math.Div(baseRatio, big.NewInt(5)))
	denom := math.Div(new(big.Int).Mul(big.NewInt(100_000), math.SpotIMFPrecision), precision)

	premium := new(big.Int).Add(num, math.Div(new(big.Int).Mul(sizeSqrt, imfFactor), denom))
	return math.Max(premium, baseRatio)
}

// SizeDiscountWeight scales a base asset weight down with the square root of
// position size. With a zero imf factor the base weight is returned unchanged,
// and the result is never above the base weight.
func (Weights) SizeDiscountWeight(size, imfFactor, baseWeight *big.Int) *big.Int {
	if imfFactor.Sign() <= 0 {
		return new(big.Int).Set(baseWeight)
	}

	sizeSqrt := sizeSqrt(size)

	imfNum := new(big.Int).Add(math.SpotIMFPrecision, math.Div(math.SpotIMFPrecision, big.NewInt(10)))
	denom := new(big.Int).Add(
		math.SpotIMFPrecision,
		math.Div(new(big.Int).Mul(sizeSqrt, imfFactor), big.NewInt(100_000)),
	)

	discount := math.Div(new(big.Int).Mul(imfNum, math.SpotWeightPrecision), denom)
	return math.Min(baseWeight, discount)
}

// sizeSqrt is sqrt(|size|*10 + 1), the shared size term of both curves. The
// +1 keeps the term positive for zero size.
func sizeSqrt(size *big.Int) *big.Int {
	v := math.Abs(size)
	v.Mul(v, big.NewInt(10))
	v.Add(v, big.NewInt(1))
	return math.Sqrt(v)
}
