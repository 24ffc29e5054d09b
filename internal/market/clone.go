package market

import "math/big"

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// Clone returns a deep copy of the market. Every big.Int is reallocated so
// mutating the copy can never alias back into the source snapshot.
func (m *PerpMarket) Clone() *PerpMarket {
	out := *m
	out.AMM = m.AMM.Clone()
	out.PnlPool = PoolBalance{ScaledBalance: copyInt(m.PnlPool.ScaledBalance)}
	out.UnrealizedPnlMaxImbalance = copyInt(m.UnrealizedPnlMaxImbalance)
	out.InsuranceClaim = InsuranceClaim{
		QuoteMaxInsurance:     copyInt(m.InsuranceClaim.QuoteMaxInsurance),
		QuoteSettledInsurance: copyInt(m.InsuranceClaim.QuoteSettledInsurance),
	}
	return &out
}

// Clone returns a deep copy of the AMM state.
func (a AMM) Clone() AMM {
	out := a
	out.BaseAssetReserve = copyInt(a.BaseAssetReserve)
	out.QuoteAssetReserve = copyInt(a.QuoteAssetReserve)
	out.MinBaseAssetReserve = copyInt(a.MinBaseAssetReserve)
	out.MaxBaseAssetReserve = copyInt(a.MaxBaseAssetReserve)
	out.PegMultiplier = copyInt(a.PegMultiplier)
	out.OrderStepSize = copyInt(a.OrderStepSize)
	out.BaseAssetAmountWithAMM = copyInt(a.BaseAssetAmountWithAMM)
	out.QuoteAssetAmount = copyInt(a.QuoteAssetAmount)
	out.FeePool = PoolBalance{ScaledBalance: copyInt(a.FeePool.ScaledBalance)}
	return out
}
