package market_test

import (
	"math/big"
	"testing"

	"PerpMirror/internal/market"
)

func sampleMarket() *market.PerpMarket {
	return &market.PerpMarket{
		MarketIndex: 3,
		AMM: market.AMM{
			BaseAssetReserve:       big.NewInt(5_000_000_000),
			QuoteAssetReserve:      big.NewInt(5_000_000_000),
			MinBaseAssetReserve:    big.NewInt(2_000_000_000),
			MaxBaseAssetReserve:    big.NewInt(9_000_000_000),
			PegMultiplier:          big.NewInt(47_000_000),
			OrderStepSize:          big.NewInt(1_000_000),
			BaseSpread:             10_000,
			BaseAssetAmountWithAMM: big.NewInt(100_000_000_000),
			QuoteAssetAmount:       big.NewInt(-4_000_000_000),
			FeePool:                market.PoolBalance{ScaledBalance: big.NewInt(1_000_000_000)},
		},
		PnlPool:                             market.PoolBalance{ScaledBalance: big.NewInt(2_000_000_000)},
		MarginRatioInitial:                  1000,
		MarginRatioMaintenance:              500,
		IMFFactor:                           550,
		UnrealizedPnlInitialAssetWeight:     10_000,
		UnrealizedPnlMaintenanceAssetWeight: 10_000,
		UnrealizedPnlMaxImbalance:           big.NewInt(1_000_000_000),
		InsuranceClaim: market.InsuranceClaim{
			QuoteMaxInsurance:     big.NewInt(10_000_000),
			QuoteSettledInsurance: big.NewInt(4_000_000),
		},
	}
}

func TestClone_DeepCopiesBigInts(t *testing.T) {
	src := sampleMarket()
	cp := src.Clone()

	cp.AMM.BaseAssetReserve.SetInt64(1)
	cp.PnlPool.ScaledBalance.SetInt64(1)
	cp.UnrealizedPnlMaxImbalance.SetInt64(1)
	cp.InsuranceClaim.QuoteMaxInsurance.SetInt64(1)
	cp.AMM.FeePool.ScaledBalance.SetInt64(1)

	if src.AMM.BaseAssetReserve.Cmp(big.NewInt(5_000_000_000)) != 0 {
		t.Error("clone aliased AMM.BaseAssetReserve")
	}
	if src.PnlPool.ScaledBalance.Cmp(big.NewInt(2_000_000_000)) != 0 {
		t.Error("clone aliased PnlPool.ScaledBalance")
	}
	if src.UnrealizedPnlMaxImbalance.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Error("clone aliased UnrealizedPnlMaxImbalance")
	}
	if src.InsuranceClaim.QuoteMaxInsurance.Cmp(big.NewInt(10_000_000)) != 0 {
		t.Error("clone aliased InsuranceClaim.QuoteMaxInsurance")
	}
	if src.AMM.FeePool.ScaledBalance.Cmp(big.NewInt(1_000_000_000)) != 0 {
		t.Error("clone aliased AMM.FeePool.ScaledBalance")
	}
}

func TestClone_CopiesScalarFields(t *testing.T) {
	src := sampleMarket()
	cp := src.Clone()

	if cp.MarketIndex != src.MarketIndex ||
		cp.MarginRatioInitial != src.MarginRatioInitial ||
		cp.MarginRatioMaintenance != src.MarginRatioMaintenance ||
		cp.AMM.BaseSpread != src.AMM.BaseSpread {
		t.Error("clone lost scalar fields")
	}
}

func TestOrder_Remaining(t *testing.T) {
	o := market.Order{
		BaseAssetAmount:       big.NewInt(80),
		BaseAssetAmountFilled: big.NewInt(30),
	}
	if got := o.Remaining(); got.Cmp(big.NewInt(50)) != 0 {
		t.Errorf("got %s, want 50", got)
	}
}

func TestUserAccount_HasOpenOrder(t *testing.T) {
	acct := &market.UserAccount{Orders: []market.Order{
		{Status: market.OrderStatusFilled, BaseAssetAmount: big.NewInt(10), BaseAssetAmountFilled: big.NewInt(10)},
		{Status: market.OrderStatusOpen, BaseAssetAmount: big.NewInt(10), BaseAssetAmountFilled: big.NewInt(10)},
	}}
	if acct.HasOpenOrder() {
		t.Error("fully filled open slot should not count as open")
	}

	acct.Orders = append(acct.Orders, market.Order{
		Status:                market.OrderStatusOpen,
		BaseAssetAmount:       big.NewInt(10),
		BaseAssetAmountFilled: big.NewInt(0),
	})
	if !acct.HasOpenOrder() {
		t.Error("expected open order with remaining size")
	}
}

func TestUserAccount_HasOpenOrder_Empty(t *testing.T) {
	acct := &market.UserAccount{}
	if acct.HasOpenOrder() {
		t.Error("empty account should have no open orders")
	}
}
