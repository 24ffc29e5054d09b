package market

import "math/big"

// OrderStatus is the lifecycle state of an order slot in a user account.
// Accounts carry a fixed-size order list, so unused slots decode with
// OrderStatusInit and are skipped everywhere.
type OrderStatus uint8

const (
	OrderStatusInit OrderStatus = iota
	OrderStatusOpen
	OrderStatusFilled
	OrderStatusCanceled
)

// Order is one order slot from a decoded user account.
type Order struct {
	OrderID     uint32
	Status      OrderStatus
	Direction   Direction
	MarketType  MarketType
	MarketIndex uint16

	Price                 *big.Int // price precision
	BaseAssetAmount       *big.Int // base precision
	BaseAssetAmountFilled *big.Int // base precision
}

// Remaining returns the unfilled size, BaseAssetAmount - BaseAssetAmountFilled.
// Never negative for a well-formed order.
func (o *Order) Remaining() *big.Int {
	return new(big.Int).Sub(o.BaseAssetAmount, o.BaseAssetAmountFilled)
}

// IsOpen reports whether the order is live on the book.
func (o *Order) IsOpen() bool {
	return o.Status == OrderStatusOpen
}

// UserAccount is the decoded per-account trading state mirrored from the
// ledger.
type UserAccount struct {
	Authority string
	Orders    []Order
}

// HasOpenOrder reports whether any order slot is still open with size left.
// The cache evicts accounts for which this is false.
func (u *UserAccount) HasOpenOrder() bool {
	for i := range u.Orders {
		o := &u.Orders[i]
		if o.IsOpen() && o.Remaining().Sign() > 0 {
			return true
		}
	}
	return false
}
