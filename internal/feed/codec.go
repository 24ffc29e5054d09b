// Package feed provides the wire-facing adapters: the gateway-backed account
// source, NATS and websocket change feeds, and the account payload decoder.
package feed

import (
	"encoding/json"
	"fmt"
	"math/big"

	"PerpMirror/internal/market"
)

// wireOrder is the gateway's JSON shape for one order slot. Scaled integers
// travel as decimal strings so they survive arbitrary magnitude.
type wireOrder struct {
	OrderID     uint32 `json:"order_id"`
	Status      string `json:"status"`
	Direction   string `json:"direction"`
	MarketType  string `json:"market_type"`
	MarketIndex uint16 `json:"market_index"`
	Price       string `json:"price"`
	BaseAmount  string `json:"base_asset_amount"`
	FilledBase  string `json:"base_asset_amount_filled"`
}

type wireAccount struct {
	Authority string      `json:"authority"`
	Orders    []wireOrder `json:"orders"`
}

// JSONDecoder decodes gateway-encoded account payloads into typed state.
type JSONDecoder struct{}

// Decode implements orders.Decoder. Malformed payloads fail without partial
// results.
func (JSONDecoder) Decode(data []byte) (*market.UserAccount, error) {
	var wa wireAccount
	if err := json.Unmarshal(data, &wa); err != nil {
		return nil, fmt.Errorf("decode account: %w", err)
	}

	out := &market.UserAccount{
		Authority: wa.Authority,
		Orders:    make([]market.Order, 0, len(wa.Orders)),
	}
	for i, wo := range wa.Orders {
		o, err := wo.toOrder()
		if err != nil {
			return nil, fmt.Errorf("decode account: order %d: %w", i, err)
		}
		out.Orders = append(out.Orders, o)
	}
	return out, nil
}

func (wo wireOrder) toOrder() (market.Order, error) {
	status, err := parseStatus(wo.Status)
	if err != nil {
		return market.Order{}, err
	}
	if status == market.OrderStatusInit {
		// Unused slot; the rest of the fields are not populated.
		return market.Order{
			Status:                market.OrderStatusInit,
			Price:                 new(big.Int),
			BaseAssetAmount:       new(big.Int),
			BaseAssetAmountFilled: new(big.Int),
		}, nil
	}
	direction, err := parseDirection(wo.Direction)
	if err != nil {
		return market.Order{}, err
	}
	marketType, err := parseMarketType(wo.MarketType)
	if err != nil {
		return market.Order{}, err
	}

	price, err := parseScaled(wo.Price, "price")
	if err != nil {
		return market.Order{}, err
	}
	baseAmount, err := parseScaled(wo.BaseAmount, "base_asset_amount")
	if err != nil {
		return market.Order{}, err
	}
	filled, err := parseScaled(wo.FilledBase, "base_asset_amount_filled")
	if err != nil {
		return market.Order{}, err
	}

	return market.Order{
		OrderID:               wo.OrderID,
		Status:                status,
		Direction:             direction,
		MarketType:            marketType,
		MarketIndex:           wo.MarketIndex,
		Price:                 price,
		BaseAssetAmount:       baseAmount,
		BaseAssetAmountFilled: filled,
	}, nil
}

func parseScaled(s, field string) (*big.Int, error) {
	if s == "" {
		return new(big.Int), nil
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("%s: malformed integer %q", field, s)
	}
	return v, nil
}

func parseStatus(s string) (market.OrderStatus, error) {
	switch s {
	case "init", "":
		return market.OrderStatusInit, nil
	case "open":
		return market.OrderStatusOpen, nil
	case "filled":
		return market.OrderStatusFilled, nil
	case "canceled":
		return market.OrderStatusCanceled, nil
	default:
		return 0, fmt.Errorf("unknown order status %q", s)
	}
}

func parseDirection(s string) (market.Direction, error) {
	switch s {
	case "long":
		return market.DirectionLong, nil
	case "short":
		return market.DirectionShort, nil
	default:
		return 0, fmt.Errorf("unknown direction %q", s)
	}
}

func parseMarketType(s string) (market.MarketType, error) {
	switch s {
	case "perp":
		return market.MarketTypePerp, nil
	case "spot":
		return market.MarketTypeSpot, nil
	default:
		return 0, fmt.Errorf("unknown market type %q", s)
	}
}
