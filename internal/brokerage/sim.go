package brokerage

import (
	"context"

	"quantsim/internal/engine"
	"quantsim/types"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Sim is a same-day settling brokerage for backtests. Accepted orders
// become pending fills the replay driver drains after each market
// event; fills carry signed quantities, negative for sells.
//
// - Market orders fill at the adjusted close of the order date's bar
// - Limit and stop orders fill at their trigger price
// - Stop-limit orders fill at the limit (secondary) price
// - No slippage, no partial fills
// - Orders without a bar on their date, or with zero quantity, reject
type Sim struct {
	hist    *engine.History
	pending []engine.FillEvent
	seen    map[uuid.UUID]bool
	log     *zap.Logger
}

func NewSim(hist *engine.History, logger *zap.Logger) *Sim {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sim{
		hist: hist,
		seen: make(map[uuid.UUID]bool),
		log:  logger,
	}
}

func (s *Sim) SubmitOrder(_ context.Context, order engine.OrderEvent) (bool, error) {
	// Resubmissions of an already-settled order are acknowledged, not
	// refilled; the order ID is the idempotency key.
	if s.seen[order.ID] {
		return true, nil
	}

	if order.Quantity <= 0 {
		return false, nil
	}

	bar, ok := s.hist.Bar(order.Date, order.Asset)
	if !ok {
		s.log.Warn("rejecting order without market data",
			zap.String("order_id", order.ID.String()),
			zap.String("asset", order.Asset.String()),
		)
		return false, nil
	}

	var fillPrice decimal.Decimal
	switch order.Type {
	case types.TypeMarket:
		fillPrice = bar.AdjustedClose
	case types.TypeLimit, types.TypeStop:
		fillPrice = order.PrimaryPrice
	case types.TypeStopLimit:
		fillPrice = order.SecondaryPrice
	default:
		return false, nil
	}
	if !fillPrice.IsPositive() {
		return false, nil
	}

	quantity := order.Quantity
	if order.Action == types.ActionSell {
		quantity = -quantity
	}

	tradeValue := fillPrice.Mul(decimal.NewFromInt(order.Quantity))
	fee := fixedTierCommission(tradeValue)

	s.seen[order.ID] = true
	s.pending = append(s.pending, engine.NewFillEvent(
		order.Date, order.Asset, quantity, fillPrice, fee, order.Strategy,
	))
	return true, nil
}

// PendingFills drains the fills settled since the last call, in
// submission order.
func (s *Sim) PendingFills() []engine.FillEvent {
	fills := s.pending
	s.pending = nil
	return fills
}

// fixedTierCommission is an IBKR-style fixed schedule: 0.05% of trade
// value, clamped to a per-order minimum of 1.70 and maximum of 39.00 in
// the asset's currency.
func fixedTierCommission(tradeValue decimal.Decimal) decimal.Decimal {
	if tradeValue.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}

	rate := decimal.RequireFromString("0.0005")
	fee := tradeValue.Mul(rate)

	minFee := decimal.RequireFromString("1.70")
	maxFee := decimal.RequireFromString("39")

	if fee.LessThan(minFee) {
		fee = minFee
	}
	if fee.GreaterThan(maxFee) {
		fee = maxFee
	}
	return fee
}
