package engine

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// submitAttempts bounds brokerage resubmission. The order ID doubles as
// an idempotency key, so retrying a transport failure cannot double an
// execution.
const submitAttempts = 3

// handleOrder submits the order to the brokerage. A rejection is an
// outcome, recorded and returned without error; only a transport
// failure that survives every retry fails the event.
func (p *Portfolio) handleOrder(ctx context.Context, ev OrderEvent) error {
	var lastErr error
	for attempt := 1; attempt <= submitAttempts; attempt++ {
		accepted, err := p.brokerage.SubmitOrder(ctx, ev)
		if err != nil {
			lastErr = err
			p.log.Warn("order submission failed",
				zap.String("order_id", ev.ID.String()),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			continue
		}
		if !accepted {
			p.log.Warn("order rejected",
				zap.String("order_id", ev.ID.String()),
				zap.String("strategy", ev.Strategy),
				zap.String("asset", ev.Asset.String()),
				zap.Int64("quantity", ev.Quantity),
			)
			return nil
		}
		p.log.Debug("order accepted",
			zap.String("order_id", ev.ID.String()),
			zap.String("strategy", ev.Strategy),
			zap.String("asset", ev.Asset.String()),
			zap.String("action", string(ev.Action)),
			zap.Int64("quantity", ev.Quantity),
		)
		return nil
	}
	return fmt.Errorf("submit order %s after %d attempts: %w", ev.ID, submitAttempts, lastErr)
}
