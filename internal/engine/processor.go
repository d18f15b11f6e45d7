package engine

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnsupportedEvent = errors.New("unsupported event type")

// Processor dispatches events to the portfolio's handler for their
// variant. A call does not return until the handler chain has finished,
// including any sub-events the handler emits (a signal handler
// dispatching orders, for instance). That completion guarantee is what
// linearizes all state mutation per event.
type Processor struct {
	portfolio *Portfolio
}

func (p *Processor) Process(ctx context.Context, e Event) error {
	switch ev := e.(type) {
	case MarketEvent:
		return p.portfolio.handleMarket(ctx, ev)
	case SignalEvent:
		return p.portfolio.handleSignal(ctx, ev)
	case OrderEvent:
		return p.portfolio.handleOrder(ctx, ev)
	case FillEvent:
		return p.portfolio.handleFill(ctx, ev)
	case DividendEvent:
		return p.portfolio.handleDividend(ctx, ev)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEvent, e)
	}
}
