package types

type TradeAction string

type OrderType string

type SignalType string

const (
	ActionBuy  TradeAction = "BUY"
	ActionSell TradeAction = "SELL"

	TypeMarket    OrderType = "MARKET"
	TypeLimit     OrderType = "LIMIT"
	TypeStop      OrderType = "STOP"
	TypeStopLimit OrderType = "STOP_LIMIT"

	SignalLong  SignalType = "LONG"
	SignalShort SignalType = "SHORT"
	SignalExit  SignalType = "EXIT"
)
