package types

// Currency is an ISO 4217 currency code, e.g. "USD" or "EUR".
type Currency string

// Asset identifies one tradeable instrument. Two assets are the same
// instrument only when both symbol and listing currency match.
type Asset struct {
	Symbol   string
	Currency Currency
}

func NewAsset(symbol string, currency Currency) Asset {
	return Asset{Symbol: symbol, Currency: currency}
}

func (a Asset) String() string {
	return a.Symbol + "." + string(a.Currency)
}
