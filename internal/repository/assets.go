package repository

import (
	"context"
	"fmt"

	"quantsim/types"
)

const assetsBySymbolsSQL = `
SELECT symbol, currency
FROM assets
WHERE symbol = ANY($1)
ORDER BY symbol`

// AssetsBySymbols resolves symbols to assets with their listing
// currencies. Every requested symbol must exist.
func (db *Database) AssetsBySymbols(ctx context.Context, symbols []string) ([]types.Asset, error) {
	rows, err := db.conn.Query(ctx, assetsBySymbolsSQL, symbols)
	if err != nil {
		return nil, fmt.Errorf("query assets: %w", err)
	}
	defer rows.Close()

	found := make(map[string]types.Asset, len(symbols))
	for rows.Next() {
		var symbol, currency string
		if err := rows.Scan(&symbol, &currency); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		found[symbol] = types.NewAsset(symbol, types.Currency(currency))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	assets := make([]types.Asset, 0, len(symbols))
	for _, symbol := range symbols {
		asset, ok := found[symbol]
		if !ok {
			return nil, fmt.Errorf("symbol %s: %w", symbol, ErrAssetNotFound)
		}
		assets = append(assets, asset)
	}
	return assets, nil
}
