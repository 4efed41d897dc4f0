package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/chinmay1088/chaingate/chain"
	"github.com/shopspring/decimal"
)

// DefaultCoinIDs maps native symbols to CoinGecko coin ids.
var DefaultCoinIDs = map[string]string{
	"BTC": "bitcoin",
	"ETH": "ethereum",
	"SOL": "solana",
}

// CoinGecko fetches USD spot prices from the simple/price endpoint.
type CoinGecko struct {
	client  *Client
	baseURL string
	ids     map[string]string
}

// NewCoinGecko creates a price source. ids maps upper case symbols to coin
// ids; nil uses DefaultCoinIDs.
func NewCoinGecko(client *Client, baseURL string, ids map[string]string) *CoinGecko {
	if ids == nil {
		ids = DefaultCoinIDs
	}
	normalized := make(map[string]string, len(ids))
	for sym, id := range ids {
		normalized[chain.NormalizeSymbol(sym)] = id
	}
	return &CoinGecko{
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
		ids:     normalized,
	}
}

// FetchUSDPrice returns the current USD price of symbol.
func (g *CoinGecko) FetchUSDPrice(ctx context.Context, symbol string) (chain.Amount, error) {
	id, ok := g.ids[chain.NormalizeSymbol(symbol)]
	if !ok {
		return chain.Amount{}, fmt.Errorf("no price id configured for %s", symbol)
	}

	u := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", g.baseURL, url.QueryEscape(id))

	var result map[string]map[string]json.Number
	if err := g.client.getJSON(ctx, "fetch price", u, &result); err != nil {
		return chain.Amount{}, err
	}

	if priceData, exists := result[id]; exists {
		if usd, exists := priceData["usd"]; exists {
			price, err := decimal.NewFromString(usd.String())
			if err != nil {
				return chain.Amount{}, fmt.Errorf("failed to parse price %q: %w", usd.String(), err)
			}
			return price, nil
		}
	}

	return chain.Amount{}, fmt.Errorf("price not found for symbol: %s", symbol)
}
