package lookup

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tidwall/gjson"
)

const defaultStockBase = "https://query1.finance.yahoo.com"

type StockClient struct {
	http *http.Client
	base string
}

func NewStockClient(client *http.Client) *StockClient {
	return &StockClient{http: client, base: defaultStockBase}
}

// Quote reports the current market price for symbol.
func (s *StockClient) Quote(ctx context.Context, symbol string) (string, error) {
	u := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", s.base, url.QueryEscape(symbol))

	body, _, err := get(ctx, s.http, u)
	if err != nil {
		return "", fmt.Errorf("quote %s: %w", symbol, err)
	}

	result := gjson.GetBytes(body, "quoteResponse.result.0")
	if !result.Exists() {
		return fmt.Sprintf("Couldn't get current price for %s", symbol), nil
	}
	price := result.Get("regularMarketPrice")
	if !price.Exists() {
		return fmt.Sprintf("Couldn't get current price for %s", symbol), nil
	}
	name := result.Get("shortName").String()
	if name == "" {
		name = symbol
	}

	return fmt.Sprintf("%s stock price is $%.2f", name, price.Float()), nil
}
