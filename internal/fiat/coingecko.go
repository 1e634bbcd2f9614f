// Package fiat converts ether amounts into fiat currencies using spot
// rates from the CoinGecko price API.
package fiat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.coingecko.com/api/v3"

// Value is a fiat valuation of an ether amount.
type Value struct {
	Currency     string  `json:"currency"`
	Value        string  `json:"value"`
	ExchangeRate float64 `json:"exchangeRate"`
}

// Converter resolves ETH to fiat at current market rates.
type Converter interface {
	Convert(ctx context.Context, ethAmount, currency string) (Value, error)
}

// CoinGeckoConverter implements Converter against the CoinGecko API.
type CoinGeckoConverter struct {
	apiURL string
	client *http.Client
}

// NewCoinGeckoConverter builds a converter using the public API endpoint.
func NewCoinGeckoConverter() *CoinGeckoConverter {
	return &CoinGeckoConverter{
		apiURL: defaultAPIURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Convert looks up the ETH spot rate for the currency and prices the
// amount to two decimal places.
func (c *CoinGeckoConverter) Convert(ctx context.Context, ethAmount, currency string) (Value, error) {
	amount, err := strconv.ParseFloat(ethAmount, 64)
	if err != nil {
		return Value{}, fmt.Errorf("invalid eth amount %q", ethAmount)
	}
	cur := strings.ToLower(currency)

	url := fmt.Sprintf("%s/simple/price?ids=ethereum&vs_currencies=%s", c.apiURL, cur)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Value{}, fmt.Errorf("build price request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Value{}, fmt.Errorf("fetch exchange rate: %w", err)
	}
	defer resp.Body.Close()

	var body map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Value{}, fmt.Errorf("decode price response: %w", err)
	}

	rate, ok := body["ethereum"][cur]
	if !ok {
		return Value{}, fmt.Errorf("no exchange rate for currency %q", currency)
	}

	return Value{
		Currency:     strings.ToUpper(currency),
		Value:        strconv.FormatFloat(amount*rate, 'f', 2, 64),
		ExchangeRate: rate,
	}, nil
}
