package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/malusev998/currency"
)

type (
	// ExchangeRatesAPIFetcher reads {base, rates, date} documents. The API
	// quotes units per one Base; Fetch reports the value of one unit in Base
	// instead, so the base itself has rate 1.
	ExchangeRatesAPIFetcher struct {
		URL     string
		Base    string
		Symbols []string
		APIKey  string
		Client  *http.Client
	}

	exchangeRateAPIResponse struct {
		Base  string             `json:"base,omitempty"`
		Rates map[string]float64 `json:"rates,omitempty"`
		Date  string             `json:"date,omitempty"`
	}
)

func (e ExchangeRatesAPIFetcher) Fetch(ctx context.Context) ([]currency.FeedRate, error) {
	url := e.URL

	if url == "" {
		url = ExchangeRatesAPIURL
	}

	req, err := getData(ctx, url)

	if err != nil {
		return nil, err
	}

	q := req.URL.Query()

	if e.Base != "" {
		q.Add("base", e.Base)
	}

	if len(e.Symbols) != 0 {
		q.Add("symbols", strings.Join(e.Symbols, ","))
	}

	if e.APIKey != "" {
		q.Add("access_key", e.APIKey)
	}

	req.URL.RawQuery = q.Encode()

	body, err := doGet(e.Client, req)

	if err != nil {
		return nil, err
	}

	var data exchangeRateAPIResponse

	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("%w: %w", currency.ErrFeedDecode, err)
	}

	if data.Base == "" || data.Rates == nil {
		return nil, fmt.Errorf("%w: response has no base or rates", currency.ErrFeedDecode)
	}

	return flattenRates(data), nil
}

func flattenRates(data exchangeRateAPIResponse) []currency.FeedRate {
	data.Rates[data.Base] = 1

	codes := make([]string, 0, len(data.Rates))

	for code := range data.Rates {
		codes = append(codes, code)
	}

	sort.Strings(codes)

	rates := make([]currency.FeedRate, 0, len(codes))

	for i, code := range codes {
		rate := data.Rates[code]

		// Non-positive quotes pass through unchanged and are rejected on merge.
		if rate > 0 {
			rate = 1 / rate
		}

		rates = append(rates, currency.FeedRate{
			CurrencyID:   i + 1,
			CurrencyCode: code,
			Rate:         rate,
		})
	}

	return rates
}
