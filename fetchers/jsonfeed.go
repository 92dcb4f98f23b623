package fetchers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/malusev998/currency"
)

// JSONFeedFetcher reads a JSON array of {currencyID, currencyCode, rate}.
type JSONFeedFetcher struct {
	URL    string
	Client *http.Client
}

func (f JSONFeedFetcher) Fetch(ctx context.Context) ([]currency.FeedRate, error) {
	if f.URL == "" {
		return nil, fmt.Errorf("%w: %w", currency.ErrFeedUnavailable, ErrNoURL)
	}

	req, err := getData(ctx, f.URL)

	if err != nil {
		return nil, err
	}

	body, err := doGet(f.Client, req)

	if err != nil {
		return nil, err
	}

	var rates []currency.FeedRate

	if err := json.Unmarshal(body, &rates); err != nil {
		return nil, fmt.Errorf("%w: %w", currency.ErrFeedDecode, err)
	}

	return rates, nil
}
