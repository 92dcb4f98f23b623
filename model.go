package currency

import "time"

type (
	Rate struct {
		Code      string
		Value     float64
		CreatedAt time.Time
	}

	RateWithID struct {
		Rate
		ID interface{}
	}

	// FeedRate is a single entry of the remote rate feed.
	FeedRate struct {
		CurrencyID   int     `json:"currencyID"`
		CurrencyCode string  `json:"currencyCode"`
		Rate         float64 `json:"rate"`
	}
)
