package currency

import "errors"

var (
	ErrStoreUnavailable = errors.New("rate store is unavailable")
	ErrStoreReadFailed  = errors.New("error reading exchange rate record")
	ErrStoreWriteFailed = errors.New("error writing exchange rate record")
	ErrUnknownCurrency  = errors.New("currency code does not exist")
	ErrRateNotFound     = errors.New("exchange rate not found for the specified currency")
	ErrInvalidRate      = errors.New("invalid exchange rate")
	ErrFeedUnavailable  = errors.New("rate feed is unavailable")
	ErrFeedDecode       = errors.New("rate feed returned malformed data")
)
