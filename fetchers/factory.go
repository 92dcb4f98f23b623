package fetchers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/malusev998/currency"
)

type (
	BaseConfig struct {
		URL     string
		Timeout time.Duration
	}
	JSONFeedConfig struct {
		BaseConfig
	}
	ExchangeRatesAPIConfig struct {
		BaseConfig
		Base    string
		Symbols []string
		APIKey  string
	}
)

func (c BaseConfig) client() *http.Client {
	return &http.Client{Timeout: c.Timeout}
}

func NewCurrencyFetcher(provider currency.Provider, config interface{}) (currency.Fetcher, error) {
	switch provider {
	case currency.JSONFeedProvider:
		c, ok := config.(JSONFeedConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects JSONFeedConfig, got %T", ErrInvalidFetcherConf, provider, config)
		}

		return JSONFeedFetcher{
			URL:    c.URL,
			Client: c.client(),
		}, nil
	case currency.ExchangeRatesAPIProvider:
		c, ok := config.(ExchangeRatesAPIConfig)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects ExchangeRatesAPIConfig, got %T", ErrInvalidFetcherConf, provider, config)
		}

		return ExchangeRatesAPIFetcher{
			URL:     c.URL,
			Base:    c.Base,
			Symbols: c.Symbols,
			APIKey:  c.APIKey,
			Client:  c.client(),
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrFetcherNotFound, provider)
}
