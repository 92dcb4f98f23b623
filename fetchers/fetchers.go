package fetchers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/malusev998/currency"
)

const (
	ExchangeRatesAPIURL = "https://api.exchangeratesapi.io/latest"
	maxBodySize         = 4 << 20
)

var (
	ErrNoURL   = errors.New("feed URL is not configured")
	ErrClient  = errors.New("client error")
	ErrServer  = errors.New("server error")
	ErrUnknown = errors.New("unknown error")

	ErrBodyTooLarge       = errors.New("response body is too large")
	ErrFetcherNotFound    = errors.New("fetcher is not found")
	ErrInvalidFetcherConf = errors.New("fetcher config does not match provider")
)

func handleHTTPStatusCodeError(res *http.Response) error {
	switch {
	case res.StatusCode == http.StatusOK:
		return nil
	case res.StatusCode >= http.StatusBadRequest && res.StatusCode < http.StatusInternalServerError:
		return fmt.Errorf("%w: %w: status %d", currency.ErrFeedUnavailable, ErrClient, res.StatusCode)
	case res.StatusCode >= http.StatusInternalServerError:
		return fmt.Errorf("%w: %w: status %d", currency.ErrFeedUnavailable, ErrServer, res.StatusCode)
	default:
		return fmt.Errorf("%w: %w: status %d", currency.ErrFeedUnavailable, ErrUnknown, res.StatusCode)
	}
}

func getData(ctx context.Context, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", currency.ErrFeedUnavailable, err)
	}

	req.Header.Add("Accept", "application/json")

	return req, nil
}

// doGet issues req and returns the body of a 200 response.
func doGet(client *http.Client, req *http.Request) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	res, err := client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", currency.ErrFeedUnavailable, err)
	}

	defer res.Body.Close()

	if err := handleHTTPStatusCodeError(res); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(res.Body, maxBodySize+1))

	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", currency.ErrFeedUnavailable, err)
	}

	if len(body) > maxBodySize {
		return nil, fmt.Errorf("%w: %w: limit is %d bytes", currency.ErrFeedUnavailable, ErrBodyTooLarge, maxBodySize)
	}

	return body, nil
}
