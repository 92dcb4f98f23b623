package fetchers_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency"
	"github.com/malusev998/currency/fetchers"
)

type (
	jsonFeedHandler   struct{}
	statusCodeHandler int
	malformedHandler  struct{}
	oversizeHandler   struct{}
)

func (h jsonFeedHandler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	if request.Header.Get("Accept") != "application/json" {
		writer.WriteHeader(http.StatusNotAcceptable)
		return
	}

	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(`[
		{"currencyID": 1, "currencyCode": "USD", "rate": 1.0},
		{"currencyID": 2, "currencyCode": "PHP", "rate": 56.5},
		{"currencyID": 3, "currencyCode": "MXN", "rate": 17.19}
	]`))
}

func (h statusCodeHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(int(h))
}

func (h malformedHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte(`{"currencyCode": "USD"}`))
}

func (h oversizeHandler) ServeHTTP(writer http.ResponseWriter, _ *http.Request) {
	writer.WriteHeader(http.StatusOK)
	_, _ = writer.Write([]byte("["))
	_, _ = writer.Write(bytes.Repeat([]byte(" "), 4<<20))
	_, _ = writer.Write([]byte("]"))
}

func TestJSONFeedFetcher_Fetch(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("DecodesArray", func(t *testing.T) {
		asserts := require.New(t)
		server := httptest.NewServer(jsonFeedHandler{})
		defer server.Close()

		rates, err := fetchers.JSONFeedFetcher{URL: server.URL}.Fetch(ctx)
		asserts.NoError(err)
		asserts.Equal([]currency.FeedRate{
			{CurrencyID: 1, CurrencyCode: "USD", Rate: 1.0},
			{CurrencyID: 2, CurrencyCode: "PHP", Rate: 56.5},
			{CurrencyID: 3, CurrencyCode: "MXN", Rate: 17.19},
		}, rates)
	})

	t.Run("MalformedBody", func(t *testing.T) {
		asserts := require.New(t)
		server := httptest.NewServer(malformedHandler{})
		defer server.Close()

		rates, err := fetchers.JSONFeedFetcher{URL: server.URL}.Fetch(ctx)
		asserts.Nil(rates)
		asserts.True(errors.Is(err, currency.ErrFeedDecode))
	})

	t.Run("StatusCodes", func(t *testing.T) {
		asserts := require.New(t)
		for code, expected := range map[int]error{
			http.StatusBadRequest:          fetchers.ErrClient,
			http.StatusNotFound:            fetchers.ErrClient,
			http.StatusInternalServerError: fetchers.ErrServer,
			http.StatusBadGateway:          fetchers.ErrServer,
			http.StatusNoContent:           fetchers.ErrUnknown,
		} {
			server := httptest.NewServer(statusCodeHandler(code))

			rates, err := fetchers.JSONFeedFetcher{URL: server.URL}.Fetch(ctx)
			asserts.Nil(rates)
			asserts.True(errors.Is(err, currency.ErrFeedUnavailable), "status %d", code)
			asserts.True(errors.Is(err, expected), "status %d", code)
			server.Close()
		}
	})

	t.Run("TransportError", func(t *testing.T) {
		asserts := require.New(t)
		server := httptest.NewServer(jsonFeedHandler{})
		url := server.URL
		server.Close()

		rates, err := fetchers.JSONFeedFetcher{URL: url}.Fetch(ctx)
		asserts.Nil(rates)
		asserts.True(errors.Is(err, currency.ErrFeedUnavailable))
	})

	t.Run("BodyTooLarge", func(t *testing.T) {
		asserts := require.New(t)
		oversize := httptest.NewServer(oversizeHandler{})
		defer oversize.Close()

		rates, err := fetchers.JSONFeedFetcher{URL: oversize.URL}.Fetch(ctx)
		asserts.Nil(rates)
		asserts.True(errors.Is(err, fetchers.ErrBodyTooLarge))
		asserts.True(errors.Is(err, currency.ErrFeedUnavailable))
		asserts.False(errors.Is(err, currency.ErrFeedDecode))
	})

	t.Run("NoURL", func(t *testing.T) {
		asserts := require.New(t)
		_, err := fetchers.JSONFeedFetcher{}.Fetch(ctx)
		asserts.True(errors.Is(err, fetchers.ErrNoURL))
		asserts.True(errors.Is(err, currency.ErrFeedUnavailable))
	})
}
