package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/malusev998/currency"
	"github.com/malusev998/currency/fetchers"
)

type (
	MockFetcher struct {
		mock.Mock
	}

	MockRateManager struct {
		mock.Mock
	}
)

func (m *MockFetcher) Fetch(ctx context.Context) ([]currency.FeedRate, error) {
	args := m.Called(ctx)
	return1 := args.Get(0)

	if return1 == nil {
		return nil, args.Error(1)
	}

	return return1.([]currency.FeedRate), args.Error(1)
}

func (m *MockRateManager) CreateRate(ctx context.Context, code string, rate float64) error {
	return m.Called(ctx, code, rate).Error(0)
}

func (m *MockRateManager) ReadRate(ctx context.Context, code string) (float64, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(float64), args.Error(1)
}

func (m *MockRateManager) UpdateRate(ctx context.Context, code string, rate float64) error {
	return m.Called(ctx, code, rate).Error(0)
}

func (m *MockRateManager) DeleteRate(ctx context.Context, code string) error {
	return m.Called(ctx, code).Error(0)
}

var feed = []currency.FeedRate{
	{CurrencyID: 1, CurrencyCode: "USD", Rate: 1.0},
	{CurrencyID: 2, CurrencyCode: "MXN", Rate: 17.19},
	{CurrencyID: 3, CurrencyCode: "BAD", Rate: 0},
	{CurrencyID: 4, CurrencyCode: "", Rate: 3.3},
}

func TestSyncService_Sync(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("MergeNoneDiscards", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		rates := &MockRateManager{}
		fetcher.On("Fetch", mock.Anything).Return(feed, nil)

		for _, policy := range []currency.MergePolicy{currency.MergeNone, currency.EmptyMergePolicy} {
			service := SyncService{Fetcher: fetcher, Rates: rates, Policy: policy}
			result, err := service.Sync(ctx)
			asserts.NoError(err)
			asserts.Equal(currency.SyncResult{Fetched: 4}, result)
		}

		rates.AssertNotCalled(t, "UpdateRate", mock.Anything, mock.Anything, mock.Anything)
		rates.AssertNotCalled(t, "CreateRate", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Upsert", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		rates := &MockRateManager{}
		fetcher.On("Fetch", mock.Anything).Return(feed, nil)
		rates.On("UpdateRate", mock.Anything, "USD", 1.0).Return(nil)
		rates.On("UpdateRate", mock.Anything, "MXN", 17.19).Return(fmt.Errorf("%w: MXN", currency.ErrRateNotFound))
		rates.On("CreateRate", mock.Anything, "MXN", 17.19).Return(nil)

		service := SyncService{Fetcher: fetcher, Rates: rates, Policy: currency.MergeUpsert}
		result, err := service.Sync(ctx)
		asserts.NoError(err)
		asserts.Equal(currency.SyncResult{Fetched: 4, Created: 1, Updated: 1, Skipped: 2}, result)
		rates.AssertExpectations(t)
	})

	t.Run("UpsertStopsOnWriteError", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		rates := &MockRateManager{}
		fetcher.On("Fetch", mock.Anything).Return(feed, nil)
		rates.On("UpdateRate", mock.Anything, "USD", 1.0).
			Return(fmt.Errorf("%w: deadlock", currency.ErrStoreWriteFailed))

		service := SyncService{Fetcher: fetcher, Rates: rates, Policy: currency.MergeUpsert}
		_, err := service.Sync(ctx)
		asserts.True(errors.Is(err, currency.ErrStoreWriteFailed))
		rates.AssertNotCalled(t, "UpdateRate", mock.Anything, "MXN", mock.Anything)
	})

	t.Run("FetchFails", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything).Return(nil, fmt.Errorf("%w: timeout", currency.ErrFeedUnavailable))

		service := SyncService{Fetcher: fetcher, Rates: &MockRateManager{}, Policy: currency.MergeUpsert}
		result, err := service.Sync(ctx)
		asserts.True(errors.Is(err, currency.ErrFeedUnavailable))
		asserts.Equal(currency.SyncResult{}, result)
	})

	t.Run("NoFetcher", func(t *testing.T) {
		asserts := require.New(t)
		service := SyncService{Rates: &MockRateManager{}, Policy: currency.MergeUpsert}
		_, err := service.Sync(ctx)
		asserts.True(errors.Is(err, ErrNoFetcher))
	})

	t.Run("UnknownPolicy", func(t *testing.T) {
		asserts := require.New(t)
		fetcher := &MockFetcher{}
		fetcher.On("Fetch", mock.Anything).Return([]currency.FeedRate{}, nil)

		service := SyncService{Fetcher: fetcher, Rates: &MockRateManager{}, Policy: "append"}
		_, err := service.Sync(ctx)
		asserts.EqualError(err, `merge policy "append" is not supported`)
	})
}

func TestSyncService_UpsertThroughConversionService(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	ctx := context.Background()

	conversion, st := newTestService(t, sampleRates, WithWriteThrough())
	st.On("Update", mock.Anything, "USD", 1.0).Return(nil)
	st.On("Update", mock.Anything, "MXN", 17.19).Return(fmt.Errorf("%w: MXN", currency.ErrRateNotFound))
	st.On("Create", mock.Anything, "MXN", 17.19).Return(currency.RateWithID{}, nil)

	fetcher := &MockFetcher{}
	fetcher.On("Fetch", mock.Anything).Return(feed[:2], nil)

	service := SyncService{Fetcher: fetcher, Rates: conversion, Policy: currency.MergeUpsert}
	result, err := service.Sync(ctx)
	asserts.NoError(err)
	asserts.Equal(1, result.Created)

	rate, err := conversion.GetExchangeRate("MXN")
	asserts.NoError(err)
	asserts.Equal(17.19, rate)
}

func TestSyncService_ExchangeRatesAPIMergeKeepsQuoteConvention(t *testing.T) {
	t.Parallel()
	asserts := require.New(t)
	ctx := context.Background()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
		_, _ = writer.Write([]byte(`{"base":"EUR","rates":{"USD":1.08},"date":"2024-01-02"}`))
	}))
	defer server.Close()

	conversion, st := newTestService(t, []currency.Rate{}, WithWriteThrough())
	st.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(fmt.Errorf("%w: new", currency.ErrRateNotFound))
	st.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(currency.RateWithID{}, nil)

	service := SyncService{
		Fetcher: fetchers.ExchangeRatesAPIFetcher{URL: server.URL, Base: "EUR"},
		Rates:   conversion,
		Policy:  currency.MergeUpsert,
	}

	result, err := service.Sync(ctx)
	asserts.NoError(err)
	asserts.Equal(2, result.Created)

	converted, err := conversion.Convert("EUR", "USD", decimal.NewFromInt(100))
	asserts.NoError(err)
	asserts.True(converted.Equal(decimal.NewFromInt(108)), converted.String())

	converted, err = conversion.Convert("USD", "EUR", decimal.NewFromInt(108))
	asserts.NoError(err)
	asserts.True(converted.Equal(decimal.NewFromInt(100)), converted.String())
}
