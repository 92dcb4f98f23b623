package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/malusev998/currency"
)

// SyncService pulls rates from a feed and merges them according to Policy.
// With MergeNone the feed is decoded and logged but nothing is written.
type SyncService struct {
	Fetcher currency.Fetcher
	Rates   currency.RateManager
	Policy  currency.MergePolicy
	Logger  *slog.Logger
}

var (
	_ currency.Syncer = SyncService{}

	ErrNoFetcher = errors.New("sync service has no fetcher")
)

func (s SyncService) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return s.Logger
}

func (s SyncService) Sync(ctx context.Context) (currency.SyncResult, error) {
	logger := s.logger()

	if s.Fetcher == nil {
		return currency.SyncResult{}, ErrNoFetcher
	}

	fetched, err := s.Fetcher.Fetch(ctx)
	if err != nil {
		logger.Error("fetching remote rates failed", "error", err)
		return currency.SyncResult{}, err
	}

	result := currency.SyncResult{Fetched: len(fetched)}
	logger.Info("fetched remote rates", "count", len(fetched), "policy", string(s.Policy))

	switch s.Policy {
	case currency.MergeNone, currency.EmptyMergePolicy:
		for _, rate := range fetched {
			logger.Debug("remote rate", "id", rate.CurrencyID, "code", rate.CurrencyCode, "rate", rate.Rate)
		}

		return result, nil
	case currency.MergeUpsert:
		return s.upsert(ctx, logger, fetched, result)
	}

	return result, fmt.Errorf("merge policy %q is not supported", s.Policy)
}

func (s SyncService) upsert(
	ctx context.Context,
	logger *slog.Logger,
	fetched []currency.FeedRate,
	result currency.SyncResult,
) (currency.SyncResult, error) {
	for _, rate := range fetched {
		if rate.CurrencyCode == "" || !validRate(rate.Rate) {
			logger.Warn("skipping invalid remote rate", "id", rate.CurrencyID, "code", rate.CurrencyCode, "rate", rate.Rate)
			result.Skipped++
			continue
		}

		err := s.Rates.UpdateRate(ctx, rate.CurrencyCode, rate.Rate)

		if err == nil {
			result.Updated++
			continue
		}

		if !errors.Is(err, currency.ErrRateNotFound) {
			return result, err
		}

		if err := s.Rates.CreateRate(ctx, rate.CurrencyCode, rate.Rate); err != nil {
			return result, err
		}

		result.Created++
	}

	logger.Info("remote rates merged", "created", result.Created, "updated", result.Updated, "skipped", result.Skipped)

	return result, nil
}
