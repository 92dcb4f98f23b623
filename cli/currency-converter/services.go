package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/malusev998/currency"
	"github.com/malusev998/currency/fetchers"
	service "github.com/malusev998/currency/services"
	"github.com/malusev998/currency/storage"
)

func createStorage(ctx context.Context, v *viper.Viper) (currency.Storage, error) {
	provider, config, err := getStorageConfig(v)

	if err != nil {
		return nil, err
	}

	return storage.NewStorage(ctx, provider, config)
}

func createConversionService(
	ctx context.Context,
	v *viper.Viper,
	st currency.Storage,
	logger *slog.Logger,
) (currency.Service, error) {
	config, err := getConfig(v)

	if err != nil {
		return nil, err
	}

	opts := []service.Option{
		service.WithLogger(logger),
		service.WithQuote(config.Quote),
		service.WithPrecision(config.Precision),
	}

	if config.WriteThrough {
		opts = append(opts, service.WithWriteThrough())
	}

	return service.NewConversionService(ctx, st, opts...)
}

func createSyncServices(
	v *viper.Viper,
	rates currency.RateManager,
	policy currency.MergePolicy,
	logger *slog.Logger,
) ([]currency.Syncer, error) {
	config, err := getConfig(v)

	if err != nil {
		return nil, err
	}

	syncers := make([]currency.Syncer, 0, len(config.Fetchers))

	for _, f := range config.Fetchers {
		c, ok := config.FetchersConfig[f]

		if !ok {
			return nil, fmt.Errorf("fetcher %s does not exist", f)
		}

		fetcher, err := fetchers.NewCurrencyFetcher(f, c)

		if err != nil {
			return nil, err
		}

		syncers = append(syncers, service.SyncService{
			Fetcher: fetcher,
			Rates:   rates,
			Policy:  policy,
			Logger:  logger.With("fetcher", string(f)),
		})
	}

	return syncers, nil
}
