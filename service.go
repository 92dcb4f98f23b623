package currency

import (
	"context"

	"github.com/shopspring/decimal"
)

type (
	Conversion interface {
		Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error)
		GetExchangeRate(code string) (float64, error)
		Rates() map[string]float64
	}

	RateManager interface {
		CreateRate(ctx context.Context, code string, rate float64) error
		ReadRate(ctx context.Context, code string) (float64, error)
		UpdateRate(ctx context.Context, code string, rate float64) error
		DeleteRate(ctx context.Context, code string) error
	}

	Service interface {
		Conversion
		RateManager
		Refresh(ctx context.Context) error
	}

	SyncResult struct {
		Fetched int
		Created int
		Updated int
		Skipped int
	}

	Syncer interface {
		Sync(ctx context.Context) (SyncResult, error)
	}
)
