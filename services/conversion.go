package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/shopspring/decimal"

	"github.com/malusev998/currency"
)

type (
	// Quote tells how a stored rate relates to the reference currency.
	Quote int

	Option func(*ConversionService)

	// ConversionService serves conversions from a RateCache loaded once at
	// construction. CRUD calls go straight to the storage and leave the cache
	// untouched unless write-through is enabled, so the cache can lag behind
	// the store until Refresh is called.
	ConversionService struct {
		storage      currency.Storage
		cache        *RateCache
		logger       *slog.Logger
		quote        Quote
		precision    int32
		writeThrough bool
	}
)

const (
	// QuotePerUnit: rate is the value of one unit in the reference currency.
	QuotePerUnit Quote = iota
	// QuoteUnitsPerReference: rate is how many units buy one reference unit.
	QuoteUnitsPerReference

	DefaultPrecision int32 = 6
)

var _ currency.Service = (*ConversionService)(nil)

func WithLogger(logger *slog.Logger) Option {
	return func(c *ConversionService) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithQuote(quote Quote) Option {
	return func(c *ConversionService) {
		c.quote = quote
	}
}

func WithPrecision(places int32) Option {
	return func(c *ConversionService) {
		c.precision = places
	}
}

// WithWriteThrough applies successful CRUD writes to the cache as well.
func WithWriteThrough() Option {
	return func(c *ConversionService) {
		c.writeThrough = true
	}
}

func ParseQuote(str string) (Quote, error) {
	switch str {
	case "", "per-unit":
		return QuotePerUnit, nil
	case "per-reference":
		return QuoteUnitsPerReference, nil
	}

	return QuotePerUnit, fmt.Errorf("value %s is not valid Quote", str)
}

// NewConversionService loads every rate from storage into a fresh cache. A
// failed scan yields ErrStoreUnavailable and no service.
func NewConversionService(ctx context.Context, storage currency.Storage, opts ...Option) (*ConversionService, error) {
	c := &ConversionService{
		storage:   storage,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		quote:     QuotePerUnit,
		precision: DefaultPrecision,
	}

	for _, opt := range opts {
		opt(c)
	}

	rows, err := storage.LoadAll(ctx)

	if err != nil {
		c.logger.Error("loading exchange rates failed", "storage", storage.GetStorageProviderName(), "error", err)
		return nil, fmt.Errorf("%w: %w", currency.ErrStoreUnavailable, err)
	}

	c.cache = NewRateCache(rows)
	c.logger.Info("exchange rates loaded", "storage", storage.GetStorageProviderName(), "count", c.cache.Len())

	return c, nil
}

func validRate(rate float64) bool {
	return rate > 0 && !math.IsInf(rate, 0) && !math.IsNaN(rate)
}

func (c *ConversionService) Convert(from, to string, amount decimal.Decimal) (decimal.Decimal, error) {
	fromRate, toRate, ok := c.cache.Pair(from, to)

	if !ok {
		missing := from

		if _, known := c.cache.Get(from); known {
			missing = to
		}

		return decimal.Zero, fmt.Errorf("%w: %s", currency.ErrUnknownCurrency, missing)
	}

	if from == to {
		return amount, nil
	}

	if !validRate(fromRate) || !validRate(toRate) {
		return decimal.Zero, fmt.Errorf("%w: %s=%v %s=%v", currency.ErrInvalidRate, from, fromRate, to, toRate)
	}

	numerator, divisor := fromRate, toRate

	if c.quote == QuoteUnitsPerReference {
		numerator, divisor = toRate, fromRate
	}

	converted := amount.
		Mul(decimal.NewFromFloat(numerator)).
		Div(decimal.NewFromFloat(divisor))

	return converted.Round(c.precision), nil
}

func (c *ConversionService) GetExchangeRate(code string) (float64, error) {
	rate, ok := c.cache.Get(code)

	if !ok {
		return 0, fmt.Errorf("%w: %s", currency.ErrUnknownCurrency, code)
	}

	return rate, nil
}

func (c *ConversionService) Rates() map[string]float64 {
	return c.cache.Snapshot()
}

// Refresh reloads the cache with a full scan. The old snapshot stays in place
// when the scan fails.
func (c *ConversionService) Refresh(ctx context.Context) error {
	rows, err := c.storage.LoadAll(ctx)

	if err != nil {
		c.logger.Error("refreshing exchange rates failed", "error", err)
		return fmt.Errorf("%w: %w", currency.ErrStoreUnavailable, err)
	}

	c.cache.Replace(rows)
	c.logger.Info("exchange rates refreshed", "count", c.cache.Len())

	return nil
}

// storeError makes sure err carries kind unless it already reports a
// missing record.
func storeError(err, kind error) error {
	if errors.Is(err, kind) || errors.Is(err, currency.ErrRateNotFound) {
		return err
	}

	return fmt.Errorf("%w: %w", kind, err)
}

func (c *ConversionService) CreateRate(ctx context.Context, code string, rate float64) error {
	if !validRate(rate) {
		return fmt.Errorf("%w: %v for %s", currency.ErrInvalidRate, rate, code)
	}

	created, err := c.storage.Create(ctx, code, rate)

	if err != nil {
		c.logger.Error("creating exchange rate failed", "code", code, "error", err)
		return storeError(err, currency.ErrStoreWriteFailed)
	}

	c.logger.Debug("exchange rate created", "code", code, "rate", rate, "id", created.ID)

	if c.writeThrough {
		c.cache.Set(code, rate)
	}

	return nil
}

func (c *ConversionService) ReadRate(ctx context.Context, code string) (float64, error) {
	rate, err := c.storage.Read(ctx, code)

	if err != nil {
		c.logger.Debug("reading exchange rate failed", "code", code, "error", err)
		return 0, storeError(err, currency.ErrStoreReadFailed)
	}

	return rate.Value, nil
}

func (c *ConversionService) UpdateRate(ctx context.Context, code string, rate float64) error {
	if !validRate(rate) {
		return fmt.Errorf("%w: %v for %s", currency.ErrInvalidRate, rate, code)
	}

	if err := c.storage.Update(ctx, code, rate); err != nil {
		c.logger.Error("updating exchange rate failed", "code", code, "error", err)
		return storeError(err, currency.ErrStoreWriteFailed)
	}

	c.logger.Debug("exchange rate updated", "code", code, "rate", rate)

	if c.writeThrough {
		c.cache.Set(code, rate)
	}

	return nil
}

func (c *ConversionService) DeleteRate(ctx context.Context, code string) error {
	if err := c.storage.Delete(ctx, code); err != nil {
		c.logger.Error("deleting exchange rate failed", "code", code, "error", err)
		return storeError(err, currency.ErrStoreWriteFailed)
	}

	c.logger.Debug("exchange rate deleted", "code", code)

	if c.writeThrough {
		c.cache.Delete(code)
	}

	return nil
}
