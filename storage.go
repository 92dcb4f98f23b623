package currency

import "context"

// Storage is the durable source of truth for rates. Implementations bind
// every code and rate as a statement parameter.
type Storage interface {
	LoadAll(ctx context.Context) ([]Rate, error)
	Create(ctx context.Context, code string, rate float64) (RateWithID, error)
	Read(ctx context.Context, code string) (Rate, error)
	Update(ctx context.Context, code string, rate float64) error
	Delete(ctx context.Context, code string) error
	GetStorageProviderName() string
	Migrate(ctx context.Context) error
	Drop(ctx context.Context) error
	Close() error
}
