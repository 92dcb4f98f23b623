package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/malusev998/currency"
)

type (
	Provider   string
	BaseConfig struct {
		Migrate bool
	}
	MySQLConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	PostgresConfig struct {
		BaseConfig
		ConnectionString string
		TableName        string
		IDGenerator      IDGenerator
	}
	MongoDBConfig struct {
		BaseConfig
		ConnectionString string
		Database         string
		Collection       string
	}
)

const (
	MySQL    Provider = "mysql"
	Postgres Provider = "postgres"
	MongoDB  Provider = "mongodb"

	DefaultTableName = "currency"
)

var (
	ErrStorageNotFound  = errors.New("storage is not found")
	ErrInvalidTableName = errors.New("table name must contain only letters, digits and underscores")

	tableNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

func ConvertToProviderFromString(str string) (Provider, error) {
	switch strings.ToLower(str) {
	case "mysql":
		return MySQL, nil
	case "postgres", "postgresql":
		return Postgres, nil
	case "mongodb", "mongo":
		return MongoDB, nil
	}

	return "", fmt.Errorf("value %s is not valid Provider", str)
}

// NewStorage opens the backing store for provider, pings it and optionally
// migrates it. config must be the *Config type matching provider.
func NewStorage(ctx context.Context, provider Provider, config interface{}) (currency.Storage, error) {
	switch provider {
	case MySQL:
		c, ok := config.(MySQLConfig)
		if !ok {
			return nil, fmt.Errorf("mysql storage expects MySQLConfig, got %T", config)
		}

		return openSQL(ctx, provider, c.BaseConfig, c.ConnectionString, c.TableName, c.IDGenerator)
	case Postgres:
		c, ok := config.(PostgresConfig)
		if !ok {
			return nil, fmt.Errorf("postgres storage expects PostgresConfig, got %T", config)
		}

		return openSQL(ctx, provider, c.BaseConfig, c.ConnectionString, c.TableName, c.IDGenerator)
	case MongoDB:
		c, ok := config.(MongoDBConfig)
		if !ok {
			return nil, fmt.Errorf("mongodb storage expects MongoDBConfig, got %T", config)
		}

		return openMongo(ctx, c)
	}

	return nil, ErrStorageNotFound
}

func openSQL(
	ctx context.Context,
	provider Provider,
	base BaseConfig,
	dsn string,
	tableName string,
	idGenerator IDGenerator,
) (currency.Storage, error) {
	db, err := sql.Open(string(provider), dsn)

	if err != nil {
		return nil, fmt.Errorf("%w: open %s connection: %w", currency.ErrStoreUnavailable, provider, err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping %s: %w", currency.ErrStoreUnavailable, provider, err)
	}

	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	st, err := NewSQLStorage(db, provider, tableName, idGenerator)

	if err != nil {
		_ = db.Close()
		return nil, err
	}

	if base.Migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	return st, nil
}

func openMongo(ctx context.Context, config MongoDBConfig) (currency.Storage, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.ConnectionString))

	if err != nil {
		return nil, fmt.Errorf("%w: connect to mongodb: %w", currency.ErrStoreUnavailable, err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("%w: ping mongodb: %w", currency.ErrStoreUnavailable, err)
	}

	collection := config.Collection

	if collection == "" {
		collection = DefaultTableName
	}

	st := NewMongoStorage(client.Database(config.Database).Collection(collection))

	if config.Migrate {
		if err := st.Migrate(ctx); err != nil {
			_ = client.Disconnect(ctx)
			return nil, err
		}
	}

	return st, nil
}
