package main

import (
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"

	"github.com/malusev998/currency"
	"github.com/malusev998/currency/fetchers"
	"github.com/malusev998/currency/services"
	"github.com/malusev998/currency/storage"
)

type (
	FetchersConfig map[currency.Provider]interface{}
	Config         struct {
		Storage        storage.Provider
		StorageConfig  interface{}
		Fetchers       []currency.Provider
		FetchersConfig FetchersConfig
		Quote          services.Quote
		Precision      int32
		WriteThrough   bool
	}
)

func getMysqlDSN(config map[string]string) (string, error) {
	mysqlDriverConfig := mysql.NewConfig()

	if dsn := config["dsn"]; dsn != "" {
		parsed, err := mysql.ParseDSN(dsn)

		if err != nil {
			return "", fmt.Errorf("databases.mysql.dsn: %w", err)
		}

		mysqlDriverConfig = parsed
	} else {
		mysqlDriverConfig.User = config["user"]
		mysqlDriverConfig.Passwd = config["password"]
		mysqlDriverConfig.Addr = config["addr"]
		mysqlDriverConfig.Net = "tcp"
		mysqlDriverConfig.DBName = config["db"]
	}

	mysqlDriverConfig.ParseTime = true
	// UPDATE must report matched rows, not changed rows, for not-found detection.
	mysqlDriverConfig.ClientFoundRows = true

	return mysqlDriverConfig.FormatDSN(), nil
}

func getStorageConfig(v *viper.Viper) (storage.Provider, interface{}, error) {
	provider, err := storage.ConvertToProviderFromString(v.GetString("storage"))

	if err != nil {
		return "", nil, err
	}

	base := storage.BaseConfig{Migrate: v.GetBool("migrate")}

	switch provider {
	case storage.MySQL:
		dsn, err := getMysqlDSN(v.GetStringMapString("databases.mysql"))

		if err != nil {
			return "", nil, err
		}

		return provider, storage.MySQLConfig{
			BaseConfig:       base,
			ConnectionString: dsn,
			TableName:        v.GetString("databases.mysql.table"),
		}, nil
	case storage.Postgres:
		return provider, storage.PostgresConfig{
			BaseConfig:       base,
			ConnectionString: v.GetString("databases.postgres.dsn"),
			TableName:        v.GetString("databases.postgres.table"),
		}, nil
	case storage.MongoDB:
		return provider, storage.MongoDBConfig{
			BaseConfig:       base,
			ConnectionString: v.GetString("databases.mongodb.uri"),
			Database:         v.GetString("databases.mongodb.database"),
			Collection:       v.GetString("databases.mongodb.collection"),
		}, nil
	}

	return "", nil, storage.ErrStorageNotFound
}

func getConfig(v *viper.Viper) (*Config, error) {
	provider, storageConfig, err := getStorageConfig(v)

	if err != nil {
		return nil, err
	}

	fetchersList, err := currency.ConvertToProvidersFromStringSlice(v.GetStringSlice("fetchers.fetch"))

	if err != nil {
		return nil, err
	}

	quote, err := services.ParseQuote(v.GetString("conversion.quote"))

	if err != nil {
		return nil, err
	}

	precision := v.GetInt32("conversion.precision")

	if precision < 0 {
		return nil, fmt.Errorf("conversion.precision must not be negative, got %d", precision)
	}

	timeout := v.GetDuration("fetchers.timeout")

	return &Config{
		Storage:       provider,
		StorageConfig: storageConfig,
		Fetchers:      fetchersList,
		FetchersConfig: FetchersConfig{
			currency.JSONFeedProvider: fetchers.JSONFeedConfig{
				BaseConfig: fetchers.BaseConfig{
					URL:     v.GetString("fetchers.jsonfeed.url"),
					Timeout: timeout,
				},
			},
			currency.ExchangeRatesAPIProvider: fetchers.ExchangeRatesAPIConfig{
				BaseConfig: fetchers.BaseConfig{
					URL:     v.GetString("fetchers.exchangeratesapi.url"),
					Timeout: timeout,
				},
				Base:    v.GetString("fetchers.exchangeratesapi.base"),
				Symbols: v.GetStringSlice("fetchers.exchangeratesapi.symbols"),
				APIKey:  v.GetString("fetchers.exchangeratesapi.apikey"),
			},
		},
		Quote:        quote,
		Precision:    precision,
		WriteThrough: v.GetBool("conversion.writethrough"),
	}, nil
}
