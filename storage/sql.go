package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/malusev998/currency"
)

type (
	sqlQueries struct {
		selectAll string
		insert    string
		selectOne string
		update    string
		delete    string
		create    string
		drop      string
	}

	sqlStorage struct {
		db          *sql.DB
		provider    Provider
		tableName   string
		idGenerator IDGenerator
		queries     sqlQueries
		now         func() time.Time
	}
)

// NewSQLStorage wraps an already opened database handle. provider selects
// the placeholder style and DDL dialect.
func NewSQLStorage(db *sql.DB, provider Provider, tableName string, idGenerator IDGenerator) (currency.Storage, error) {
	if tableName == "" {
		tableName = DefaultTableName
	}

	if !tableNameRegex.MatchString(tableName) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTableName, tableName)
	}

	if provider != MySQL && provider != Postgres {
		return nil, ErrStorageNotFound
	}

	if idGenerator == nil {
		idGenerator = uuidGenerator{}
	}

	return sqlStorage{
		db:          db,
		provider:    provider,
		tableName:   tableName,
		idGenerator: idGenerator,
		queries:     buildQueries(provider, tableName),
		now:         time.Now,
	}, nil
}

func bind(provider Provider, position int) string {
	if provider == Postgres {
		return "$" + strconv.Itoa(position)
	}

	return "?"
}

func buildQueries(provider Provider, table string) sqlQueries {
	q := sqlQueries{
		selectAll: fmt.Sprintf("SELECT currency_code, rate FROM %s;", table),
		insert: fmt.Sprintf(
			"INSERT INTO %s(id, currency_code, rate, created_at) VALUES (%s,%s,%s,%s);",
			table, bind(provider, 1), bind(provider, 2), bind(provider, 3), bind(provider, 4),
		),
		selectOne: fmt.Sprintf(
			"SELECT rate, created_at FROM %s WHERE currency_code = %s ORDER BY created_at DESC LIMIT 1;",
			table, bind(provider, 1),
		),
		update: fmt.Sprintf(
			"UPDATE %s SET rate = %s, created_at = %s WHERE currency_code = %s;",
			table, bind(provider, 1), bind(provider, 2), bind(provider, 3),
		),
		delete: fmt.Sprintf("DELETE FROM %s WHERE currency_code = %s;", table, bind(provider, 1)),
		drop:   fmt.Sprintf("DROP TABLE IF EXISTS %s;", table),
	}

	switch provider {
	case MySQL:
		q.create = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s("+
				"id CHAR(36) NOT NULL PRIMARY KEY, "+
				"currency_code VARCHAR(16) NOT NULL, "+
				"rate DOUBLE NOT NULL, "+
				"created_at DATETIME(6) NOT NULL, "+
				"UNIQUE KEY %s_currency_code_unique (currency_code));",
			table, table,
		)
	case Postgres:
		q.create = fmt.Sprintf(
			"CREATE TABLE IF NOT EXISTS %s("+
				"id UUID PRIMARY KEY, "+
				"currency_code VARCHAR(16) NOT NULL UNIQUE, "+
				"rate DOUBLE PRECISION NOT NULL, "+
				"created_at TIMESTAMPTZ NOT NULL);",
			table,
		)
	}

	return q
}

// withConn scopes a dedicated connection to a single call.
func (s sqlStorage) withConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)

	if err != nil {
		return err
	}

	defer conn.Close()

	return fn(conn)
}

func (s sqlStorage) LoadAll(ctx context.Context) ([]currency.Rate, error) {
	rates := make([]currency.Rate, 0)

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, s.queries.selectAll)

		if err != nil {
			return err
		}

		defer rows.Close()

		for rows.Next() {
			var rate currency.Rate

			if err := rows.Scan(&rate.Code, &rate.Value); err != nil {
				return fmt.Errorf("scan rate: %w", err)
			}

			rates = append(rates, rate)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, fmt.Errorf("%w: load rates from %s: %w", currency.ErrStoreReadFailed, s.tableName, err)
	}

	return rates, nil
}

func (s sqlStorage) Create(ctx context.Context, code string, rate float64) (currency.RateWithID, error) {
	id, err := generateUUID(s.idGenerator)

	if err != nil {
		return currency.RateWithID{}, fmt.Errorf("%w: %w", currency.ErrStoreWriteFailed, err)
	}

	createdAt := s.now().UTC()

	err = s.withConn(ctx, func(conn *sql.Conn) error {
		_, err := conn.ExecContext(ctx, s.queries.insert, id.String(), code, rate, createdAt)
		return err
	})

	if err != nil {
		return currency.RateWithID{}, fmt.Errorf("%w: create %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	return currency.RateWithID{
		Rate: currency.Rate{
			Code:      code,
			Value:     rate,
			CreatedAt: createdAt,
		},
		ID: id,
	}, nil
}

func (s sqlStorage) Read(ctx context.Context, code string) (currency.Rate, error) {
	rate := currency.Rate{Code: code}

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, s.queries.selectOne, code).Scan(&rate.Value, &rate.CreatedAt)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return currency.Rate{}, fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	if err != nil {
		return currency.Rate{}, fmt.Errorf("%w: read %s: %w", currency.ErrStoreReadFailed, code, err)
	}

	return rate, nil
}

func (s sqlStorage) exec(ctx context.Context, query string, args ...interface{}) (int64, error) {
	var affected int64

	err := s.withConn(ctx, func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, query, args...)

		if err != nil {
			return err
		}

		affected, err = res.RowsAffected()

		return err
	})

	return affected, err
}

func (s sqlStorage) Update(ctx context.Context, code string, rate float64) error {
	affected, err := s.exec(ctx, s.queries.update, rate, s.now().UTC(), code)

	if err != nil {
		return fmt.Errorf("%w: update %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	return nil
}

func (s sqlStorage) Delete(ctx context.Context, code string) error {
	affected, err := s.exec(ctx, s.queries.delete, code)

	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	if affected == 0 {
		return fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	return nil
}

func (s sqlStorage) GetStorageProviderName() string {
	return string(s.provider)
}

func (s sqlStorage) Migrate(ctx context.Context) error {
	if _, err := s.exec(ctx, s.queries.create); err != nil {
		return fmt.Errorf("%w: migrate %s: %w", currency.ErrStoreUnavailable, s.tableName, err)
	}

	return nil
}

func (s sqlStorage) Drop(ctx context.Context) error {
	if _, err := s.exec(ctx, s.queries.drop); err != nil {
		return fmt.Errorf("%w: drop %s: %w", currency.ErrStoreWriteFailed, s.tableName, err)
	}

	return nil
}

func (s sqlStorage) Close() error {
	return s.db.Close()
}
