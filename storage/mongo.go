package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/malusev998/currency"
)

type (
	mongoStorage struct {
		collection *mongo.Collection
		now        func() time.Time
	}

	rateDocument struct {
		ID        primitive.ObjectID `bson:"_id,omitempty"`
		Code      string             `bson:"currencyCode"`
		Rate      float64            `bson:"rate"`
		CreatedAt time.Time          `bson:"createdAt"`
	}
)

func NewMongoStorage(collection *mongo.Collection) currency.Storage {
	return mongoStorage{
		collection: collection,
		now:        time.Now,
	}
}

func (m mongoStorage) LoadAll(ctx context.Context) ([]currency.Rate, error) {
	cursor, err := m.collection.Find(ctx, bson.D{})

	if err != nil {
		return nil, fmt.Errorf("%w: load rates from %s: %w", currency.ErrStoreReadFailed, m.collection.Name(), err)
	}

	defer cursor.Close(ctx)

	rates := make([]currency.Rate, 0)

	for cursor.Next(ctx) {
		var doc rateDocument

		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: decode rate: %w", currency.ErrStoreReadFailed, err)
		}

		rates = append(rates, currency.Rate{
			Code:      doc.Code,
			Value:     doc.Rate,
			CreatedAt: doc.CreatedAt,
		})
	}

	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rates: %w", currency.ErrStoreReadFailed, err)
	}

	return rates, nil
}

func (m mongoStorage) Create(ctx context.Context, code string, rate float64) (currency.RateWithID, error) {
	doc := rateDocument{
		Code:      code,
		Rate:      rate,
		CreatedAt: m.now().UTC(),
	}

	result, err := m.collection.InsertOne(ctx, doc)

	if err != nil {
		return currency.RateWithID{}, fmt.Errorf("%w: create %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	return currency.RateWithID{
		Rate: currency.Rate{
			Code:      doc.Code,
			Value:     doc.Rate,
			CreatedAt: doc.CreatedAt,
		},
		ID: result.InsertedID,
	}, nil
}

func (m mongoStorage) Read(ctx context.Context, code string) (currency.Rate, error) {
	var doc rateDocument

	opts := options.FindOne().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	err := m.collection.FindOne(ctx, bson.M{"currencyCode": code}, opts).Decode(&doc)

	if errors.Is(err, mongo.ErrNoDocuments) {
		return currency.Rate{}, fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	if err != nil {
		return currency.Rate{}, fmt.Errorf("%w: read %s: %w", currency.ErrStoreReadFailed, code, err)
	}

	return currency.Rate{
		Code:      doc.Code,
		Value:     doc.Rate,
		CreatedAt: doc.CreatedAt,
	}, nil
}

func (m mongoStorage) Update(ctx context.Context, code string, rate float64) error {
	result, err := m.collection.UpdateOne(
		ctx,
		bson.M{"currencyCode": code},
		bson.M{"$set": bson.M{"rate": rate, "createdAt": m.now().UTC()}},
	)

	if err != nil {
		return fmt.Errorf("%w: update %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	return nil
}

func (m mongoStorage) Delete(ctx context.Context, code string) error {
	result, err := m.collection.DeleteOne(ctx, bson.M{"currencyCode": code})

	if err != nil {
		return fmt.Errorf("%w: delete %s: %w", currency.ErrStoreWriteFailed, code, err)
	}

	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", currency.ErrRateNotFound, code)
	}

	return nil
}

func (m mongoStorage) GetStorageProviderName() string {
	return string(MongoDB)
}

func (m mongoStorage) Migrate(ctx context.Context) error {
	_, err := m.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "currencyCode", Value: 1}},
		Options: options.Index().SetUnique(true),
	})

	if err != nil {
		return fmt.Errorf("%w: migrate %s: %w", currency.ErrStoreUnavailable, m.collection.Name(), err)
	}

	return nil
}

func (m mongoStorage) Drop(ctx context.Context) error {
	if err := m.collection.Drop(ctx); err != nil {
		return fmt.Errorf("%w: drop %s: %w", currency.ErrStoreWriteFailed, m.collection.Name(), err)
	}

	return nil
}

func (m mongoStorage) Close() error {
	return m.collection.Database().Client().Disconnect(context.Background())
}
