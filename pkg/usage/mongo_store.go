package usage

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MongoStore keeps one document per key in a collection.
type MongoStore struct {
	coll *mongo.Collection
}

type usageDocument struct {
	TenantID  string    `bson:"tenant_id"`
	FeatureID string    `bson:"feature_id"`
	PeriodKey string    `bson:"period_key"`
	Count     int64     `bson:"count"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore returns a Store backed by coll. Call EnsureIndexes once at startup.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique key index that upserts rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "tenant_id", Value: 1},
			{Key: "feature_id", Value: 1},
			{Key: "period_key", Value: 1},
		},
		Options: options.Index().SetUnique(true).SetName("usage_key"),
	})
	if err != nil {
		return errors.Join(ErrStoreFailure, err)
	}
	return nil
}

func mongoFilter(key Key) bson.D {
	return bson.D{
		{Key: "tenant_id", Value: key.TenantID.String()},
		{Key: "feature_id", Value: string(key.FeatureID)},
		{Key: "period_key", Value: key.PeriodKey},
	}
}

// Read implements Store.
func (s *MongoStore) Read(ctx context.Context, key Key) (int64, error) {
	var doc usageDocument
	err := s.coll.FindOne(ctx, mongoFilter(key)).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return 0, nil
		}
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return doc.Count, nil
}

// Increment implements Store with an atomic $inc upsert.
func (s *MongoStore) Increment(ctx context.Context, key Key, amount int64) (int64, error) {
	update := bson.D{
		{Key: "$inc", Value: bson.D{{Key: "count", Value: amount}}},
		{Key: "$set", Value: bson.D{{Key: "updated_at", Value: time.Now().UTC()}}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc usageDocument
	err := s.coll.FindOneAndUpdate(ctx, mongoFilter(key), update, opts).Decode(&doc)
	if mongo.IsDuplicateKeyError(err) {
		// Two first-time upserts raced on the unique index; the loser's
		// retry finds the document and updates it.
		err = s.coll.FindOneAndUpdate(ctx, mongoFilter(key), update, opts).Decode(&doc)
	}
	if err != nil {
		return 0, errors.Join(ErrStoreFailure, err)
	}
	return doc.Count, nil
}
