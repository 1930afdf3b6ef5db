package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CollectionRecords is the MongoDB collection holding key/value documents.
const CollectionRecords = "itinerary_records"

type mongoRecord struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

type mongoBackend struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongo connects to MongoDB at uri and uses the records collection of
// database.
func NewMongo(ctx context.Context, uri, database string) (Backend, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: connect mongo: %v", ErrBackend, err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("%w: ping mongo: %v", ErrBackend, err)
	}

	return &mongoBackend{
		client:     client,
		collection: client.Database(database).Collection(CollectionRecords),
	}, nil
}

func (b *mongoBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var rec mongoRecord
	err := b.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: get %s: %v", ErrBackend, key, err)
	}
	return rec.Value, true, nil
}

func (b *mongoBackend) Set(ctx context.Context, key, value string) error {
	// Upsert keeps concurrent first writes for the same key from racing.
	_, err := b.collection.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrBackend, key, err)
	}
	return nil
}

func (b *mongoBackend) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return b.client.Disconnect(ctx)
}
