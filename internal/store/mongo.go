package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/i474232898/location-weather/internal/location"
)

// MongoConfig identifies the collection holding saved locations.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore keeps saved locations as documents in a single collection.
// Upsert atomicity is the server's native updateOne-with-upsert.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// OpenMongo connects to the server and verifies the connection with a ping.
func OpenMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, connectionTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("verifying mongo connection: %w", err)
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Upsert updates the document matching loc's identity or inserts a new one.
func (s *MongoStore) Upsert(ctx context.Context, loc location.SavedLocation) error {
	filter := identityFilter(loc)
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "name", Value: loc.Name},
			{Key: "state", Value: loc.State},
			{Key: "country", Value: loc.Country},
			{Key: "latitude", Value: loc.Latitude},
			{Key: "longitude", Value: loc.Longitude},
			{Key: "updatedAt", Value: loc.UpdatedAt},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "id", Value: uuid.NewString()},
		}},
	}

	if _, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upserting location: %w", err)
	}
	return nil
}

// List returns every document in natural order.
func (s *MongoStore) List(ctx context.Context) ([]location.SavedLocation, error) {
	cursor, err := s.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("finding locations: %w", err)
	}

	out := make([]location.SavedLocation, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("decoding locations: %w", err)
	}
	return out, nil
}

// DeleteAll removes every document.
func (s *MongoStore) DeleteAll(ctx context.Context) (int64, error) {
	res, err := s.collection.DeleteMany(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("deleting locations: %w", err)
	}
	return res.DeletedCount, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("disconnecting from mongo: %w", err)
	}
	return nil
}

func identityFilter(loc location.SavedLocation) bson.D {
	return bson.D{
		{Key: "name", Value: loc.Name},
		{Key: "state", Value: loc.State},
		{Key: "country", Value: loc.Country},
	}
}
