package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const defaultTimeout = 10 * time.Second

// Config captures the minimal settings required to establish a MongoDB connection.
type Config struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Connect establishes a MongoDB client, verifies connectivity with a ping, and
// returns both the client and the selected database. A default timeout is
// applied when none is provided.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(connectCtx)
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	db := client.Database(cfg.Database)
	return client, db, nil
}

// EnsureIndexes creates the indexes the driver collections are queried by.
// Creating an existing index is a no-op.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	byDriverTime := func(field string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys:    bson.D{{Key: "driver_id", Value: 1}, {Key: field, Value: -1}},
			Options: options.Index().SetName("driver_id_" + field),
		}
	}

	if _, err := db.Collection(collectionDeliveries).Indexes().CreateOne(ctx, byDriverTime("completed_at")); err != nil {
		return fmt.Errorf("mongo index %s: %w", collectionDeliveries, err)
	}
	oncePerDelivery := mongo.IndexModel{
		Keys: bson.D{{Key: "driver_id", Value: 1}, {Key: "started_at", Value: 1}},
		Options: options.Index().
			SetName("driver_id_started_at_unique").
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"started_at": bson.M{"$exists": true}}),
	}
	if _, err := db.Collection(collectionDeliveries).Indexes().CreateOne(ctx, oncePerDelivery); err != nil {
		return fmt.Errorf("mongo index %s: %w", collectionDeliveries, err)
	}
	if _, err := db.Collection(collectionTransitions).Indexes().CreateOne(ctx, byDriverTime("at")); err != nil {
		return fmt.Errorf("mongo index %s: %w", collectionTransitions, err)
	}
	return nil
}

// Pinger adapts a client to the readiness probe.
type Pinger struct {
	client *mongo.Client
}

func NewPinger(client *mongo.Client) Pinger {
	return Pinger{client: client}
}

func (p Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx, readpref.Primary())
}
