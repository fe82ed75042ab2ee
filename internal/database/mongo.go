package database

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"motohub-api-server/config"
)

const (
	UsersCollection          = "users"
	InventoryCollection      = "inventory"
	PartRequestsCollection   = "partRequests"
	PromotionsCollection     = "promotions"
	LogsCollection           = "logs"
	CarsCollection           = "cars"
	ServiceHistoryCollection = "serviceHistory"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document already exists")
	// ErrConflict means the document exists but did not satisfy the update precondition.
	ErrConflict = errors.New("document precondition failed")
)

// Connect opens a client and pings the primary.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}

	return client, client.Database(cfg.DBName), nil
}

// EnsureIndexes creates the indexes the repositories query on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
			{Keys: bson.D{{Key: "role", Value: 1}}},
		},
		InventoryCollection: {
			{Keys: bson.D{{Key: "name", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		},
		PartRequestsCollection: {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "mechanic.id", Value: 1}}},
		},
		PromotionsCollection: {
			{Keys: bson.D{{Key: "active", Value: 1}, {Key: "validUntil", Value: 1}}},
		},
		LogsCollection: {
			{Keys: bson.D{{Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "resourceType", Value: 1}, {Key: "resourceId", Value: 1}}},
		},
		CarsCollection: {
			{Keys: bson.D{{Key: "_parent", Value: 1}}},
		},
		ServiceHistoryCollection: {
			{Keys: bson.D{{Key: "_parent", Value: 1}, {Key: "serviceDate", Value: -1}}},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("ensure indexes on %s: %w", name, err)
		}
	}
	return nil
}

// mapErr translates driver errors into package sentinels.
func mapErr(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// stockStatusExpr derives the status field from quantity and minStock inside an update pipeline.
var stockStatusExpr = bson.D{{Key: "$switch", Value: bson.D{
	{Key: "branches", Value: bson.A{
		bson.D{
			{Key: "case", Value: bson.D{{Key: "$lte", Value: bson.A{"$quantity", 0}}}},
			{Key: "then", Value: "out_of_stock"},
		},
		bson.D{
			{Key: "case", Value: bson.D{{Key: "$lte", Value: bson.A{"$quantity", "$minStock"}}}},
			{Key: "then", Value: "low_stock"},
		},
	}},
	{Key: "default", Value: "in_stock"},
}}}
