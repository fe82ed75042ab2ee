package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

const (
	defaultLogLimit = 50
	maxLogLimit     = 500
)

type ActivityLogRepository struct {
	coll *mongo.Collection
}

func NewActivityLogRepository(db *mongo.Database) *ActivityLogRepository {
	return &ActivityLogRepository{coll: db.Collection(LogsCollection)}
}

func (r *ActivityLogRepository) Insert(ctx context.Context, entry *models.ActivityLog) error {
	_, err := r.coll.InsertOne(ctx, entry)
	return mapErr("logs.Insert", err)
}

// List returns logs newest first. The limit is clamped to [1, 500] and defaults to 50.
func (r *ActivityLogRepository) List(ctx context.Context, f models.ActivityFilter) ([]models.ActivityLog, error) {
	const op = "logs.List"

	filter := bson.M{}
	if f.ResourceType != "" {
		filter["resourceType"] = f.ResourceType
	}
	if f.ActorID != "" {
		filter["actor.id"] = f.ActorID
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(ClampLimit(f.Limit))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	logs := []models.ActivityLog{}
	if err := cursor.All(ctx, &logs); err != nil {
		return nil, mapErr(op, err)
	}
	return logs, nil
}

func ClampLimit(limit int64) int64 {
	switch {
	case limit <= 0:
		return defaultLogLimit
	case limit > maxLogLimit:
		return maxLogLimit
	default:
		return limit
	}
}
