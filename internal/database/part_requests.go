package database

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

type PartRequestRepository struct {
	coll *mongo.Collection
}

func NewPartRequestRepository(db *mongo.Database) *PartRequestRepository {
	return &PartRequestRepository{coll: db.Collection(PartRequestsCollection)}
}

func (r *PartRequestRepository) Create(ctx context.Context, req *models.PartRequest) error {
	const op = "partRequests.Create"

	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, req)
	return mapErr(op, err)
}

func (r *PartRequestRepository) FindByID(ctx context.Context, id string) (*models.PartRequest, error) {
	const op = "partRequests.FindByID"

	var req models.PartRequest
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&req); err != nil {
		return nil, mapErr(op, err)
	}
	return &req, nil
}

// List returns requests newest first; urgent ones are not reordered.
func (r *PartRequestRepository) List(ctx context.Context, f models.PartRequestFilter) ([]models.PartRequest, error) {
	const op = "partRequests.List"

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.MechanicID != "" {
		filter["mechanic.id"] = f.MechanicID
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	requests := []models.PartRequest{}
	if err := cursor.All(ctx, &requests); err != nil {
		return nil, mapErr(op, err)
	}
	return requests, nil
}

// Review moves a pending request to status in one conditional update.
// ErrConflict means the request exists but is no longer pending.
func (r *PartRequestRepository) Review(ctx context.Context, id, status string, reviewer models.Identity, note string, at time.Time) (*models.PartRequest, error) {
	const op = "partRequests.Review"

	set := bson.M{
		"status":     status,
		"reviewedBy": reviewer,
		"reviewedAt": at,
		"updatedAt":  at,
	}
	if note != "" {
		set["reviewNote"] = note
	}

	var req models.PartRequest
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": models.RequestStatusPending},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&req)
	if err == nil {
		return &req, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, mapErr(op, err)
	}

	n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, mapErr(op, cerr)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}

// Reopen puts an approved request back to pending, clearing the review fields.
func (r *PartRequestRepository) Reopen(ctx context.Context, id string) error {
	const op = "partRequests.Reopen"

	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.RequestStatusApproved},
		bson.M{
			"$set":   bson.M{"status": models.RequestStatusPending, "updatedAt": time.Now().UTC()},
			"$unset": bson.M{"reviewedBy": "", "reviewedAt": "", "reviewNote": ""},
		},
	)
	return mapErr(op, err)
}

func (r *PartRequestRepository) Delete(ctx context.Context, id string) error {
	const op = "partRequests.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PartRequestRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	const op = "partRequests.CountByStatus"

	counts := map[string]int64{
		models.RequestStatusPending:  0,
		models.RequestStatusApproved: 0,
		models.RequestStatusRejected: 0,
	}
	if err := groupCount(ctx, r.coll, "$status", func(key string, n int64) {
		counts[key] = n
	}); err != nil {
		return nil, mapErr(op, err)
	}
	return counts, nil
}
