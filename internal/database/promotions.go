package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

type PromotionRepository struct {
	coll *mongo.Collection
}

func NewPromotionRepository(db *mongo.Database) *PromotionRepository {
	return &PromotionRepository{coll: db.Collection(PromotionsCollection)}
}

func (r *PromotionRepository) Create(ctx context.Context, p *models.Promotion) error {
	const op = "promotions.Create"

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if p.Features == nil {
		p.Features = []string{}
	}

	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(op, err)
}

func (r *PromotionRepository) FindByID(ctx context.Context, id string) (*models.Promotion, error) {
	const op = "promotions.FindByID"

	var p models.Promotion
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(op, err)
	}
	return &p, nil
}

// List returns promotions ordered by expiry. With currentOnly set, only active
// promotions whose validUntil is after now are returned.
func (r *PromotionRepository) List(ctx context.Context, currentOnly bool, now time.Time) ([]models.Promotion, error) {
	const op = "promotions.List"

	filter := bson.M{}
	if currentOnly {
		filter = currentFilter(now)
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "validUntil", Value: 1}}))
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	promotions := []models.Promotion{}
	if err := cursor.All(ctx, &promotions); err != nil {
		return nil, mapErr(op, err)
	}
	return promotions, nil
}

func currentFilter(now time.Time) bson.M {
	return bson.M{"active": true, "validUntil": bson.M{"$gt": now}}
}

func (r *PromotionRepository) Update(ctx context.Context, p *models.Promotion) error {
	const op = "promotions.Update"

	p.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Toggle flips active in place and returns the promotion as stored afterwards.
func (r *PromotionRepository) Toggle(ctx context.Context, id string) (*models.Promotion, error) {
	const op = "promotions.Toggle"

	var p models.Promotion
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "active", Value: bson.D{{Key: "$not", Value: bson.A{"$active"}}}},
				{Key: "updatedAt", Value: time.Now().UTC()},
			}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&p)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &p, nil
}

func (r *PromotionRepository) Delete(ctx context.Context, id string) error {
	const op = "promotions.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ExpireBefore deactivates every active promotion whose validUntil is not after now.
func (r *PromotionRepository) ExpireBefore(ctx context.Context, now time.Time) (int64, error) {
	const op = "promotions.ExpireBefore"

	res, err := r.coll.UpdateMany(ctx,
		bson.M{"active": true, "validUntil": bson.M{"$lte": now}},
		bson.M{"$set": bson.M{"active": false, "updatedAt": now}},
	)
	if err != nil {
		return 0, mapErr(op, err)
	}
	return res.ModifiedCount, nil
}

func (r *PromotionRepository) CountCurrent(ctx context.Context, now time.Time) (int64, error) {
	const op = "promotions.CountCurrent"

	n, err := r.coll.CountDocuments(ctx, currentFilter(now))
	if err != nil {
		return 0, mapErr(op, err)
	}
	return n, nil
}
