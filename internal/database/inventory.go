package database

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

type PartRepository struct {
	coll *mongo.Collection
}

func NewPartRepository(db *mongo.Database) *PartRepository {
	return &PartRepository{coll: db.Collection(InventoryCollection)}
}

func (r *PartRepository) Create(ctx context.Context, part *models.Part) error {
	const op = "inventory.Create"

	now := time.Now().UTC()
	part.CreatedAt = now
	part.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, part)
	return mapErr(op, err)
}

func (r *PartRepository) FindByID(ctx context.Context, id string) (*models.Part, error) {
	const op = "inventory.FindByID"

	var part models.Part
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&part); err != nil {
		return nil, mapErr(op, err)
	}
	return &part, nil
}

// FindByIDs returns the parts keyed by id. Missing ids are simply absent.
func (r *PartRepository) FindByIDs(ctx context.Context, ids []string) (map[string]models.Part, error) {
	const op = "inventory.FindByIDs"

	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	var parts []models.Part
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, mapErr(op, err)
	}

	out := make(map[string]models.Part, len(parts))
	for _, p := range parts {
		out[p.ID] = p
	}
	return out, nil
}

func (r *PartRepository) List(ctx context.Context, f models.PartFilter) ([]models.Part, error) {
	const op = "inventory.List"

	cursor, err := r.coll.Find(ctx, BuildPartFilter(f), options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	parts := []models.Part{}
	if err := cursor.All(ctx, &parts); err != nil {
		return nil, mapErr(op, err)
	}
	return parts, nil
}

// BuildPartFilter turns a PartFilter into a Mongo query.
func BuildPartFilter(f models.PartFilter) bson.M {
	q := bson.M{}
	if f.Category != "" {
		q["category"] = f.Category
	}
	if f.Status != "" {
		q["status"] = f.Status
	}
	if f.Search != "" {
		q["name"] = bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
	}
	if f.LowStock {
		q["$expr"] = bson.M{"$lte": bson.A{"$quantity", "$minStock"}}
	}
	return q
}

// Update replaces the part only if it still carries the updatedAt it was read
// with. A restock, adjustment or edit in between yields ErrConflict.
func (r *PartRepository) Update(ctx context.Context, part *models.Part) error {
	const op = "inventory.Update"

	readAt := part.UpdatedAt.UTC().Truncate(time.Millisecond)
	now := time.Now().UTC()
	if !now.After(readAt.Add(time.Millisecond)) {
		now = readAt.Add(time.Millisecond)
	}

	part.UpdatedAt = now
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": part.ID, "updatedAt": readAt}, part)
	if err != nil {
		part.UpdatedAt = readAt
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		part.UpdatedAt = readAt
		n, err := r.coll.CountDocuments(ctx, bson.M{"_id": part.ID}, options.Count().SetLimit(1))
		if err != nil {
			return mapErr(op, err)
		}
		if n == 0 {
			return ErrNotFound
		}
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return nil
}

// bumpUpdatedAt moves updatedAt to at, and always at least one millisecond
// past the stored value so a concurrent Update sees the change.
func bumpUpdatedAt(at time.Time) bson.D {
	return bson.D{{Key: "$max", Value: bson.A{
		at,
		bson.D{{Key: "$add", Value: bson.A{"$updatedAt", 1}}},
	}}}
}

func (r *PartRepository) SetImage(ctx context.Context, id, url string) (*models.Part, error) {
	const op = "inventory.SetImage"

	var part models.Part
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"image": url, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&part)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &part, nil
}

func (r *PartRepository) Delete(ctx context.Context, id string) error {
	const op = "inventory.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Restock adds quantity to the stored value in a single update and re-derives
// the status in the same pipeline, so concurrent restocks never lose units.
func (r *PartRepository) Restock(ctx context.Context, id string, quantity int64, supplier string, at time.Time) (*models.Part, error) {
	const op = "inventory.Restock"

	set := bson.D{
		{Key: "quantity", Value: bson.D{{Key: "$add", Value: bson.A{"$quantity", quantity}}}},
		{Key: "lastRestocked", Value: at},
		{Key: "updatedAt", Value: bumpUpdatedAt(at)},
	}
	if supplier != "" {
		set = append(set, bson.E{Key: "supplier", Value: supplier})
	}

	var part models.Part
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		mongo.Pipeline{
			{{Key: "$set", Value: set}},
			{{Key: "$set", Value: bson.D{{Key: "status", Value: stockStatusExpr}}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&part)
	if err != nil {
		return nil, mapErr(op, err)
	}
	return &part, nil
}

// Adjust changes the stock by delta. A negative delta only applies when enough
// stock is on hand; otherwise ErrConflict is returned and nothing changes.
func (r *PartRepository) Adjust(ctx context.Context, id string, delta int64) (*models.Part, error) {
	const op = "inventory.Adjust"

	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}

	var part models.Part
	err := r.coll.FindOneAndUpdate(ctx,
		filter,
		mongo.Pipeline{
			{{Key: "$set", Value: bson.D{
				{Key: "quantity", Value: bson.D{{Key: "$add", Value: bson.A{"$quantity", delta}}}},
				{Key: "updatedAt", Value: bumpUpdatedAt(time.Now().UTC())},
			}}},
			{{Key: "$set", Value: bson.D{{Key: "status", Value: stockStatusExpr}}}},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&part)
	if err == nil {
		return &part, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) || delta >= 0 {
		return nil, mapErr(op, err)
	}

	// Distinguish a missing part from a short one.
	n, cerr := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if cerr != nil {
		return nil, mapErr(op, cerr)
	}
	if n == 0 {
		return nil, ErrNotFound
	}
	return nil, ErrConflict
}
