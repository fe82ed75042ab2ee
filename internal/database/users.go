package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(UsersCollection)}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	const op = "users.Create"

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, user)
	return mapErr(op, err)
}

func (r *UserRepository) findOne(ctx context.Context, op string, filter bson.M) (*models.User, error) {
	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, mapErr(op, err)
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, "users.FindByID", bson.M{"_id": id})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "users.FindByEmail", bson.M{"email": email})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "users.FindByUsername", bson.M{"username": username})
}

// List returns users, optionally restricted to one role, sorted by creation date.
func (r *UserRepository) List(ctx context.Context, role models.Role) ([]models.User, error) {
	const op = "users.List"

	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, mapErr(op, err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	const op = "users.Update"

	user.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, id string, role models.Role) error {
	return r.set(ctx, "users.UpdateRole", id, bson.M{"role": role, "updatedAt": time.Now().UTC()})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.set(ctx, "users.UpdateLastLogin", id, bson.M{"lastLogin": at})
}

func (r *UserRepository) set(ctx context.Context, op, id string, fields bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	const op = "users.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[models.Role]int64, error) {
	const op = "users.CountByRole"

	counts := map[models.Role]int64{models.RoleAdmin: 0, models.RoleMechanic: 0, models.RoleUser: 0}
	if err := groupCount(ctx, r.coll, "$role", func(key string, n int64) {
		counts[models.Role(key)] = n
	}); err != nil {
		return nil, mapErr(op, err)
	}
	return counts, nil
}

// groupCount runs a {$group: {_id: field, n: {$sum: 1}}} aggregation.
func groupCount(ctx context.Context, coll *mongo.Collection, field string, fn func(key string, n int64)) error {
	cursor, err := coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: field},
			{Key: "n", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	})
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			Key string `bson:"_id"`
			N   int64  `bson:"n"`
		}
		if err := cursor.Decode(&row); err != nil {
			return err
		}
		fn(row.Key, row.N)
	}
	return cursor.Err()
}
