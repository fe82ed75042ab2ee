package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

// UserPath is the document path of a user, the parent of its cars and reports.
func UserPath(uid string) string {
	return UsersCollection + "/" + uid
}

// SubDocKey is the _id of a document stored under parent in collection.
func SubDocKey(parent, collection, id string) string {
	return parent + "/" + collection + "/" + id
}

// CarRepository stores the users/{uid}/cars sub-collection.
type CarRepository struct {
	coll *mongo.Collection
}

func NewCarRepository(db *mongo.Database) *CarRepository {
	return &CarRepository{coll: db.Collection(CarsCollection)}
}

func (r *CarRepository) Create(ctx context.Context, uid string, car *models.Car) error {
	const op = "cars.Create"

	now := time.Now().UTC()
	car.Parent = UserPath(uid)
	car.Key = SubDocKey(car.Parent, CarsCollection, car.ID)
	car.OwnerID = uid
	car.CreatedAt = now
	car.UpdatedAt = now

	_, err := r.coll.InsertOne(ctx, car)
	return mapErr(op, err)
}

func (r *CarRepository) FindByID(ctx context.Context, uid, carID string) (*models.Car, error) {
	const op = "cars.FindByID"

	var car models.Car
	key := SubDocKey(UserPath(uid), CarsCollection, carID)
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&car); err != nil {
		return nil, mapErr(op, err)
	}
	return &car, nil
}

func (r *CarRepository) List(ctx context.Context, uid string) ([]models.Car, error) {
	const op = "cars.List"

	cursor, err := r.coll.Find(ctx,
		bson.M{"_parent": UserPath(uid)},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}),
	)
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	cars := []models.Car{}
	if err := cursor.All(ctx, &cars); err != nil {
		return nil, mapErr(op, err)
	}
	return cars, nil
}

func (r *CarRepository) Update(ctx context.Context, car *models.Car) error {
	const op = "cars.Update"

	car.UpdatedAt = time.Now().UTC()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": car.Key}, car)
	if err != nil {
		return mapErr(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *CarRepository) Delete(ctx context.Context, uid, carID string) error {
	const op = "cars.Delete"

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": SubDocKey(UserPath(uid), CarsCollection, carID)})
	if err != nil {
		return mapErr(op, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
