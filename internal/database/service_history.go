package database

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"motohub-api-server/internal/models"
)

// ServiceReportRepository stores the users/{uid}/serviceHistory sub-collection.
type ServiceReportRepository struct {
	coll *mongo.Collection
}

func NewServiceReportRepository(db *mongo.Database) *ServiceReportRepository {
	return &ServiceReportRepository{coll: db.Collection(ServiceHistoryCollection)}
}

func (r *ServiceReportRepository) Create(ctx context.Context, uid string, report *models.ServiceReport) error {
	const op = "serviceHistory.Create"

	report.Parent = UserPath(uid)
	report.Key = SubDocKey(report.Parent, ServiceHistoryCollection, report.ID)
	report.CustomerID = uid
	report.CreatedAt = time.Now().UTC()
	if report.ServiceDate.IsZero() {
		report.ServiceDate = report.CreatedAt
	}

	_, err := r.coll.InsertOne(ctx, report)
	return mapErr(op, err)
}

func (r *ServiceReportRepository) FindByID(ctx context.Context, uid, reportID string) (*models.ServiceReport, error) {
	const op = "serviceHistory.FindByID"

	var report models.ServiceReport
	key := SubDocKey(UserPath(uid), ServiceHistoryCollection, reportID)
	if err := r.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&report); err != nil {
		return nil, mapErr(op, err)
	}
	return &report, nil
}

// List returns a user's reports, newest service first. carID narrows to one car.
func (r *ServiceReportRepository) List(ctx context.Context, uid, carID string) ([]models.ServiceReport, error) {
	const op = "serviceHistory.List"

	filter := bson.M{"_parent": UserPath(uid)}
	if carID != "" {
		filter["carId"] = carID
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "serviceDate", Value: -1}}))
	if err != nil {
		return nil, mapErr(op, err)
	}
	defer cursor.Close(ctx)

	reports := []models.ServiceReport{}
	if err := cursor.All(ctx, &reports); err != nil {
		return nil, mapErr(op, err)
	}
	return reports, nil
}
