package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/pricing"
)

const resourceServiceHistory = "serviceHistory"

type CarStore interface {
	FindByID(ctx context.Context, uid, carID string) (*models.Car, error)
}

type ReportStore interface {
	Create(ctx context.Context, uid string, report *models.ServiceReport) error
}

type NewReport struct {
	CarID           string
	Diagnosis       string
	WorkPerformed   string
	Recommendations string
	LaborHours      float64
	LaborRate       float64
	// LaborCost is used as given when LaborRate is zero.
	LaborCost   float64
	PartsUsed   []models.PartLine
	ServiceDate time.Time
}

type ReportService struct {
	reports  ReportStore
	cars     CarStore
	parts    PartStore
	recorder Recorder
}

func NewReportService(reports ReportStore, cars CarStore, parts PartStore, recorder Recorder) *ReportService {
	return &ReportService{reports: reports, cars: cars, parts: parts, recorder: recorder}
}

// Create stores a service report for the customer uid. Labor, parts and total
// costs are computed here; parts are priced at their current sales price.
func (s *ReportService) Create(ctx context.Context, mechanic models.Identity, uid string, in NewReport) (*models.ServiceReport, error) {
	const op = "service.reports.Create"

	if in.LaborHours < 0 || in.LaborRate < 0 || in.LaborCost < 0 {
		return nil, fmt.Errorf("%s: %w", op, pricing.ErrNegativeValue)
	}

	car, err := s.cars.FindByID(ctx, uid, in.CarID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUnknownCar)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines := []models.PartLine{}
	if len(in.PartsUsed) > 0 {
		if lines, err = mergeLines(in.PartsUsed); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := priceLines(ctx, s.parts, lines); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	laborCost := pricing.Round(in.LaborCost)
	if in.LaborRate > 0 {
		laborCost = pricing.LaborCost(in.LaborHours, in.LaborRate)
	}
	partsCost := pricing.PartsTotal(lines)

	report := &models.ServiceReport{
		ID:              uuid.NewString(),
		CarID:           car.ID,
		Car:             car.Snapshot(),
		Mechanic:        mechanic,
		Diagnosis:       in.Diagnosis,
		WorkPerformed:   in.WorkPerformed,
		Recommendations: in.Recommendations,
		LaborHours:      in.LaborHours,
		LaborRate:       in.LaborRate,
		LaborCost:       laborCost,
		PartsUsed:       lines,
		PartsCost:       partsCost,
		TotalCost:       pricing.ServiceTotal(laborCost, partsCost),
		ServiceDate:     in.ServiceDate,
	}
	if err := s.reports.Create(ctx, uid, report); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.recorder.Record(ctx, mechanic, activity.Entry{
		Type:         models.ActivityCreate,
		Action:       fmt.Sprintf("Service report for %s %s", car.Make, car.Model),
		ResourceType: resourceServiceHistory,
		ResourceID:   report.Key,
		After:        report,
	})
	return report, nil
}
