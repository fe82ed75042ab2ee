package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/models"
	"motohub-api-server/internal/notify"
	"motohub-api-server/internal/pricing"
)

const resourceRequests = "partRequests"

type RequestStore interface {
	Create(ctx context.Context, req *models.PartRequest) error
	FindByID(ctx context.Context, id string) (*models.PartRequest, error)
	Review(ctx context.Context, id, status string, reviewer models.Identity, note string, at time.Time) (*models.PartRequest, error)
	Reopen(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type NewRequest struct {
	Car      models.CarSnapshot
	Customer models.CustomerSnapshot
	Parts    []models.PartLine
	Urgent   bool
	Notes    string
}

// LowStockAlert is sent to admins when an approval takes a part to or below its minimum.
type LowStockAlert struct {
	PartID   string `json:"partId"`
	Name     string `json:"name"`
	Quantity int64  `json:"quantity"`
	MinStock int64  `json:"minStock"`
}

type RequestService struct {
	requests RequestStore
	parts    PartStore
	notifier Notifier
	recorder Recorder
	logger   *log.Logger
	now      func() time.Time
}

func NewRequestService(requests RequestStore, parts PartStore, notifier Notifier, recorder Recorder, logger *log.Logger) *RequestService {
	return &RequestService{
		requests: requests,
		parts:    parts,
		notifier: notifier,
		recorder: recorder,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *RequestService) Create(ctx context.Context, mechanic models.Identity, in NewRequest) (*models.PartRequest, error) {
	const op = "service.requests.Create"

	lines, err := mergeLines(in.Parts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := priceLines(ctx, s.parts, lines); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req := &models.PartRequest{
		ID:        uuid.NewString(),
		Car:       in.Car,
		Customer:  in.Customer,
		Mechanic:  mechanic,
		Parts:     lines,
		TotalCost: pricing.PartsTotal(lines),
		Urgent:    in.Urgent,
		Notes:     in.Notes,
		Status:    models.RequestStatusPending,
	}
	if err := s.requests.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.recorder.Record(ctx, mechanic, activity.Entry{
		Type:         models.ActivityCreate,
		Action:       fmt.Sprintf("Requested %d part(s) for %s %s", len(lines), in.Car.Make, in.Car.Model),
		ResourceType: resourceRequests,
		ResourceID:   req.ID,
		After:        req,
	})
	s.notifier.ToRole(models.RoleAdmin, notify.EventRequestCreated, req)
	return req, nil
}

// Approve claims the request, then reserves stock part by part. If any part is
// short, the reservations made so far are released, the request goes back to
// pending and ErrInsufficientStock is returned.
func (s *RequestService) Approve(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error) {
	const op = "service.requests.Approve"

	req, err := s.requests.Review(ctx, id, models.RequestStatusApproved, admin, note, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, reviewErr(err))
	}

	var (
		reserved []models.PartLine
		alerts   []LowStockAlert
	)
	for _, line := range req.Parts {
		part, err := s.parts.Adjust(ctx, line.PartID, -line.Quantity)
		if err != nil {
			s.rollback(ctx, req.ID, reserved)
			switch {
			case errors.Is(err, database.ErrConflict):
				return nil, fmt.Errorf("%s: %w: %s", op, ErrInsufficientStock, line.Name)
			case errors.Is(err, database.ErrNotFound):
				return nil, fmt.Errorf("%s: %w", op, &UnknownPartError{PartID: line.PartID})
			default:
				return nil, fmt.Errorf("%s: %w", op, err)
			}
		}
		reserved = append(reserved, line)

		if part.Quantity <= part.MinStock && part.Quantity+line.Quantity > part.MinStock {
			alerts = append(alerts, LowStockAlert{PartID: part.ID, Name: part.Name, Quantity: part.Quantity, MinStock: part.MinStock})
		}
	}

	s.recorder.Record(ctx, admin, activity.Entry{
		Type:         models.ActivityApprove,
		Action:       fmt.Sprintf("Approved parts request for %s", req.Customer.Name),
		ResourceType: resourceRequests,
		ResourceID:   req.ID,
		Metadata:     map[string]any{"totalCost": req.TotalCost},
	})
	s.notifier.ToUser(req.Mechanic.ID, notify.EventRequestApproved, req)
	for _, a := range alerts {
		s.notifier.ToRole(models.RoleAdmin, notify.EventLowStock, a)
	}
	return req, nil
}

// rollback returns reserved stock and reopens the request, ignoring ctx cancellation.
func (s *RequestService) rollback(ctx context.Context, requestID string, reserved []models.PartLine) {
	ctx = context.WithoutCancel(ctx)

	for _, line := range reserved {
		if _, err := s.parts.Adjust(ctx, line.PartID, line.Quantity); err != nil {
			s.logger.WithError(err).WithFields(log.Fields{
				"request":  requestID,
				"part":     line.PartID,
				"quantity": line.Quantity,
			}).Error("failed to release reserved stock")
		}
	}
	if err := s.requests.Reopen(ctx, requestID); err != nil {
		s.logger.WithError(err).WithField("request", requestID).Error("failed to reopen request")
	}
}

func (s *RequestService) Reject(ctx context.Context, admin models.Identity, id, note string) (*models.PartRequest, error) {
	const op = "service.requests.Reject"

	req, err := s.requests.Review(ctx, id, models.RequestStatusRejected, admin, note, s.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, reviewErr(err))
	}

	s.recorder.Record(ctx, admin, activity.Entry{
		Type:         models.ActivityReject,
		Action:       fmt.Sprintf("Rejected parts request for %s", req.Customer.Name),
		ResourceType: resourceRequests,
		ResourceID:   req.ID,
		Metadata:     map[string]any{"reviewNote": note},
	})
	s.notifier.ToUser(req.Mechanic.ID, notify.EventRequestRejected, req)
	return req, nil
}

// Delete removes a request. Admins may delete any request; a mechanic only
// their own while it is still pending.
func (s *RequestService) Delete(ctx context.Context, actor models.Identity, id string) error {
	const op = "service.requests.Delete"

	req, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if actor.Role != models.RoleAdmin {
		if req.Mechanic.ID != actor.ID {
			return fmt.Errorf("%s: %w", op, ErrForbidden)
		}
		if req.Status != models.RequestStatusPending {
			return fmt.Errorf("%s: %w", op, ErrAlreadyReviewed)
		}
	}

	if err := s.requests.Delete(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.recorder.Record(ctx, actor, activity.Entry{
		Type:         models.ActivityDelete,
		Action:       "Deleted parts request",
		ResourceType: resourceRequests,
		ResourceID:   id,
		Before:       req,
	})
	return nil
}

func reviewErr(err error) error {
	if errors.Is(err, database.ErrConflict) {
		return ErrAlreadyReviewed
	}
	return err
}
