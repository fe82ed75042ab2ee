// Package service holds the workflows that touch more than one collection.
package service

import (
	"context"
	"errors"

	"motohub-api-server/internal/activity"
	"motohub-api-server/internal/models"
)

var (
	ErrValidation        = errors.New("validation failed")
	ErrUnknownPart       = errors.New("unknown part")
	ErrUnknownCar        = errors.New("unknown car")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrAlreadyReviewed   = errors.New("request already reviewed")
	ErrForbidden         = errors.New("not allowed")
)

type PartStore interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]models.Part, error)
	Adjust(ctx context.Context, id string, delta int64) (*models.Part, error)
}

type Notifier interface {
	ToUser(userID, eventType string, data any)
	ToRole(role models.Role, eventType string, data any)
}

type Recorder interface {
	Record(ctx context.Context, actor models.Identity, e activity.Entry)
}

// mergeLines folds duplicate part ids into one line and rejects empty or
// non-positive quantities.
func mergeLines(lines []models.PartLine) ([]models.PartLine, error) {
	if len(lines) == 0 {
		return nil, ErrValidation
	}

	merged := make([]models.PartLine, 0, len(lines))
	index := map[string]int{}
	for _, l := range lines {
		if l.PartID == "" || l.Quantity <= 0 {
			return nil, ErrValidation
		}
		if i, ok := index[l.PartID]; ok {
			merged[i].Quantity += l.Quantity
			continue
		}
		index[l.PartID] = len(merged)
		merged = append(merged, models.PartLine{PartID: l.PartID, Quantity: l.Quantity})
	}
	return merged, nil
}

// priceLines fills name and current sales price of every line from inventory.
func priceLines(ctx context.Context, parts PartStore, lines []models.PartLine) error {
	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.PartID
	}

	found, err := parts.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range lines {
		p, ok := found[lines[i].PartID]
		if !ok {
			return &UnknownPartError{PartID: lines[i].PartID}
		}
		lines[i].Name = p.Name
		lines[i].Price = p.Price
	}
	return nil
}

// UnknownPartError names the part id that was not found.
type UnknownPartError struct {
	PartID string
}

func (e *UnknownPartError) Error() string { return "unknown part " + e.PartID }

func (e *UnknownPartError) Unwrap() error { return ErrUnknownPart }
