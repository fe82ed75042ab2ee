package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"motohub-api-server/internal/auth"
	"motohub-api-server/internal/database"
	"motohub-api-server/internal/pricing"
	"motohub-api-server/internal/service"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("parts.FindByID: %w", database.ErrNotFound), http.StatusNotFound},
		{database.ErrDuplicate, http.StatusConflict},
		{fmt.Errorf("service.requests.Approve: %w", service.ErrInsufficientStock), http.StatusConflict},
		{service.ErrAlreadyReviewed, http.StatusConflict},
		{service.ErrForbidden, http.StatusForbidden},
		{auth.ErrExpiredToken, http.StatusUnauthorized},
		{pricing.ErrInvalidRestock, http.StatusBadRequest},
		{auth.ErrReservedEmail, http.StatusBadRequest},
		{fmt.Errorf("inventory.Update: %w", database.ErrConflict), http.StatusConflict},
		{&service.UnknownPartError{PartID: "p9"}, http.StatusBadRequest},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestPublicMessage(t *testing.T) {
	err := fmt.Errorf("service.requests.Approve: %w", fmt.Errorf("parts.Adjust: %w", service.ErrInsufficientStock))
	assert.Equal(t, "insufficient stock", publicMessage(err))
	assert.Equal(t, "unknown part p9", publicMessage(&service.UnknownPartError{PartID: "p9"}))
	assert.Equal(t, "insufficient stock: brake pads", publicMessage(errors.New("insufficient stock: brake pads")))
}
