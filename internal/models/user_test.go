package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsValidRole(t *testing.T) {
	tests := []struct {
		name     string
		role     Role
		expected bool
	}{
		{"admin role", RoleAdmin, true},
		{"mechanic role", RoleMechanic, true},
		{"user role", RoleUser, true},
		{"invalid role", "superadmin", false},
		{"empty role", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsValidRole(tt.role))
		})
	}
}

func TestPromotion_IsCurrent(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	assert.True(t, (&Promotion{Active: true, ValidUntil: now.Add(time.Hour)}).IsCurrent(now))
	assert.False(t, (&Promotion{Active: true, ValidUntil: now.Add(-time.Hour)}).IsCurrent(now))
	assert.False(t, (&Promotion{Active: false, ValidUntil: now.Add(time.Hour)}).IsCurrent(now))
}

func TestPart_IsLowStock(t *testing.T) {
	assert.True(t, (&Part{Quantity: 3, MinStock: 3}).IsLowStock())
	assert.False(t, (&Part{Quantity: 4, MinStock: 3}).IsLowStock())
}
