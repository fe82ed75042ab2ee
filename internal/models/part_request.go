package models

import "time"

const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// CarSnapshot is the denormalised copy of a customer's car at request time.
type CarSnapshot struct {
	ID          string `bson:"id" json:"id"`
	Make        string `bson:"make" json:"make"`
	Model       string `bson:"model" json:"model"`
	Year        int    `bson:"year,omitempty" json:"year,omitempty"`
	PlateNumber string `bson:"plateNumber,omitempty" json:"plateNumber,omitempty"`
}

// CustomerSnapshot is the denormalised copy of the customer at request time.
type CustomerSnapshot struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email,omitempty" json:"email,omitempty"`
	Phone string `bson:"phone,omitempty" json:"phone,omitempty"`
}

// PartLine is one requested or used part with its price at the time.
type PartLine struct {
	PartID   string  `bson:"partId" json:"partId" binding:"required"`
	Name     string  `bson:"name" json:"name"`
	Price    float64 `bson:"price" json:"price"`
	Quantity int64   `bson:"quantity" json:"quantity" binding:"required,gt=0"`
}

type PartRequest struct {
	ID         string           `bson:"_id" json:"id"`
	Car        CarSnapshot      `bson:"car" json:"car"`
	Customer   CustomerSnapshot `bson:"customer" json:"customer"`
	Mechanic   Identity         `bson:"mechanic" json:"mechanic"`
	Parts      []PartLine       `bson:"parts" json:"parts"`
	TotalCost  float64          `bson:"totalCost" json:"totalCost"`
	Urgent     bool             `bson:"urgent" json:"urgent"`
	Notes      string           `bson:"notes,omitempty" json:"notes,omitempty"`
	Status     string           `bson:"status" json:"status"`
	ReviewedBy *Identity        `bson:"reviewedBy,omitempty" json:"reviewedBy,omitempty"`
	ReviewNote string           `bson:"reviewNote,omitempty" json:"reviewNote,omitempty"`
	ReviewedAt *time.Time       `bson:"reviewedAt,omitempty" json:"reviewedAt,omitempty"`
	CreatedAt  time.Time        `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time        `bson:"updatedAt" json:"updatedAt"`
}

type PartRequestFilter struct {
	Status     string
	MechanicID string
}
