package models

import "time"

// Car lives in the users/{uid}/cars sub-collection.
type Car struct {
	Key         string    `bson:"_id" json:"-"`
	Parent      string    `bson:"_parent" json:"-"`
	ID          string    `bson:"_docId" json:"id"`
	OwnerID     string    `bson:"ownerId" json:"ownerId"`
	Make        string    `bson:"make" json:"make"`
	Model       string    `bson:"model" json:"model"`
	Year        int       `bson:"year" json:"year"`
	PlateNumber string    `bson:"plateNumber" json:"plateNumber"`
	VIN         string    `bson:"vin,omitempty" json:"vin,omitempty"`
	Mileage     int64     `bson:"mileage" json:"mileage"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Snapshot returns the denormalised copy stored on requests and reports.
func (c *Car) Snapshot() CarSnapshot {
	return CarSnapshot{ID: c.ID, Make: c.Make, Model: c.Model, Year: c.Year, PlateNumber: c.PlateNumber}
}
