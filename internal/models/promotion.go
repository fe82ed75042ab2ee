package models

import "time"

type Promotion struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Discount    float64   `bson:"discount" json:"discount"`
	ValidUntil  time.Time `bson:"validUntil" json:"validUntil"`
	Features    []string  `bson:"features" json:"features"`
	Active      bool      `bson:"active" json:"active"`
	CreatedAt   time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time `bson:"updatedAt" json:"updatedAt"`
}

// IsCurrent reports whether the promotion is active and not yet expired at now.
func (p *Promotion) IsCurrent(now time.Time) bool {
	return p.Active && p.ValidUntil.After(now)
}
