package models

import "time"

const (
	StockStatusInStock    = "in_stock"
	StockStatusLowStock   = "low_stock"
	StockStatusOutOfStock = "out_of_stock"
)

// Part is an inventory item. Price is the sales price derived from UnitPrice and MarkupPercentage.
type Part struct {
	ID               string     `bson:"_id" json:"id"`
	Name             string     `bson:"name" json:"name"`
	Category         string     `bson:"category" json:"category"`
	Quantity         int64      `bson:"quantity" json:"quantity"`
	MinStock         int64      `bson:"minStock" json:"minStock"`
	Price            float64    `bson:"price" json:"price"`
	UnitPrice        float64    `bson:"unitPrice" json:"unitPrice"`
	MarkupPercentage float64    `bson:"markupPercentage" json:"markupPercentage"`
	Supplier         string     `bson:"supplier,omitempty" json:"supplier,omitempty"`
	Status           string     `bson:"status" json:"status"`
	Image            string     `bson:"image,omitempty" json:"image,omitempty"`
	LastRestocked    *time.Time `bson:"lastRestocked,omitempty" json:"lastRestocked,omitempty"`
	CreatedAt        time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// IsLowStock reports whether the part is at or below its minimum stock level.
func (p *Part) IsLowStock() bool {
	return p.Quantity <= p.MinStock
}

type PartFilter struct {
	Category string
	Status   string
	Search   string
	LowStock bool
}
