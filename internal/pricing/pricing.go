// Package pricing holds the derived inventory and service calculations.
// Money is computed with decimal arithmetic and rounded half away from zero to cents.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"

	"motohub-api-server/internal/models"
)

var (
	ErrInvalidRestock  = errors.New("restock quantity must be greater than zero")
	ErrNegativeValue   = errors.New("value must not be negative")
	ErrInvalidDiscount = errors.New("discount must be greater than 0 and at most 100")
)

var hundred = decimal.NewFromInt(100)

// SalesPrice returns round(unitPrice * (1 + markup/100), 2).
func SalesPrice(unitPrice, markupPercentage float64) float64 {
	factor := decimal.NewFromInt(1).Add(decimal.NewFromFloat(markupPercentage).Div(hundred))
	return decimal.NewFromFloat(unitPrice).Mul(factor).Round(2).InexactFloat64()
}

// Restock returns the new quantity after adding added units to current.
func Restock(current, added int64) (int64, error) {
	if added <= 0 {
		return current, ErrInvalidRestock
	}
	return current + added, nil
}

// StockStatus classifies a quantity against the part's minimum stock level.
func StockStatus(quantity, minStock int64) string {
	switch {
	case quantity <= 0:
		return models.StockStatusOutOfStock
	case quantity <= minStock:
		return models.StockStatusLowStock
	default:
		return models.StockStatusInStock
	}
}

// ValidatePart checks the client-editable numeric fields of a part.
func ValidatePart(p *models.Part) error {
	if p.Quantity < 0 || p.MinStock < 0 || p.UnitPrice < 0 || p.MarkupPercentage < 0 {
		return ErrNegativeValue
	}
	return nil
}

// ApplyDerived recomputes the sales price and stock status of p in place.
func ApplyDerived(p *models.Part) {
	p.Price = SalesPrice(p.UnitPrice, p.MarkupPercentage)
	p.Status = StockStatus(p.Quantity, p.MinStock)
}

// ValidateDiscount checks a promotion discount percentage.
func ValidateDiscount(discount float64) error {
	if discount <= 0 || discount > 100 {
		return ErrInvalidDiscount
	}
	return nil
}

// Round rounds v to cents.
func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func LineTotal(price float64, quantity int64) float64 {
	return decimal.NewFromFloat(price).Mul(decimal.NewFromInt(quantity)).Round(2).InexactFloat64()
}

// PartsTotal sums price * quantity over all lines.
func PartsTotal(lines []models.PartLine) float64 {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(decimal.NewFromFloat(l.Price).Mul(decimal.NewFromInt(l.Quantity)))
	}
	return total.Round(2).InexactFloat64()
}

func LaborCost(hours, rate float64) float64 {
	return decimal.NewFromFloat(hours).Mul(decimal.NewFromFloat(rate)).Round(2).InexactFloat64()
}

func ServiceTotal(laborCost, partsCost float64) float64 {
	return decimal.NewFromFloat(laborCost).Add(decimal.NewFromFloat(partsCost)).Round(2).InexactFloat64()
}

// StockValue is quantity * unitPrice, used for dashboard totals.
func StockValue(parts []models.Part) float64 {
	total := decimal.Zero
	for _, p := range parts {
		total = total.Add(decimal.NewFromFloat(p.UnitPrice).Mul(decimal.NewFromInt(p.Quantity)))
	}
	return total.Round(2).InexactFloat64()
}
