package cart

import (
	"github.com/Nishantvt5/merch-app/pkg/db/models"
	"github.com/shopspring/decimal"
)

// CartTotals are derived from the fetched lines and never stored.
type CartTotals struct {
	Quantity int
	Price    decimal.Decimal
}

// LineTotal is the live price of one line.
func LineTotal(item models.CartItem) decimal.Decimal {
	if item.Product == nil {
		return decimal.Zero
	}
	return item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Totals sums quantities and line totals.
func Totals(items []models.CartItem) CartTotals {
	totals := CartTotals{Price: decimal.Zero}
	for _, item := range items {
		totals.Quantity += item.Quantity
		totals.Price = totals.Price.Add(LineTotal(item))
	}
	return totals
}
