package orders

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TaxRate is the flat GST applied to every order subtotal.
var TaxRate = decimal.NewFromFloat(0.18)

// ComputeTax returns the tax owed on a subtotal, rounded to two decimals.
func ComputeTax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(TaxRate).Round(2)
}

// OrderNumber builds a human-readable order number from a prefix and a
// timestamp, e.g. ORD482913507. Uniqueness is enforced by the database.
func OrderNumber(prefix string, t time.Time) string {
	return fmt.Sprintf("%s%d", prefix, t.UnixMilli()%1_000_000_000)
}
