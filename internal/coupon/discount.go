package coupon

import (
	"time"

	"github.com/shopspring/decimal"
)

var ten = decimal.NewFromInt(10)

// Discount returns the amount c takes off subtotal at now. It is zero when c
// is nil, outside its validity window or below its minimum spend. The result
// never exceeds subtotal.
func Discount(c *Coupon, subtotal decimal.Decimal, now time.Time) decimal.Decimal {
	if c == nil || !c.Active(now) || subtotal.LessThan(c.MinSpend) {
		return decimal.Zero
	}

	var d decimal.Decimal
	switch c.Type {
	case TypeFlat:
		d = c.Value
	case TypePercent:
		d = subtotal.Mul(ten.Sub(c.Value)).Div(ten).Round(2)
	default:
		return decimal.Zero
	}

	if d.IsNegative() {
		return decimal.Zero
	}
	if d.GreaterThan(subtotal) {
		return subtotal
	}
	return d
}
