package order

import "github.com/shopspring/decimal"

// Subtotal sums price times quantity over items.
func Subtotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

// PayAmount is subtotal plus fee minus discount, floored at zero.
func PayAmount(subtotal, fee, discount decimal.Decimal) decimal.Decimal {
	pay := subtotal.Add(fee).Sub(discount)
	if pay.IsNegative() {
		return decimal.Zero
	}
	return pay
}

// RequiredPoints converts an amount to points, one point per currency unit,
// rounding up.
func RequiredPoints(amount decimal.Decimal) int64 {
	return amount.Ceil().IntPart()
}
