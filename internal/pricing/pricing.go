// Package pricing turns priced order lines into a subtotal, discount and total.
//
// The discount rule is a placeholder promotion, not a pricing engine: a fixed
// rebate once the subtotal is strictly above a threshold. Swap the Policy to
// change it; nothing else in checkout depends on the rule.
package pricing

import (
	"github.com/shopspring/decimal"

	"techstore/internal/domain"
)

// Policy decides the discount for a subtotal.
type Policy interface {
	Discount(subtotal decimal.Decimal) decimal.Decimal
}

// ThresholdDiscount takes Amount off when the subtotal is strictly greater than Threshold.
type ThresholdDiscount struct {
	Threshold decimal.Decimal
	Amount    decimal.Decimal
}

// DefaultPolicy is 50 off above 1000.
func DefaultPolicy() ThresholdDiscount {
	return ThresholdDiscount{
		Threshold: decimal.NewFromInt(1000),
		Amount:    decimal.NewFromInt(50),
	}
}

func (t ThresholdDiscount) Discount(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(t.Threshold) {
		return t.Amount
	}
	return decimal.Zero
}

// Summary is the priced result of a set of lines.
type Summary struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Calculate sums unit price times quantity over lines and applies policy.
// A nil policy means no discount.
func Calculate(lines []domain.OrderLine, policy Policy) Summary {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	discount := decimal.Zero
	if policy != nil {
		discount = policy.Discount(subtotal)
	}
	return Summary{
		Subtotal: subtotal,
		Discount: discount,
		Total:    subtotal.Sub(discount),
	}
}
