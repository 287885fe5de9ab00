package derive

import (
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// Totals is the financial summary of one order.
type Totals struct {
	Subtotal  decimal.Decimal
	FeesTotal decimal.Decimal
	Discount  decimal.Decimal
	Total     decimal.Decimal
	Pending   decimal.Decimal
}

// OrderTotals computes an order's financials from its items, fees, discount
// fields and advance. The discount is clamped so the total never goes
// negative; pending is NOT clamped, a negative value means overpayment and
// is displayed as-is.
func OrderTotals(o model.Order) Totals {
	subtotal := decimal.Zero
	for _, p := range o.People {
		for _, it := range p.Items {
			subtotal = subtotal.Add(it.Price)
		}
	}

	fees := decimal.Zero
	for _, f := range o.Payment.AdditionalFees {
		fees = fees.Add(f.Amount)
	}

	discount := decimal.Zero
	switch o.Payment.DiscountType {
	case enum.DiscountTypePercent:
		discount = subtotal.Mul(o.Payment.DiscountValue).Div(decimal.NewFromInt(100)).Round(2)
	case enum.DiscountTypeFixed:
		discount = o.Payment.DiscountValue
	}
	if discount.IsNegative() {
		discount = decimal.Zero
	}
	if max := subtotal.Add(fees); discount.GreaterThan(max) {
		discount = max
	}

	total := subtotal.Add(fees).Sub(discount)
	return Totals{
		Subtotal:  subtotal,
		FeesTotal: fees,
		Discount:  discount,
		Total:     total,
		Pending:   total.Sub(o.Payment.Advance),
	}
}

// ApplyTotals recomputes an order's payment aggregates in place and reports
// whether anything changed. Writing back only on change is the guard against
// recompute/update loops: callers re-run this after every price-affecting
// edit and persist only when it returns true.
func ApplyTotals(o *model.Order) bool {
	t := OrderTotals(*o)
	changed := !t.Subtotal.Equal(o.Payment.Subtotal) ||
		!t.Discount.Equal(o.Payment.CalculatedDiscount) ||
		!t.Total.Equal(o.Payment.Total) ||
		!t.Pending.Equal(o.Payment.Pending)
	if changed {
		o.Payment.Subtotal = t.Subtotal
		o.Payment.CalculatedDiscount = t.Discount
		o.Payment.Total = t.Total
		o.Payment.Pending = t.Pending
	}
	return changed
}
