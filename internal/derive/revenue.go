package derive

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/model"
)

// RevenueWindow is revenue and order count inside one time window.
type RevenueWindow struct {
	Revenue    decimal.Decimal
	OrderCount int
}

// RevenueSummary rolls revenue up into the three dashboard windows.
type RevenueSummary struct {
	Today RevenueWindow
	Month RevenueWindow
	Year  RevenueWindow
}

// Revenue buckets order totals into today / this-month / this-year windows
// anchored at the local midnight, month start and year start of now. Orders
// whose orderDate is missing or unparseable are excluded, never an error:
// old documents must not break the dashboard.
func Revenue(orders []model.Order, now time.Time) RevenueSummary {
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	s := RevenueSummary{
		Today: RevenueWindow{Revenue: decimal.Zero},
		Month: RevenueWindow{Revenue: decimal.Zero},
		Year:  RevenueWindow{Revenue: decimal.Zero},
	}
	for _, o := range orders {
		t, ok := ParseOrderDate(o.OrderDate)
		if !ok {
			continue
		}
		total := o.Payment.Total
		if !t.Before(yearStart) {
			s.Year.Revenue = s.Year.Revenue.Add(total)
			s.Year.OrderCount++
		}
		if !t.Before(monthStart) {
			s.Month.Revenue = s.Month.Revenue.Add(total)
			s.Month.OrderCount++
		}
		if !t.Before(dayStart) {
			s.Today.Revenue = s.Today.Revenue.Add(total)
			s.Today.OrderCount++
		}
	}
	return s
}

// ParseOrderDate parses a stored orderDate. RFC3339 is what commits write;
// the plain date form shows up in hand-entered historical documents.
func ParseOrderDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(model.DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}
