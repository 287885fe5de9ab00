package draft

import (
	"strings"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// Sanitize builds the commit payload: text fields trimmed, nameless items
// dropped, empty measurement entries stripped so history does not accumulate
// blank-string noise, and totals recomputed over what remains. The draft
// itself is left untouched.
func (d Draft) Sanitize() model.Order {
	o := model.CloneOrder(d.Order)

	o.BillNumber = strings.TrimSpace(o.BillNumber)
	o.Customer.Name = strings.TrimSpace(o.Customer.Name)
	o.Customer.Number = strings.TrimSpace(o.Customer.Number)
	o.Customer.Email = strings.TrimSpace(o.Customer.Email)
	o.DeliveryDate = strings.TrimSpace(o.DeliveryDate)
	o.Notes = strings.TrimSpace(o.Notes)
	if o.Status == "" {
		o.Status = enum.OrderStatusActive
	}

	people := make([]model.Person, 0, len(o.People))
	for _, p := range o.People {
		p.Name = strings.TrimSpace(p.Name)

		items := make([]model.Item, 0, len(p.Items))
		for _, it := range p.Items {
			it.Name = strings.TrimSpace(it.Name)
			if it.Name == "" {
				continue
			}
			it.Notes = strings.TrimSpace(it.Notes)
			it.Measurements = sanitizeMeasurements(it.Measurements)
			items = append(items, it)
		}
		p.Items = items

		// A nameless person whose items all got dropped carries no
		// information; anything else stays.
		if p.Name == "" && len(p.Items) == 0 {
			continue
		}
		people = append(people, p)
	}
	o.People = people

	derive.ApplyTotals(&o)
	return o
}

// sanitizeMeasurements trims values and drops entries that are empty after
// trimming. Empty means "not recorded", so it should not be persisted.
func sanitizeMeasurements(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
