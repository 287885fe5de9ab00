// Package draft implements the in-memory editing protocol for orders. Every
// operation takes a Draft by value and returns a new one, so two callers
// holding the same draft never see each other's edits. Totals are recomputed
// on every price-affecting change; validation and sanitization happen at
// commit time in the service layer.
package draft

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// Structural editing errors.
var (
	ErrLastPerson  = errors.New("an order must keep at least one person")
	ErrLastItem    = errors.New("a person must keep at least one item")
	ErrOutOfRange  = errors.New("person or item index out of range")
)

// Draft is a not-yet-committed order.
type Draft struct {
	Order model.Order

	// nameEdited marks person[0]'s name as a manual override. While unset,
	// the name tracks the customer name; it resets when the override is
	// cleared or matches the customer name again.
	nameEdited bool
}

// New seeds a fresh draft: one person with one empty item, a
// timestamp-derived bill number, and the creation timestamp that later edits
// never overwrite.
func New(now time.Time) Draft {
	return Draft{
		Order: model.Order{
			BillNumber: billNumber(now),
			OrderDate:  now.Format(time.RFC3339),
			Status:     enum.OrderStatusActive,
			People:     []model.Person{{Items: []model.Item{newItem()}}},
			Payment:    emptyPayment(),
		},
	}
}

// FromOrder merges a fetched order onto the fresh template, so a document
// that predates a schema addition still edits with every field present.
func FromOrder(o model.Order) Draft {
	d := Draft{Order: model.CloneOrder(o)}
	if d.Order.Status == "" {
		d.Order.Status = enum.OrderStatusActive
	}
	if len(d.Order.People) == 0 {
		d.Order.People = []model.Person{{Items: []model.Item{newItem()}}}
	}
	for i := range d.Order.People {
		p := &d.Order.People[i]
		if len(p.Items) == 0 {
			p.Items = []model.Item{newItem()}
		}
		for j := range p.Items {
			it := &p.Items[j]
			if it.ID == "" {
				it.ID = uuid.NewString()
			}
			if it.Status == "" {
				it.Status = enum.ItemStatusReceived
			}
			if it.Measurements == nil {
				it.Measurements = make(map[string]string)
			}
		}
	}
	name := strings.TrimSpace(d.Order.People[0].Name)
	d.nameEdited = name != "" && name != strings.TrimSpace(d.Order.Customer.Name)
	return d
}

func newItem() model.Item {
	return model.Item{
		ID:           uuid.NewString(),
		Status:       enum.ItemStatusReceived,
		Measurements: make(map[string]string),
	}
}

func emptyPayment() model.Payment {
	return model.Payment{
		Subtotal:           decimal.Zero,
		DiscountValue:      decimal.Zero,
		CalculatedDiscount: decimal.Zero,
		Total:              decimal.Zero,
		Advance:            decimal.Zero,
		Pending:            decimal.Zero,
	}
}

// billNumber derives a display identifier from the creation instant. Unique
// enough for search and print headers; collisions are an accepted risk.
func billNumber(now time.Time) string {
	return fmt.Sprintf("BILL-%s%03d", now.Format("060102150405"), now.UnixMilli()%1000)
}

func (d Draft) clone() Draft {
	return Draft{Order: model.CloneOrder(d.Order), nameEdited: d.nameEdited}
}

// AddPerson appends a person with one empty item.
func (d Draft) AddPerson() Draft {
	nd := d.clone()
	nd.Order.People = append(nd.Order.People, model.Person{Items: []model.Item{newItem()}})
	return nd
}

// RemovePerson removes a person unless it is the last one.
func (d Draft) RemovePerson(i int) (Draft, error) {
	if i < 0 || i >= len(d.Order.People) {
		return d, ErrOutOfRange
	}
	if len(d.Order.People) == 1 {
		return d, ErrLastPerson
	}
	nd := d.clone()
	nd.Order.People = append(nd.Order.People[:i], nd.Order.People[i+1:]...)
	if i == 0 {
		nd.nameEdited = true
	}
	return nd.recompute(), nil
}

// AddItem appends an empty item to a person.
func (d Draft) AddItem(person int) (Draft, error) {
	if person < 0 || person >= len(d.Order.People) {
		return d, ErrOutOfRange
	}
	nd := d.clone()
	nd.Order.People[person].Items = append(nd.Order.People[person].Items, newItem())
	return nd, nil
}

// RemoveItem removes an item unless it is the person's last.
func (d Draft) RemoveItem(person, item int) (Draft, error) {
	if person < 0 || person >= len(d.Order.People) {
		return d, ErrOutOfRange
	}
	items := d.Order.People[person].Items
	if item < 0 || item >= len(items) {
		return d, ErrOutOfRange
	}
	if len(items) == 1 {
		return d, ErrLastItem
	}
	nd := d.clone()
	nd.Order.People[person].Items = append(nd.Order.People[person].Items[:item], nd.Order.People[person].Items[item+1:]...)
	return nd.recompute(), nil
}

// SetCustomerField replaces a customer field. Updating the name re-seeds
// person[0]'s name while no manual override is active.
func (d Draft) SetCustomerField(field, value string) Draft {
	nd := d.clone()
	switch field {
	case "name":
		nd.Order.Customer.Name = value
		if !nd.nameEdited {
			nd.Order.People[0].Name = value
		} else if strings.TrimSpace(nd.Order.People[0].Name) == strings.TrimSpace(value) {
			nd.nameEdited = false
		}
	case "number":
		nd.Order.Customer.Number = value
	case "email":
		nd.Order.Customer.Email = value
	}
	return nd
}

// SetPersonName replaces a person's name. For person[0] this toggles the
// manual-override flag: clearing the name or typing the customer name again
// puts it back in sync.
func (d Draft) SetPersonName(person int, name string) Draft {
	if person < 0 || person >= len(d.Order.People) {
		return d
	}
	nd := d.clone()
	if person != 0 {
		nd.Order.People[person].Name = name
		return nd
	}
	trimmed := strings.TrimSpace(name)
	switch {
	case trimmed == "":
		nd.nameEdited = false
		nd.Order.People[0].Name = nd.Order.Customer.Name
	case trimmed == strings.TrimSpace(nd.Order.Customer.Name):
		nd.nameEdited = false
		nd.Order.People[0].Name = name
	default:
		nd.nameEdited = true
		nd.Order.People[0].Name = name
	}
	return nd
}

// SetItemField routes a field edit to the right slot on an item.
// Measurement-vocabulary fields land in the measurement map; picking a name
// from the master list also resets the price to the master's customer price
// as a one-time default; prices coerce to a number, zero on parse failure.
func (d Draft) SetItemField(person, item int, field, value string, masterItems []model.MasterItem) (Draft, error) {
	if person < 0 || person >= len(d.Order.People) {
		return d, ErrOutOfRange
	}
	if item < 0 || item >= len(d.Order.People[person].Items) {
		return d, ErrOutOfRange
	}
	nd := d.clone()
	it := &nd.Order.People[person].Items[item]

	if enum.IsMeasurementField(field) {
		it.Measurements[field] = value
		return nd, nil
	}

	switch field {
	case "name":
		it.Name = value
		if price, ok := derive.DefaultPrice(masterItems, value); ok {
			it.Price = price
		}
		return nd.recompute(), nil
	case "price":
		it.Price = coerceDecimal(value)
		return nd.recompute(), nil
	case "notes":
		it.Notes = value
	case "designPhoto":
		it.DesignPhoto = value
	case "status":
		it.Status = value
	case "cutter":
		it.Cutter = value
	case "sewer":
		it.Sewer = value
	}
	return nd, nil
}

// SetPaymentField replaces a payment field with light coercion; numeric
// fields never stay raw text.
func (d Draft) SetPaymentField(field, value string) Draft {
	nd := d.clone()
	switch field {
	case "advance":
		nd.Order.Payment.Advance = coerceDecimal(value)
	case "discountType":
		nd.Order.Payment.DiscountType = value
	case "discountValue":
		nd.Order.Payment.DiscountValue = coerceDecimal(value)
	case "method":
		nd.Order.Payment.Method = value
		return nd
	default:
		return nd
	}
	return nd.recompute()
}

// SetOrderField replaces a top-level order field. The order date is set once
// at creation and is not editable here.
func (d Draft) SetOrderField(field, value string) Draft {
	nd := d.clone()
	switch field {
	case "deliveryDate":
		nd.Order.DeliveryDate = value
	case "notes":
		nd.Order.Notes = value
	case "status":
		nd.Order.Status = value
	}
	return nd
}

// AttachFee copies a catalog fee onto the order. The amount is frozen at
// attach time; later catalog edits do not follow.
func (d Draft) AttachFee(fee model.Fee) Draft {
	nd := d.clone()
	nd.Order.Payment.AdditionalFees = append(nd.Order.Payment.AdditionalFees, model.OrderFee{
		ID:          fee.ID,
		Description: fee.Description,
		Amount:      fee.DefaultAmount,
	})
	return nd.recompute()
}

// RemoveFee detaches a fee by position.
func (d Draft) RemoveFee(i int) (Draft, error) {
	if i < 0 || i >= len(d.Order.Payment.AdditionalFees) {
		return d, ErrOutOfRange
	}
	nd := d.clone()
	nd.Order.Payment.AdditionalFees = append(nd.Order.Payment.AdditionalFees[:i], nd.Order.Payment.AdditionalFees[i+1:]...)
	return nd.recompute(), nil
}

func (d Draft) recompute() Draft {
	derive.ApplyTotals(&d.Order)
	return d
}

func coerceDecimal(s string) decimal.Decimal {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return v
}
