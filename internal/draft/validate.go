package draft

import (
	"errors"
	"strings"
)

// Validation errors, staged to match the three-step order wizard. The rules
// hold regardless of which UI drives them.
var (
	ErrCustomerName   = errors.New("customer name is required")
	ErrCustomerNumber = errors.New("customer number is required")
	ErrDeliveryDate   = errors.New("delivery date is required")
	ErrNoNamedItem    = errors.New("at least one person needs a name and a named item")
	ErrUnnamedPerson  = errors.New("a person with items must have a name")
)

// Validate runs the pre-commit checks. Stage 1: customer name, number and
// delivery date. Stage 2: at least one named person carrying a named item,
// and no nameless person carrying named items (those are rejected, not
// silently dropped). Stage 3 adds nothing beyond the continuously
// maintained totals.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Order.Customer.Name) == "" {
		return ErrCustomerName
	}
	if strings.TrimSpace(d.Order.Customer.Number) == "" {
		return ErrCustomerNumber
	}
	if strings.TrimSpace(d.Order.DeliveryDate) == "" {
		return ErrDeliveryDate
	}

	anyComplete := false
	for _, p := range d.Order.People {
		named := strings.TrimSpace(p.Name) != ""
		hasNamedItem := false
		for _, it := range p.Items {
			if strings.TrimSpace(it.Name) != "" {
				hasNamedItem = true
				break
			}
		}
		if !named && hasNamedItem {
			return ErrUnnamedPerson
		}
		if named && hasNamedItem {
			anyComplete = true
		}
	}
	if !anyComplete {
		return ErrNoNamedItem
	}
	return nil
}
