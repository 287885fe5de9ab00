// Package model defines the document shapes persisted in the store. The
// stored shape is the wire shape: every type round-trips through JSON
// unchanged. Dates are kept as strings (orderDate RFC3339, deliveryDate and
// transaction dates YYYY-MM-DD) so that historical documents with missing or
// malformed values stay decodable; the derive package parses them
// defensively.
package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Date layouts used across documents.
const (
	DateLayout = "2006-01-02"
)

// Order is the root aggregate: one bill, one embedded customer, one or more
// people each carrying one or more garment items.
type Order struct {
	ID           string       `json:"id"`
	BillNumber   string       `json:"billNumber"`
	Customer     CustomerInfo `json:"customer"`
	OrderDate    string       `json:"orderDate"`    // RFC3339, set once at creation
	DeliveryDate string       `json:"deliveryDate"` // YYYY-MM-DD, mutable target
	Notes        string       `json:"notes,omitempty"`
	People       []Person     `json:"people"`
	Payment      Payment      `json:"payment"`
	Status       string       `json:"status"`
}

// CustomerInfo is embedded in every order. There is no stored Customer
// entity; the directory is derived by grouping orders on a normalized
// name+number key.
type CustomerInfo struct {
	Name   string `json:"name"`
	Number string `json:"number"`
	Email  string `json:"email,omitempty"`
}

// Person groups items for one wearer within an order. People have no
// identity across orders.
type Person struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item is a single garment. The id is client-generated and stable across
// edits so inline status/assignment updates can address it.
type Item struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Price        decimal.Decimal   `json:"price"`
	Measurements map[string]string `json:"measurements,omitempty"`
	Notes        string            `json:"notes,omitempty"`
	DesignPhoto  string            `json:"designPhoto,omitempty"`
	Status       string            `json:"status"`
	Cutter       string            `json:"cutter,omitempty"`
	Sewer        string            `json:"sewer,omitempty"`
}

// Payment carries the order's financials. Total and Pending are invariants
// maintained by derive.ApplyTotals: total = subtotal + fees - discount,
// pending = total - advance (may go negative on overpayment, shown as-is).
type Payment struct {
	Subtotal           decimal.Decimal `json:"subtotal"`
	AdditionalFees     []OrderFee      `json:"additionalFees,omitempty"`
	DiscountType       string          `json:"discountType,omitempty"` // percent | fixed
	DiscountValue      decimal.Decimal `json:"discountValue"`
	CalculatedDiscount decimal.Decimal `json:"calculatedDiscount"`
	Total              decimal.Decimal `json:"total"`
	Advance            decimal.Decimal `json:"advance"`
	Pending            decimal.Decimal `json:"pending"`
	Method             string          `json:"method,omitempty"`
}

// OrderFee is a fee attached to an order. The amount is copied from the fee
// catalog at attach time; later catalog edits do not flow back.
type OrderFee struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
}

// MasterItem is a catalog entry: the one-time price default when an item
// name is picked from the master list, and the rate table for worker pay.
type MasterItem struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	CustomerPrice decimal.Decimal `json:"customerPrice"`
	SewingRate    decimal.Decimal `json:"sewingRate"`
	CuttingRate   decimal.Decimal `json:"cuttingRate"`
}

// Worker has no stored ledger; earnings are derived at read time by
// name-matching cutter/sewer assignments across all orders.
type Worker struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
	Contact        string `json:"contact,omitempty"`
}

// Transaction is a ledger entry. Income entries are created automatically
// (linked via OrderRef) when an order is placed with an advance; expenses
// are entered directly on the ledger page.
type Transaction struct {
	ID          string          `json:"id"`
	Date        string          `json:"date"` // YYYY-MM-DD
	Type        string          `json:"type"` // Income | Expense
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	OrderRef    string          `json:"orderRef,omitempty"`
}

// Fee is a reusable extras template from the fee catalog.
type Fee struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	DefaultAmount decimal.Decimal `json:"defaultAmount"`
}

// User is an authenticated operator of one business.
type User struct {
	ID             string `json:"id"`
	BusinessID     string `json:"businessId"`
	FullName       string `json:"fullName"`
	Email          string `json:"email"`
	HashedPassword string `json:"hashedPassword"`
	Role           string `json:"role"`
}

// CloneOrder returns a deep copy via a JSON round trip. Used for the
// snapshot/rollback protocol, where the copy must be exact down to the
// stored representation.
func CloneOrder(o Order) Order {
	raw, err := json.Marshal(o)
	if err != nil {
		return o
	}
	var c Order
	if err := json.Unmarshal(raw, &c); err != nil {
		return o
	}
	return c
}

// ClonePeople deep-copies just the people array, the unit of persistence for
// inline item edits.
func ClonePeople(people []Person) []Person {
	raw, err := json.Marshal(people)
	if err != nil {
		return people
	}
	var c []Person
	if err := json.Unmarshal(raw, &c); err != nil {
		return people
	}
	return c
}
