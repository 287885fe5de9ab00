package derive

import (
	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// LedgerLine is one earned-pay attribution: an item in some order assigned
// to the worker in one role.
type LedgerLine struct {
	OrderID      string
	BillNumber   string
	OrderDate    string
	CustomerName string
	ItemID       string
	ItemName     string
	Role         string
	Pay          decimal.Decimal
}

// WorkerLedger is the derived earnings statement for one worker. There is no
// stored payment-record entity yet, so Paid is always zero and Pending
// equals TotalEarned until one is added.
type WorkerLedger struct {
	Lines       []LedgerLine
	TotalEarned decimal.Decimal
	Paid        decimal.Decimal
	Pending     decimal.Decimal
}

// RateFor is the single lookup point for worker pay rates: exact item-name
// match against the master list. A rename of a master item breaks historical
// lookups -- known fragility, kept deliberately in one place.
func RateFor(masterItems []model.MasterItem, itemName, role string) decimal.Decimal {
	for _, m := range masterItems {
		if m.Name != itemName {
			continue
		}
		switch role {
		case enum.WorkerRoleCutter:
			return m.CuttingRate
		case enum.WorkerRoleSewer:
			return m.SewingRate
		}
	}
	return decimal.Zero
}

// DefaultPrice returns the master-list price for an item name, used as a
// one-time default when the name is picked in a draft.
func DefaultPrice(masterItems []model.MasterItem, name string) (decimal.Decimal, bool) {
	for _, m := range masterItems {
		if m.Name == name {
			return m.CustomerPrice, true
		}
	}
	return decimal.Zero, false
}

// Ledger scans every item of every order for assignments matching the
// worker's name and prices each line from the master rate table (zero when
// no master item matches the item name). Lines come out newest-order-first.
func Ledger(worker model.Worker, orders []model.Order, masterItems []model.MasterItem) WorkerLedger {
	sorted := make([]model.Order, len(orders))
	copy(sorted, orders)
	sortOrdersNewestFirst(sorted)

	ledger := WorkerLedger{
		TotalEarned: decimal.Zero,
		Paid:        decimal.Zero,
		Pending:     decimal.Zero,
	}
	for _, o := range sorted {
		for _, p := range o.People {
			for _, it := range p.Items {
				if worker.Name != "" && it.Cutter == worker.Name {
					ledger.Lines = append(ledger.Lines, ledgerLine(o, p, it, enum.WorkerRoleCutter, masterItems))
				}
				if worker.Name != "" && it.Sewer == worker.Name {
					ledger.Lines = append(ledger.Lines, ledgerLine(o, p, it, enum.WorkerRoleSewer, masterItems))
				}
			}
		}
	}
	for _, l := range ledger.Lines {
		ledger.TotalEarned = ledger.TotalEarned.Add(l.Pay)
	}
	ledger.Pending = ledger.TotalEarned.Sub(ledger.Paid)
	return ledger
}

func ledgerLine(o model.Order, _ model.Person, it model.Item, role string, masterItems []model.MasterItem) LedgerLine {
	return LedgerLine{
		OrderID:      o.ID,
		BillNumber:   o.BillNumber,
		OrderDate:    o.OrderDate,
		CustomerName: o.Customer.Name,
		ItemID:       it.ID,
		ItemName:     it.Name,
		Role:         role,
		Pay:          RateFor(masterItems, it.Name, role),
	}
}
