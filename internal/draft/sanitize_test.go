package draft_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/enum"
)

func TestSanitizeTrimsAndDrops(t *testing.T) {
	d := validDraft()
	d = d.SetCustomerField("name", "  Ravi Kumar  ")
	d = d.SetPersonName(0, "  Ravi Kumar ")
	d, _ = d.SetItemField(0, 0, "Chest", " 40 ", nil)
	d, _ = d.SetItemField(0, 0, "Waist", "", nil)
	d, _ = d.SetItemField(0, 0, "Neck", "  ", nil)
	d, _ = d.AddItem(0) // stays nameless, must be dropped

	o := d.Sanitize()

	if o.Customer.Name != "Ravi Kumar" {
		t.Errorf("customer name: got %q, want trimmed", o.Customer.Name)
	}
	if len(o.People) != 1 {
		t.Fatalf("people: got %d, want 1", len(o.People))
	}
	if len(o.People[0].Items) != 1 {
		t.Fatalf("items: got %d, want 1 (nameless item dropped)", len(o.People[0].Items))
	}

	m := o.People[0].Items[0].Measurements
	if len(m) != 1 || m["Chest"] != "40" {
		t.Errorf("measurements: got %v, want only Chest=40", m)
	}
}

func TestSanitizeDropsEmptyPeople(t *testing.T) {
	d := validDraft()
	d = d.AddPerson() // nameless with one nameless item

	o := d.Sanitize()

	if len(o.People) != 1 {
		t.Errorf("people: got %d, want 1 (empty person dropped)", len(o.People))
	}
}

func TestSanitizeKeepsNamedPersonWithoutItems(t *testing.T) {
	d := validDraft()
	d = d.AddPerson()
	d = d.SetPersonName(1, "Chotu")

	o := d.Sanitize()

	if len(o.People) != 2 {
		t.Fatalf("people: got %d, want 2 (named person kept)", len(o.People))
	}
	if len(o.People[1].Items) != 0 {
		t.Errorf("items: got %d, want 0 after nameless items dropped", len(o.People[1].Items))
	}
}

func TestSanitizeRecomputesTotalsOverSurvivors(t *testing.T) {
	d := validDraft() // one Shirt at 500
	d, _ = d.AddItem(0)
	d, _ = d.SetItemField(0, 1, "price", "999", nil) // priced but nameless

	o := d.Sanitize()

	if !o.Payment.Subtotal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("subtotal: got %s, want 500 (dropped item excluded)", o.Payment.Subtotal)
	}
}

func TestSanitizeLeavesDraftUntouched(t *testing.T) {
	d := validDraft()
	d, _ = d.AddItem(0)

	_ = d.Sanitize()

	if len(d.Order.People[0].Items) != 2 {
		t.Errorf("draft items: got %d, want 2 (sanitize must not mutate)", len(d.Order.People[0].Items))
	}
}

func TestSanitizeDefaultsStatus(t *testing.T) {
	d := validDraft()
	d = d.SetOrderField("status", "")

	if got := d.Sanitize().Status; got != enum.OrderStatusActive {
		t.Errorf("status: got %q, want Active", got)
	}
}
