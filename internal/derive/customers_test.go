package derive_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/derive"
	"github.com/darzibook/api/internal/model"
)

func TestCustomerKeyNormalization(t *testing.T) {
	tests := []struct {
		name   string
		number string
		want   string
	}{
		{"Ravi Kumar", "9876543210", "ravi kumar|9876543210"},
		{"  RAVI KUMAR  ", "98765-43210", "ravi kumar|9876543210"},
		{"ravi kumar", "+91 98765 43210", "ravi kumar|919876543210"},
		{"", "", "|"},
	}
	for _, tc := range tests {
		if got := derive.CustomerKey(tc.name, tc.number); got != tc.want {
			t.Errorf("CustomerKey(%q, %q) = %q, want %q", tc.name, tc.number, got, tc.want)
		}
	}
}

func TestDirectoryGroupsByNormalizedKey(t *testing.T) {
	o1 := orderOn("2026-08-01T10:00:00Z", 500)
	o1.ID = "o1"
	o1.Customer = model.CustomerInfo{Name: "Ravi Kumar", Number: "9876543210"}

	o2 := orderOn("2026-08-10T10:00:00Z", 300)
	o2.ID = "o2"
	o2.Customer = model.CustomerInfo{Name: "  ravi kumar ", Number: "98765-43210"}

	o3 := orderOn("2026-07-01T10:00:00Z", 900)
	o3.ID = "o3"
	o3.Customer = model.CustomerInfo{Name: "Meena", Number: "9000000001"}

	entries := derive.Directory([]model.Order{o1, o2, o3})

	if len(entries) != 2 {
		t.Fatalf("entries: got %d, want 2", len(entries))
	}

	// Entries come newest-last-order first.
	ravi := entries[0]
	if ravi.Key != "ravi kumar|9876543210" {
		t.Fatalf("first entry key: got %q", ravi.Key)
	}
	if ravi.TotalOrders != 2 {
		t.Errorf("total orders: got %d, want 2", ravi.TotalOrders)
	}
	if !ravi.TotalSpent.Equal(decimal.NewFromInt(800)) {
		t.Errorf("total spent: got %s, want 800", ravi.TotalSpent)
	}
	// Contact info comes from the most recent order.
	if ravi.Info.Name != "  ravi kumar " {
		t.Errorf("info name: got %q, want the latest order's spelling", ravi.Info.Name)
	}
	if ravi.LastOrderDate != "2026-08-10T10:00:00Z" {
		t.Errorf("last order date: got %q", ravi.LastOrderDate)
	}
	// History newest first.
	if ravi.Orders[0].ID != "o2" || ravi.Orders[1].ID != "o1" {
		t.Errorf("history order: got %s then %s, want o2 then o1", ravi.Orders[0].ID, ravi.Orders[1].ID)
	}

	if entries[1].Key != "meena|9000000001" {
		t.Errorf("second entry: got %q, want meena", entries[1].Key)
	}
}

func TestDirectoryUnparseableDatesSortLast(t *testing.T) {
	good := orderOn("2026-08-01T10:00:00Z", 100)
	good.ID = "good"
	good.Customer = model.CustomerInfo{Name: "A", Number: "1"}

	bad := orderOn("garbage", 100)
	bad.ID = "bad"
	bad.Customer = model.CustomerInfo{Name: "A", Number: "1"}

	entries := derive.Directory([]model.Order{bad, good})
	if len(entries) != 1 {
		t.Fatalf("entries: got %d, want 1", len(entries))
	}
	if entries[0].Orders[0].ID != "good" {
		t.Errorf("history head: got %s, want good (unparseable sorts last)", entries[0].Orders[0].ID)
	}
}
