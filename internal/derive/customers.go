package derive

import (
	"sort"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"

	"github.com/darzibook/api/internal/model"
)

// CustomerKey is the single place the derived customer identity is defined:
// lowercased trimmed name plus the digits of the phone number. It is a
// heuristic, not a unique key -- two people sharing name and phone collide,
// and editing either field forks the history into a new directory entry.
func CustomerKey(name, number string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, number)
	return n + "|" + digits
}

// DirectoryEntry is one derived customer with their full order history.
type DirectoryEntry struct {
	Key           string
	Info          model.CustomerInfo
	TotalOrders   int
	TotalSpent    decimal.Decimal
	LastOrderDate string
	Orders        []model.Order // newest first
}

// Directory groups orders into customer entries by CustomerKey. Each entry's
// contact info comes from the most recent order; history is sorted
// newest-first with ties kept in source-collection encounter order. Entries
// themselves are ordered by last order date, newest first.
func Directory(orders []model.Order) []DirectoryEntry {
	groups := make(map[string][]model.Order)
	var keys []string
	for _, o := range orders {
		k := CustomerKey(o.Customer.Name, o.Customer.Number)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], o)
	}

	entries := make([]DirectoryEntry, 0, len(keys))
	for _, k := range keys {
		history := groups[k]
		sortOrdersNewestFirst(history)

		spent := decimal.Zero
		for _, o := range history {
			spent = spent.Add(o.Payment.Total)
		}
		entries = append(entries, DirectoryEntry{
			Key:           k,
			Info:          history[0].Customer,
			TotalOrders:   len(history),
			TotalSpent:    spent,
			LastOrderDate: history[0].OrderDate,
			Orders:        history,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ti, _ := ParseOrderDate(entries[i].LastOrderDate)
		tj, _ := ParseOrderDate(entries[j].LastOrderDate)
		return ti.After(tj)
	})
	return entries
}

// sortOrdersNewestFirst sorts by parsed orderDate descending. Unparseable
// dates sort as the zero time, i.e. last, and equal dates keep their
// encounter order.
func sortOrdersNewestFirst(orders []model.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		ti, _ := ParseOrderDate(orders[i].OrderDate)
		tj, _ := ParseOrderDate(orders[j].OrderDate)
		return ti.After(tj)
	})
}
