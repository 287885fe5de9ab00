package derive

import (
	"github.com/darzibook/api/internal/enum"
	"github.com/darzibook/api/internal/model"
)

// StatusDistribution counts items per workflow state across every person of
// every order. All five states are always present in the result, zero-valued
// when empty; status strings outside the fixed vocabulary are ignored.
func StatusDistribution(orders []model.Order) map[string]int {
	counts := make(map[string]int, len(enum.ItemStatuses))
	for _, st := range enum.ItemStatuses {
		counts[st] = 0
	}
	for _, o := range orders {
		for _, p := range o.People {
			for _, it := range p.Items {
				if _, ok := counts[it.Status]; ok {
					counts[it.Status]++
				}
			}
		}
	}
	return counts
}
