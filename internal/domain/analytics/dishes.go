package analytics

import (
	"regexp"
	"slices"
	"strings"

	"github.com/eshaffer321/foodtracker/internal/domain/normalizer"
)

var quantityPrefix = regexp.MustCompile(`^\d+\s*[xX]\s*`)

// DishItems splits a dish string into cleaned item names, dropping the
// leading quantity marker ("2 x ") and empty entries.
func DishItems(dishString string) []string {
	if strings.TrimSpace(dishString) == "" {
		return nil
	}
	var items []string
	for _, part := range strings.Split(dishString, ",") {
		item := strings.TrimSpace(quantityPrefix.ReplaceAllString(strings.TrimSpace(part), ""))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// FavoriteDishes counts dish occurrences across orders and returns the top n.
// Equal counts keep first-encountered order.
func FavoriteDishes(orders []normalizer.ParsedOrder, n int) []DishCount {
	var counts []DishCount
	index := make(map[string]int)
	for _, o := range orders {
		for _, item := range DishItems(o.DishString) {
			if i, ok := index[item]; ok {
				counts[i].Count++
				continue
			}
			index[item] = len(counts)
			counts = append(counts, DishCount{Name: item, Count: 1})
		}
	}

	slices.SortStableFunc(counts, func(a, b DishCount) int {
		return b.Count - a.Count
	})
	if n >= 0 && len(counts) > n {
		counts = counts[:n]
	}
	if counts == nil {
		counts = []DishCount{}
	}
	return counts
}
