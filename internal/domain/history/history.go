// Package history reconciles freshly synced orders with a platform's stored
// collection. orderId is the only identity; the first occurrence always wins.
package history

import "github.com/eshaffer321/foodtracker/internal/domain/order"

// Merge appends every incoming order whose id is not already in existing.
// existing keeps its order and new orders follow in incoming order. Merging
// the same incoming orders twice is a no-op.
func Merge(existing, incoming []order.Order) []order.Order {
	seen := make(map[string]bool, len(existing)+len(incoming))
	merged := make([]order.Order, 0, len(existing)+len(incoming))
	for _, o := range existing {
		seen[o.OrderID] = true
		merged = append(merged, o)
	}
	for _, o := range incoming {
		if seen[o.OrderID] {
			continue
		}
		seen[o.OrderID] = true
		merged = append(merged, o)
	}
	return merged
}

// Dedupe removes every order whose id already appeared earlier in the
// sequence. changed reports whether anything was removed, so callers only
// write the cleaned collection back when it differs.
func Dedupe(orders []order.Order) (cleaned []order.Order, changed bool) {
	seen := make(map[string]bool, len(orders))
	cleaned = make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if seen[o.OrderID] {
			changed = true
			continue
		}
		seen[o.OrderID] = true
		cleaned = append(cleaned, o)
	}
	return cleaned, changed
}
