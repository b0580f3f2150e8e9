package history

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

func orders(ids ...string) []order.Order {
	out := make([]order.Order, len(ids))
	for i, id := range ids {
		out[i] = order.Order{OrderID: id, TotalCost: order.TextAmount("₹" + id)}
	}
	return out
}

func TestMerge(t *testing.T) {
	t.Run("appends only unseen orders after existing", func(t *testing.T) {
		merged := Merge(orders("a", "b"), orders("c", "a", "d"))
		assert.Equal(t, []string{"a", "b", "c", "d"}, order.IDs(merged))
	})

	t.Run("existing record wins over incoming with same id", func(t *testing.T) {
		existing := []order.Order{{OrderID: "a", RestaurantName: "Old"}}
		incoming := []order.Order{{OrderID: "a", RestaurantName: "New"}}

		merged := Merge(existing, incoming)

		assert.Len(t, merged, 1)
		assert.Equal(t, "Old", merged[0].RestaurantName)
	})

	t.Run("duplicates inside incoming are collapsed", func(t *testing.T) {
		merged := Merge(nil, orders("x", "x", "y"))
		assert.Equal(t, []string{"x", "y"}, order.IDs(merged))
	})

	t.Run("is idempotent", func(t *testing.T) {
		existing := orders("a", "b")
		incoming := orders("b", "c")

		once := Merge(existing, incoming)
		twice := Merge(existing, once)

		assert.Equal(t, once, twice)
		assert.Equal(t, once, Merge(once, incoming))
	})

	t.Run("does not modify inputs", func(t *testing.T) {
		existing := orders("a")
		incoming := orders("b")

		_ = Merge(existing, incoming)

		assert.Equal(t, []string{"a"}, order.IDs(existing))
		assert.Equal(t, []string{"b"}, order.IDs(incoming))
	})
}

func TestDedupe(t *testing.T) {
	t.Run("removes later duplicates and reports change", func(t *testing.T) {
		cleaned, changed := Dedupe(orders("a", "b", "a", "c", "b"))

		assert.True(t, changed)
		assert.Equal(t, []string{"a", "b", "c"}, order.IDs(cleaned))
	})

	t.Run("reports no change for a clean collection", func(t *testing.T) {
		cleaned, changed := Dedupe(orders("a", "b"))

		assert.False(t, changed)
		assert.Equal(t, []string{"a", "b"}, order.IDs(cleaned))
	})

	t.Run("is idempotent", func(t *testing.T) {
		once, _ := Dedupe(orders("a", "a", "b", "b", "b"))
		twice, changed := Dedupe(once)

		assert.False(t, changed)
		assert.Equal(t, once, twice)
	})

	t.Run("empty input", func(t *testing.T) {
		cleaned, changed := Dedupe(nil)

		assert.False(t, changed)
		assert.Empty(t, cleaned)
	})
}
