package swiggy

import (
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/normalizer"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// DateLayout is how order times are stored, e.g. "March 15, 2024, 8:30 PM".
const DateLayout = "January 2, 2006, 3:04 PM"

// RawOrder is one element of data.orders.
type RawOrder struct {
	providers.Variant

	OrderID        order.FlexString `json:"order_id"`
	OrderTotal     order.FlexString `json:"order_total"`
	OrderTime      string           `json:"order_time"`
	RestaurantName string           `json:"restaurant_name"`
	OrderStatus    string           `json:"order_status"`
	Items          []struct {
		Name string `json:"name"`
	} `json:"order_items"`

	loc *time.Location
}

// ID implements providers.RawOrder.
func (o *RawOrder) ID() string { return string(o.OrderID) }

// StatusSignal implements providers.RawOrder.
func (o *RawOrder) StatusSignal() (string, bool) {
	s := strings.TrimSpace(o.OrderStatus)
	return s, s != ""
}

// Normalize maps the record onto the canonical order.
func (o *RawOrder) Normalize() order.Order {
	total := strings.TrimSpace(string(o.OrderTotal))
	if total == "" {
		total = "0"
	}

	names := make([]string, 0, len(o.Items))
	for _, item := range o.Items {
		names = append(names, item.Name)
	}

	restaurant := o.RestaurantName
	if strings.TrimSpace(restaurant) == "" {
		restaurant = order.UnknownRestaurant
	}

	return order.Order{
		OrderID:        o.ID(),
		TotalCost:      order.TextAmount("₹" + total),
		OrderDate:      o.renderDate(),
		RestaurantName: restaurant,
		DishString:     strings.Join(names, ", "),
		Status:         strings.ToLower(strings.TrimSpace(o.OrderStatus)),
	}
}

// renderDate rewrites order_time in the display layout. Unparsable times are
// stored as received.
func (o *RawOrder) renderDate() string {
	loc := o.loc
	if loc == nil {
		loc = time.Local
	}
	t, ok := normalizer.Date(o.OrderTime, loc)
	if !ok {
		return o.OrderTime
	}
	return t.In(loc).Format(DateLayout)
}
