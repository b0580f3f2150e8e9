package zomato

import (
	"strings"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// RawOrder is one entry of the ORDER entity map.
type RawOrder struct {
	providers.Variant

	OrderID       order.FlexString `json:"orderId"`
	TotalCost     order.Amount     `json:"totalCost"`
	OrderDate     string           `json:"orderDate"`
	DishString    string           `json:"dishString"`
	Status        order.FlexString `json:"status"`
	PaymentStatus order.FlexString `json:"paymentStatus"`
	ResInfo       *struct {
		Name string `json:"name"`
	} `json:"resInfo"`
}

// ID implements providers.RawOrder.
func (o *RawOrder) ID() string { return string(o.OrderID) }

// StatusSignal prefers the order status and falls back to the payment status.
func (o *RawOrder) StatusSignal() (string, bool) {
	if s := strings.TrimSpace(string(o.Status)); s != "" {
		return s, true
	}
	if s := strings.TrimSpace(string(o.PaymentStatus)); s != "" {
		return s, true
	}
	return "", false
}

// Normalize maps the record onto the canonical order. Cost and date are kept
// as the platform sent them.
func (o *RawOrder) Normalize() order.Order {
	restaurant := order.UnknownRestaurant
	if o.ResInfo != nil && strings.TrimSpace(o.ResInfo.Name) != "" {
		restaurant = o.ResInfo.Name
	}
	return order.Order{
		OrderID:        o.ID(),
		TotalCost:      o.TotalCost,
		OrderDate:      o.OrderDate,
		RestaurantName: restaurant,
		DishString:     o.DishString,
		Status:         strings.ToLower(strings.TrimSpace(string(o.Status))),
	}
}
