// Package order defines the canonical order record shared by every platform.
//
// The JSON field names are the persisted format; changing them breaks
// collections that were written by earlier syncs.
package order

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnknownRestaurant is used when a platform payload has no restaurant name.
const UnknownRestaurant = "Unknown Restaurant"

// Order is one order as stored in a platform's partition.
type Order struct {
	OrderID        string `json:"orderId"`
	TotalCost      Amount `json:"totalCost"`
	OrderDate      string `json:"orderDate"`
	RestaurantName string `json:"restaurantName"`
	DishString     string `json:"dishString"`
	Status         string `json:"status,omitempty"`
}

// Restaurant returns the restaurant name or the UnknownRestaurant sentinel.
func (o Order) Restaurant() string {
	if o.RestaurantName == "" {
		return UnknownRestaurant
	}
	return o.RestaurantName
}

// UnmarshalJSON reads a stored order. Text fields also accept numbers and
// fall back to empty for any other JSON kind.
func (o *Order) UnmarshalJSON(data []byte) error {
	var aux struct {
		OrderID        FlexString `json:"orderId"`
		TotalCost      Amount     `json:"totalCost"`
		OrderDate      FlexString `json:"orderDate"`
		RestaurantName FlexString `json:"restaurantName"`
		DishString     FlexString `json:"dishString"`
		Status         FlexString `json:"status"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*o = Order{
		OrderID:        string(aux.OrderID),
		TotalCost:      aux.TotalCost,
		OrderDate:      string(aux.OrderDate),
		RestaurantName: string(aux.RestaurantName),
		DishString:     string(aux.DishString),
		Status:         string(aux.Status),
	}
	return nil
}

// DecodeList decodes a JSON array of orders one element at a time. Elements
// that are not objects are dropped and counted in skipped; a document that is
// not an array is an error.
func DecodeList(data []byte) (orders []Order, skipped int, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, err
	}
	orders = make([]Order, 0, len(raw))
	for _, r := range raw {
		var o Order
		if jsonKind(r) != '{' || json.Unmarshal(r, &o) != nil {
			skipped++
			continue
		}
		orders = append(orders, o)
	}
	return orders, skipped, nil
}

// Amount holds a currency value exactly as the platform delivered it:
// either formatted text ("₹1,200") or a plain number.
type Amount struct {
	text    string
	number  float64
	numeric bool
}

// TextAmount wraps a formatted currency string.
func TextAmount(s string) Amount { return Amount{text: s} }

// NumberAmount wraps a plain numeric value.
func NumberAmount(f float64) Amount { return Amount{number: f, numeric: true} }

// IsNumber reports whether the amount was stored as a number.
func (a Amount) IsNumber() bool { return a.numeric }

// Text returns the stored text; empty for numeric amounts.
func (a Amount) Text() string { return a.text }

// Number returns the stored number; zero for text amounts.
func (a Amount) Number() float64 { return a.number }

// String renders the amount for display.
func (a Amount) String() string {
	if a.numeric {
		return strconv.FormatFloat(a.number, 'f', -1, 64)
	}
	return a.text
}

// MarshalJSON writes numbers as JSON numbers and everything else as strings.
func (a Amount) MarshalJSON() ([]byte, error) {
	if a.numeric {
		return json.Marshal(a.number)
	}
	return json.Marshal(a.text)
}

// UnmarshalJSON accepts a JSON string or a JSON number. Any other value
// (null, object, array, bool) decodes to the zero Amount so a drifted field
// never fails the enclosing record.
func (a *Amount) UnmarshalJSON(data []byte) error {
	*a = Amount{}
	switch jsonKind(data) {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode amount text: %w", err)
		}
		*a = TextAmount(s)
	case '0':
		var f float64
		if err := json.Unmarshal(data, &f); err == nil {
			*a = NumberAmount(f)
		}
	}
	return nil
}

// FlexString decodes a value that platforms send either as a JSON string or
// as a JSON number, such as order identifiers and numeric status codes.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler. Values that are neither a
// string nor a number decode to the empty string.
func (id *FlexString) UnmarshalJSON(data []byte) error {
	*id = ""
	switch jsonKind(data) {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexString(s)
	case '0':
		var n json.Number
		if err := json.Unmarshal(data, &n); err == nil {
			*id = FlexString(n.String())
		}
	}
	return nil
}

// jsonKind classifies a raw JSON value: '"' for strings, '0' for numbers,
// '{' for objects and 0 for everything else.
func jsonKind(data []byte) byte {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return 0
	}
	switch c := data[0]; {
	case c == '"':
		return '"'
	case c == '-' || (c >= '0' && c <= '9'):
		return '0'
	case c == '{':
		return '{'
	default:
		return 0
	}
}

// IDs returns the order identifiers in sequence order.
func IDs(orders []Order) []string {
	ids := make([]string, len(orders))
	for i, o := range orders {
		ids[i] = o.OrderID
	}
	return ids
}
