package normalizer

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected float64
	}{
		{name: "rupee with thousands separator", input: "₹1,234.50", expected: 1234.50},
		{name: "empty string", input: "", expected: 0},
		{name: "no digits", input: "free", expected: 0},
		{name: "plain number", input: 250.0, expected: 250},
		{name: "integer", input: 99, expected: 99},
		{name: "text amount", input: order.TextAmount("₹ 320"), expected: 320},
		{name: "numeric amount", input: order.NumberAmount(415.75), expected: 415.75},
		{name: "json number", input: json.Number("12.5"), expected: 12.5},
		{name: "second decimal point ends the number", input: "1.2.3", expected: 1.2},
		{name: "lone decimal point", input: ".", expected: 0},
		{name: "minus sign is stripped", input: "-₹50", expected: 50},
		{name: "negative number", input: -20.0, expected: 0},
		{name: "NaN", input: math.NaN(), expected: 0},
		{name: "infinity", input: math.Inf(1), expected: 0},
		{name: "unsupported type", input: struct{}{}, expected: 0},
		{name: "nil", input: nil, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Amount(tt.input))
		})
	}
}

func TestAmount_IsTotalOverStrings(t *testing.T) {
	inputs := []string{"", "₹", "abc", "..", "1e9", "₹1,00,000", "Rs. 45", "  12  ", "0.0.0.1", "∞"}
	for _, in := range inputs {
		got := Amount(in)
		assert.False(t, math.IsNaN(got), in)
		assert.False(t, math.IsInf(got, 0), in)
		assert.GreaterOrEqual(t, got, 0.0, in)
	}
}

func TestDate(t *testing.T) {
	ist, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "zomato connector word",
			input:    "March 15, 2024 at 08:30 PM",
			expected: time.Date(2024, 3, 15, 20, 30, 0, 0, ist),
		},
		{
			name:     "swiggy rendered format",
			input:    "January 5, 2024, 9:05 AM",
			expected: time.Date(2024, 1, 5, 9, 5, 0, 0, ist),
		},
		{
			name:     "short month",
			input:    "Dec 31, 2023 11:59 pm",
			expected: time.Date(2023, 12, 31, 23, 59, 0, 0, ist),
		},
		{
			name:     "day first",
			input:    "15 Mar 2024, 13:45",
			expected: time.Date(2024, 3, 15, 13, 45, 0, 0, ist),
		},
		{
			name:     "meridiem glued to time",
			input:    "April 2, 2024 7:15pm",
			expected: time.Date(2024, 4, 2, 19, 15, 0, 0, ist),
		},
		{
			name:     "date only",
			input:    "February 29, 2024",
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, ist),
		},
		{
			name:     "iso date time",
			input:    "2024-03-15 20:30:00",
			expected: time.Date(2024, 3, 15, 20, 30, 0, 0, ist),
		},
		{
			name:     "rfc3339 converts into location",
			input:    "2024-03-15T15:00:00Z",
			expected: time.Date(2024, 3, 15, 20, 30, 0, 0, ist),
		},
		{
			name:     "epoch seconds",
			input:    "1710514800",
			expected: time.Unix(1710514800, 0).In(ist),
		},
		{
			name:     "epoch millis",
			input:    "1710514800000",
			expected: time.Unix(1710514800, 0).In(ist),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Date(tt.input, ist)
			require.True(t, ok)
			assert.True(t, tt.expected.Equal(got), "expected %v, got %v", tt.expected, got)
		})
	}
}

func TestDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "   ", "yesterday", "32 Foo 2024", "Invalid Date", "12345"} {
		_, ok := Date(in, time.UTC)
		assert.False(t, ok, in)
	}
}

func TestOrders_DropsUnparsableDates(t *testing.T) {
	orders := []order.Order{
		{OrderID: "1", TotalCost: order.TextAmount("₹100"), OrderDate: "March 1, 2024 at 01:00 PM"},
		{OrderID: "2", TotalCost: order.NumberAmount(50), OrderDate: "not a date"},
		{OrderID: "3", TotalCost: order.TextAmount("bad"), OrderDate: "March 2, 2024, 2:00 PM"},
	}

	parsed, invalid := Orders(orders, time.UTC)

	assert.Equal(t, 1, invalid)
	require.Len(t, parsed, 2)
	assert.Equal(t, "1", parsed[0].OrderID)
	assert.Equal(t, 100.0, parsed[0].Amount)
	assert.Equal(t, "3", parsed[1].OrderID)
	assert.Equal(t, 0.0, parsed[1].Amount)
	assert.Equal(t, 14, parsed[1].Date.Hour())
}
