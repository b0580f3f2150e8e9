// Package normalizer turns stored order fields into numbers and timestamps.
//
// Stored orders keep whatever text the platform produced. Normalization happens
// at read time, one record at a time, and a record that cannot be normalized
// never stops the others.
package normalizer

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// Amount converts a stored currency value into a finite, non-negative number.
// Text keeps only digits and decimal points and parses the longest valid
// decimal prefix, so "₹1,234.50" becomes 1234.5. Anything unparsable is 0.
func Amount(raw any) float64 {
	switch v := raw.(type) {
	case order.Amount:
		if v.IsNumber() {
			return finite(v.Number())
		}
		return parseText(v.Text())
	case *order.Amount:
		if v == nil {
			return 0
		}
		return Amount(*v)
	case string:
		return parseText(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return parseText(v.String())
		}
		return finite(f)
	case float64:
		return finite(v)
	case float32:
		return finite(float64(v))
	case int:
		return finite(float64(v))
	case int64:
		return finite(float64(v))
	case int32:
		return finite(float64(v))
	case uint:
		return float64(v)
	case uint64:
		return float64(v)
	case uint32:
		return float64(v)
	default:
		return 0
	}
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func parseText(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()

	// Longest prefix of the form digits[.digits].
	end := 0
	seenDigit := false
	seenDot := false
	for end < len(cleaned) {
		c := cleaned[end]
		if c == '.' {
			if seenDot {
				break
			}
			seenDot = true
		} else {
			seenDigit = true
		}
		end++
	}
	if !seenDigit {
		return 0
	}

	f, err := strconv.ParseFloat(strings.TrimSuffix(cleaned[:end], "."), 64)
	if err != nil {
		return 0
	}
	return finite(f)
}

// ParsedOrder is an order with its amount and date normalized.
type ParsedOrder struct {
	order.Order
	Amount float64
	Date   time.Time
}

// Orders normalizes every order and drops those whose date cannot be parsed.
// It returns the number of dropped records.
func Orders(orders []order.Order, loc *time.Location) ([]ParsedOrder, int) {
	parsed := make([]ParsedOrder, 0, len(orders))
	invalid := 0
	for _, o := range orders {
		date, ok := Date(o.OrderDate, loc)
		if !ok {
			invalid++
			continue
		}
		parsed = append(parsed, ParsedOrder{
			Order:  o,
			Amount: Amount(o.TotalCost),
			Date:   date,
		})
	}
	return parsed, invalid
}
