// Package providers defines the contract every food-delivery platform
// adapter implements, the per-platform descriptor, and the errors adapters
// report to the sync engine.
package providers

import (
	"context"
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/classifier"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// Strategy is how a platform paginates its order history.
type Strategy string

const (
	// PageNumber requests page 1, 2, 3... until a page comes back empty.
	PageNumber Strategy = "page"
	// Cursor requests the first page, then continues from the id of the last
	// record seen.
	Cursor Strategy = "cursor"
)

// Platform describes one supported platform.
type Platform struct {
	Name        string // "zomato", "swiggy"
	DisplayName string // "Zomato", "Swiggy"

	// Storage keys for this platform's partition.
	DataKey     string
	LastSyncKey string
	// Keys used by older versions, read once and migrated.
	LegacyDataKey string
	LegacySyncKey string

	BaseURL  string
	Strategy Strategy

	// MaxPages bounds a single sync session.
	MaxPages int

	// Courtesy delay between page requests: Delay plus up to Jitter.
	Delay  time.Duration
	Jitter time.Duration

	// Rules filters failed orders out of each batch. Nil keeps every record.
	Rules *classifier.RuleSet
}

// PageState is the pagination position for the next request. Page-number
// adapters use Page, cursor adapters use Cursor (empty on the first call).
type PageState struct {
	Page   int
	Cursor string
}

// Page is one decoded response.
type Page struct {
	Records []RawOrder
	Next    PageState
	// More is false when the platform signalled the end of history.
	More bool
}

// RawOrder is a platform-shaped order record. The only implementations are
// the zomato and swiggy record types.
type RawOrder interface {
	ID() string
	StatusSignal() (string, bool)
	Normalize() order.Order
	variant()
}

// Variant is embedded by RawOrder implementations to satisfy the unexported
// marker method.
type Variant struct{}

func (Variant) variant() {}

// Adapter fetches order history pages from one platform.
type Adapter interface {
	Platform() Platform
	InitialState() PageState
	FetchPage(ctx context.Context, state PageState) (*Page, error)
}
