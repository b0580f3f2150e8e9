package dto

import (
	"time"

	"github.com/eshaffer321/foodtracker/internal/domain/analytics"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// PlatformResponse describes one configured platform.
type PlatformResponse struct {
	Name        string  `json:"name"`
	DisplayName string  `json:"display_name"`
	Strategy    string  `json:"strategy"`
	MaxPages    int     `json:"max_pages"`
	OrderCount  int     `json:"order_count"`
	LastSync    *string `json:"last_sync,omitempty"`
	Syncing     bool    `json:"syncing"`
}

// PlatformListResponse is returned when listing platforms.
type PlatformListResponse struct {
	Platforms []PlatformResponse `json:"platforms"`
	Count     int                `json:"count"`
}

// OrderListResponse is one page of a platform's stored orders, in the
// persisted record format.
type OrderListResponse struct {
	Platform   string        `json:"platform"`
	Orders     []order.Order `json:"orders"`
	TotalCount int           `json:"total_count"`
	Limit      int           `json:"limit"`
	Offset     int           `json:"offset"`
}

// AnalyticsResponse is the report for one platform and range.
type AnalyticsResponse struct {
	Platform       string                      `json:"platform"`
	DisplayName    string                      `json:"display_name"`
	Start          *string                     `json:"start,omitempty"`
	End            *string                     `json:"end,omitempty"`
	LastSync       *string                     `json:"last_sync,omitempty"`
	StoredOrders   int                         `json:"stored_orders"`
	InvalidDates   int                         `json:"invalid_dates"`
	Summary        *analytics.Report           `json:"summary"`
	TopRestaurants []analytics.RestaurantTotal `json:"top_restaurants"`
	ChartData      []analytics.RestaurantTotal `json:"chart_restaurants"`
}

// SyncRunResponse represents a stored sync run in API responses.
type SyncRunResponse struct {
	ID          string `json:"id"`
	Platform    string `json:"platform"`
	StartedAt   string `json:"started_at"`
	CompletedAt string `json:"completed_at,omitempty"`
	State       string `json:"state"`
	Pages       int    `json:"pages"`
	Fetched     int    `json:"fetched"`
	Added       int    `json:"added"`
	Total       int    `json:"total"`
	Error       string `json:"error,omitempty"`
}

// SyncRunListResponse is returned when listing sync runs.
type SyncRunListResponse struct {
	Runs  []SyncRunResponse `json:"runs"`
	Count int               `json:"count"`
}

// NewHealthResponse creates a health response with current timestamp.
func NewHealthResponse() HealthResponse {
	return HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// FormatTime renders t as RFC 3339, or nil for a nil or zero time.
func FormatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}
