package dto

// OrderListParams represents query parameters for listing a platform's orders.
type OrderListParams struct {
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
	Restaurant string `form:"restaurant"`
}

// AnalyticsParams selects the report range: a quick filter or explicit
// YYYY-MM-DD bounds.
type AnalyticsParams struct {
	Range string `form:"range"`
	Start string `form:"start"`
	End   string `form:"end"`
}

// MaxOrderListLimit caps a single page of orders.
const MaxOrderListLimit = 500

// DefaultOrderListParams returns default values for order list params.
func DefaultOrderListParams() OrderListParams {
	return OrderListParams{
		Limit:  50,
		Offset: 0,
	}
}
