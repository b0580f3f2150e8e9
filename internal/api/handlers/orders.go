package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/domain/order"
)

// OrdersHandler serves a platform's stored orders.
type OrdersHandler struct {
	*Base
	reports *service.ReportService
}

// NewOrdersHandler creates a new orders handler.
func NewOrdersHandler(reports *service.ReportService) *OrdersHandler {
	return &OrdersHandler{
		Base:    &Base{},
		reports: reports,
	}
}

// List handles GET /api/platforms/:platform/orders - returns stored orders
// in sync order, optionally filtered by restaurant.
func (h *OrdersHandler) List(c *gin.Context) {
	params := dto.DefaultOrderListParams()
	params.Limit = ParseIntParam(c, "limit", params.Limit)
	params.Offset = ParseIntParam(c, "offset", params.Offset)
	params.Restaurant = strings.TrimSpace(c.Query("restaurant"))

	if params.Limit <= 0 || params.Limit > dto.MaxOrderListLimit {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("limit must be between 1 and 500"))
		return
	}
	if params.Offset < 0 {
		h.WriteError(c, http.StatusBadRequest, dto.ValidationError("offset must not be negative"))
		return
	}

	orders, err := h.reports.Orders(c.Request.Context(), c.Param("platform"))
	if err != nil {
		h.writePlatformError(c, err)
		return
	}

	if params.Restaurant != "" {
		orders = filterRestaurant(orders, params.Restaurant)
	}

	total := len(orders)
	start := min(params.Offset, total)
	end := min(start+params.Limit, total)

	h.WriteJSON(c, http.StatusOK, dto.OrderListResponse{
		Platform:   c.Param("platform"),
		Orders:     orders[start:end],
		TotalCount: total,
		Limit:      params.Limit,
		Offset:     params.Offset,
	})
}

func filterRestaurant(orders []order.Order, name string) []order.Order {
	kept := make([]order.Order, 0, len(orders))
	for _, o := range orders {
		if strings.EqualFold(o.Restaurant(), name) {
			kept = append(kept, o)
		}
	}
	return kept
}
