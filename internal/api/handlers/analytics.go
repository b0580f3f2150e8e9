package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/domain/analytics"
)

// AnalyticsHandler serves the spending report.
type AnalyticsHandler struct {
	*Base
	reports *service.ReportService
	now     func() time.Time
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(reports *service.ReportService) *AnalyticsHandler {
	return &AnalyticsHandler{
		Base:    &Base{},
		reports: reports,
		now:     time.Now,
	}
}

// Get handles GET /api/platforms/:platform/analytics?range=30 or
// ?start=YYYY-MM-DD&end=YYYY-MM-DD.
func (h *AnalyticsHandler) Get(c *gin.Context) {
	var params dto.AnalyticsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError("invalid query"))
		return
	}

	r, err := service.ParseRange(params.Range, params.Start, params.End, h.now(), h.reports.Location())
	if err != nil {
		if errors.Is(err, service.ErrInvalidRange) {
			h.WriteError(c, http.StatusBadRequest, dto.ValidationError(err.Error()))
			return
		}
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	}

	out, err := h.reports.Report(c.Request.Context(), c.Param("platform"), r)
	if err != nil {
		h.writePlatformError(c, err)
		return
	}

	h.WriteJSON(c, http.StatusOK, toAnalyticsResponse(out))
}

func toAnalyticsResponse(out *service.PlatformReport) dto.AnalyticsResponse {
	return dto.AnalyticsResponse{
		Platform:       out.Platform,
		DisplayName:    out.DisplayName,
		Start:          formatDay(out.Range.Start),
		End:            formatDay(out.Range.End),
		LastSync:       dto.FormatTime(out.LastSync),
		StoredOrders:   out.Stored,
		InvalidDates:   out.Invalid,
		Summary:        out.Report,
		TopRestaurants: out.Report.TopRestaurants(analytics.LeaderboardSize),
		ChartData:      out.Report.RestaurantChart(),
	}
}

func formatDay(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.Format(service.DayLayout)
	return &s
}
