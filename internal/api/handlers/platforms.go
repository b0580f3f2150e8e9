package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/application/service"
)

// PlatformsHandler lists the configured platforms.
type PlatformsHandler struct {
	*Base
	reports *service.ReportService
	syncs   *service.SyncService
}

// NewPlatformsHandler creates a platforms handler. syncs may be nil.
func NewPlatformsHandler(reports *service.ReportService, syncs *service.SyncService) *PlatformsHandler {
	return &PlatformsHandler{
		Base:    &Base{},
		reports: reports,
		syncs:   syncs,
	}
}

// List handles GET /api/platforms.
func (h *PlatformsHandler) List(c *gin.Context) {
	platforms, err := h.reports.Platforms(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	response := dto.PlatformListResponse{
		Platforms: make([]dto.PlatformResponse, 0, len(platforms)),
		Count:     len(platforms),
	}
	for _, p := range platforms {
		response.Platforms = append(response.Platforms, dto.PlatformResponse{
			Name:        p.Name,
			DisplayName: p.DisplayName,
			Strategy:    string(p.Strategy),
			MaxPages:    p.MaxPages,
			OrderCount:  p.Orders,
			LastSync:    dto.FormatTime(p.LastSync),
			Syncing:     h.syncs != nil && h.syncs.IsRunning(p.Name),
		})
	}
	h.WriteJSON(c, http.StatusOK, response)
}
