package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/application/service"
	"github.com/eshaffer321/foodtracker/internal/infrastructure/storage"
)

// RunsHandler handles sync run history requests.
type RunsHandler struct {
	*Base
	syncs *service.SyncService
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(syncs *service.SyncService) *RunsHandler {
	return &RunsHandler{
		Base:  &Base{},
		syncs: syncs,
	}
}

// List handles GET /api/platforms/:platform/runs - returns the most recent
// sync runs, newest first.
func (h *RunsHandler) List(c *gin.Context) {
	limit := ParseIntParam(c, "limit", 20)

	runs, err := h.syncs.Runs(c.Request.Context(), c.Param("platform"))
	if err != nil {
		h.writePlatformError(c, err)
		return
	}
	if limit > 0 && limit < len(runs) {
		runs = runs[:limit]
	}

	response := dto.SyncRunListResponse{
		Runs:  make([]dto.SyncRunResponse, 0, len(runs)),
		Count: len(runs),
	}
	for _, run := range runs {
		response.Runs = append(response.Runs, toSyncRunResponse(run))
	}
	h.WriteJSON(c, http.StatusOK, response)
}

// toSyncRunResponse converts a storage SyncRun to an API response.
func toSyncRunResponse(run storage.SyncRun) dto.SyncRunResponse {
	resp := dto.SyncRunResponse{
		ID:        run.ID,
		Platform:  run.Platform,
		StartedAt: run.StartedAt.Format(time.RFC3339),
		State:     run.State,
		Pages:     run.Pages,
		Fetched:   run.Fetched,
		Added:     run.Added,
		Total:     run.Total,
		Error:     run.Error,
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	return resp
}
