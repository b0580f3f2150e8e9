package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/adapters/providers"
	"github.com/eshaffer321/foodtracker/internal/api/dto"
	"github.com/eshaffer321/foodtracker/internal/application/service"
)

// SyncHandler handles sync-related HTTP requests.
type SyncHandler struct {
	*Base
	syncService *service.SyncService
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncService *service.SyncService) *SyncHandler {
	return &SyncHandler{
		Base:        &Base{},
		syncService: syncService,
	}
}

// Sync handles POST /api/sync - runs a sync and answers when it is done.
func (h *SyncHandler) Sync(c *gin.Context) {
	req, ok := h.bindRequest(c, func(status int, msg string) {
		h.WriteJSON(c, status, dto.SyncResponse{Status: dto.SyncStatusError, Code: dto.ErrCodeBadRequest, Message: msg})
	})
	if !ok {
		return
	}

	outcome, err := h.syncService.SyncWith(c.Request.Context(), req)
	if err != nil {
		status, code := syncError(err)
		h.WriteJSON(c, status, dto.SyncResponse{
			Status:  dto.SyncStatusError,
			Code:    code,
			Message: err.Error(),
		})
		return
	}

	resp := dto.SyncResponse{
		Status:   dto.SyncStatusSuccess,
		Count:    outcome.Count,
		Platform: outcome.DisplayName,
		Added:    outcome.Added,
		Total:    outcome.Total,
	}
	if outcome.Err != nil {
		resp.Warning = outcome.Err.Error()
	}
	h.WriteJSON(c, http.StatusOK, resp)
}

// StartJob handles POST /api/sync/jobs - starts a background sync job.
func (h *SyncHandler) StartJob(c *gin.Context) {
	req, ok := h.bindRequest(c, func(status int, msg string) {
		h.WriteError(c, status, dto.BadRequestError(msg))
	})
	if !ok {
		return
	}

	jobID, err := h.syncService.StartSync(c.Request.Context(), req)
	switch {
	case errors.Is(err, providers.ErrUnknownPlatform):
		h.WriteError(c, http.StatusBadRequest, dto.BadRequestError(err.Error()))
		return
	case errors.Is(err, service.ErrSyncInProgress):
		h.WriteError(c, http.StatusConflict, dto.NewAPIError(dto.ErrCodeSyncInProgress, err.Error()))
		return
	case err != nil:
		_ = c.Error(err)
		h.WriteError(c, http.StatusInternalServerError, dto.InternalError())
		return
	}

	h.WriteJSON(c, http.StatusAccepted, dto.StartSyncResponse{
		JobID:    jobID,
		Platform: req.Platform,
		Status:   string(service.StatusPending),
	})
}

// GetJob handles GET /api/sync/jobs/:id - gets sync job status.
func (h *SyncHandler) GetJob(c *gin.Context) {
	job, err := h.syncService.GetSyncJob(c.Param("id"))
	if err != nil {
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("sync job"))
		return
	}
	h.WriteJSON(c, http.StatusOK, toSyncJobResponse(job))
}

// ListActiveJobs handles GET /api/sync/jobs/active - lists active sync jobs.
func (h *SyncHandler) ListActiveJobs(c *gin.Context) {
	h.WriteJSON(c, http.StatusOK, toSyncJobsResponse(h.syncService.ListActiveSyncJobs()))
}

// ListJobs handles GET /api/sync/jobs - lists all retained sync jobs.
func (h *SyncHandler) ListJobs(c *gin.Context) {
	h.WriteJSON(c, http.StatusOK, toSyncJobsResponse(h.syncService.ListAllSyncJobs()))
}

// CancelJob handles DELETE /api/sync/jobs/:id - cancels a sync job.
func (h *SyncHandler) CancelJob(c *gin.Context) {
	err := h.syncService.CancelSync(c.Param("id"))
	switch {
	case errors.Is(err, service.ErrJobNotFound):
		h.WriteError(c, http.StatusNotFound, dto.NotFoundError("sync job"))
		return
	case err != nil:
		h.WriteError(c, http.StatusConflict, dto.NewAPIError(dto.ErrCodeCancelFailed, err.Error()))
		return
	}

	h.WriteJSON(c, http.StatusOK, dto.MessageResponse{
		Message: "Sync job cancelled successfully",
	})
}

// bindRequest decodes and validates the sync body, reporting problems
// through fail.
func (h *SyncHandler) bindRequest(c *gin.Context, fail func(status int, msg string)) (service.SyncRequest, bool) {
	var body dto.SyncRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(http.StatusBadRequest, "invalid request body")
		return service.SyncRequest{}, false
	}
	if body.Platform == "" {
		fail(http.StatusBadRequest, "platform is required")
		return service.SyncRequest{}, false
	}
	if body.MaxPages < 0 {
		fail(http.StatusBadRequest, "max_pages must not be negative")
		return service.SyncRequest{}, false
	}
	return service.SyncRequest{
		Platform:    body.Platform,
		Incremental: body.Incremental,
		MaxPages:    body.MaxPages,
	}, true
}

// syncError maps a failed sync to its HTTP status and error code.
func syncError(err error) (int, string) {
	switch {
	case errors.Is(err, providers.ErrAuthRequired):
		return http.StatusUnauthorized, dto.ErrCodeAuthRequired
	case errors.Is(err, service.ErrSyncInProgress):
		return http.StatusConflict, dto.ErrCodeSyncInProgress
	case errors.Is(err, providers.ErrUnknownPlatform):
		return http.StatusBadRequest, dto.ErrCodeBadRequest
	default:
		return http.StatusBadGateway, dto.ErrCodeInternalError
	}
}

func toSyncJobsResponse(jobs []*service.SyncJob) dto.SyncJobsResponse {
	response := dto.SyncJobsResponse{
		Jobs:  make([]dto.SyncJobResponse, 0, len(jobs)),
		Count: len(jobs),
	}
	for _, job := range jobs {
		response.Jobs = append(response.Jobs, toSyncJobResponse(job))
	}
	return response
}

// toSyncJobResponse converts a service model to an API response.
func toSyncJobResponse(job *service.SyncJob) dto.SyncJobResponse {
	response := dto.SyncJobResponse{
		JobID:       job.ID,
		Platform:    job.Platform,
		Status:      string(job.Status),
		Incremental: job.Request.Incremental,
		StartedAt:   job.StartedAt.Format(time.RFC3339),
		CompletedAt: dto.FormatTime(job.CompletedAt),
		Progress: dto.SyncProgressResponse{
			Phase:      job.Progress.Phase,
			Message:    job.Progress.Message,
			Page:       job.Progress.Page,
			Count:      job.Progress.Count,
			Percent:    job.Progress.Percent,
			LastUpdate: job.Progress.LastUpdate.Format(time.RFC3339),
		},
	}

	if o := job.Outcome; o != nil {
		response.Result = &dto.SyncResultResponse{
			Count: o.Count,
			Added: o.Added,
			Total: o.Total,
			Pages: o.Pages,
			State: string(o.State),
		}
	}

	if job.Error != nil {
		errMsg := job.Error.Error()
		response.Error = &errMsg
	}
	return response
}
