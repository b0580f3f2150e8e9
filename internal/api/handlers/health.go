package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/foodtracker/internal/api/dto"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	*Base
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{Base: &Base{}}
}

// Get handles GET /health.
func (h *HealthHandler) Get(c *gin.Context) {
	h.WriteJSON(c, http.StatusOK, dto.NewHealthResponse())
}
