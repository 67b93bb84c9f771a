package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"whisper-web/internal/api/v1/services"
)

// ModelHandler reports on the shared model
type ModelHandler struct {
	service services.ModelService
}

// NewModelHandler creates a new model handler
func NewModelHandler(service services.ModelService) *ModelHandler {
	return &ModelHandler{service: service}
}

// Get handles GET /api/v1/model
//
// @Summary Model load state
// @Tags model
// @Produce json
// @Success 200 {object} dto.ModelStatusResponse
// @Router /model [get]
func (h *ModelHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetModelStatus(c.Request.Context()))
}
