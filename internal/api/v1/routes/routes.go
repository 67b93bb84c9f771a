package routes

import (
	"github.com/gin-gonic/gin"
	"whisper-web/internal/api/v1/handlers"
	"whisper-web/internal/api/v1/services"
)

// ServiceContainer holds all services needed by handlers
type ServiceContainer struct {
	UploadService  services.UploadService
	ModelService   services.ModelService
	MaxUploadBytes int64
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, container *ServiceContainer) {
	uploadHandler := handlers.NewUploadHandler(container.UploadService, container.MaxUploadBytes)
	uploads := router.Group("/uploads")
	{
		uploads.POST("", uploadHandler.Create)
		uploads.POST("/:id/transcribe", uploadHandler.Transcribe)
		uploads.DELETE("/:id", uploadHandler.Discard)
	}

	if container.ModelService != nil {
		modelHandler := handlers.NewModelHandler(container.ModelService)
		router.GET("/model", modelHandler.Get)
	}
}
