package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"whisper-web/internal/api/errors"
	"whisper-web/internal/api/middleware"
	"whisper-web/internal/api/v1/dto"
	"whisper-web/internal/api/v1/services"
)

// UploadHandler handles the upload, confirm and discard endpoints
type UploadHandler struct {
	service        services.UploadService
	maxUploadBytes int64
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(service services.UploadService, maxUploadBytes int64) *UploadHandler {
	return &UploadHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /api/v1/uploads
// Stages an audio file and waits for confirmation
//
// @Summary Upload audio for transcription
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Audio file (mp3, wav, m4a, flac, ogg, aac)"
// @Success 201 {object} dto.UploadResponse "Upload staged"
// @Failure 413 {object} errors.APIError "Upload too large"
// @Failure 422 {object} errors.APIError "Missing file or unsupported format"
// @Failure 500 {object} errors.APIError "Upload could not be staged"
// @Router /uploads [post]
func (h *UploadHandler) Create(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		if c.Request.ContentLength > h.maxUploadBytes {
			middleware.HandleError(c, errors.NewTooLargeError(h.maxUploadBytes))
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	var req dto.UploadRequest
	if err := middleware.ValidateForm(c, &req); err != nil {
		middleware.HandleError(c, err)
		return
	}

	data, err := readFormFile(req)
	if err != nil {
		middleware.HandleError(c, errors.NewBadRequestError(err.Error()))
		return
	}

	response, err := h.service.CreateUpload(c.Request.Context(), req.File.Filename, data)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// Transcribe handles POST /api/v1/uploads/:id/transcribe
// Confirms a staged upload and runs the transcription
//
// @Summary Transcribe a staged upload
// @Tags uploads
// @Produce json,plain
// @Param id path string true "Upload ID"
// @Param download query bool false "Return transcription.txt as an attachment"
// @Success 200 {object} dto.TranscriptionResponse "Transcript"
// @Failure 404 {object} errors.APIError "Unknown or already used upload"
// @Failure 422 {object} errors.APIError "The audio could not be transcribed"
// @Failure 503 {object} errors.APIError "Model unavailable"
// @Router /uploads/{id}/transcribe [post]
func (h *UploadHandler) Transcribe(c *gin.Context) {
	var query dto.TranscribeQuery
	if err := middleware.ValidateQuery(c, &query); err != nil {
		middleware.HandleError(c, err)
		return
	}

	response, err := h.service.Transcribe(c.Request.Context(), c.Param("id"))
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	if query.Download || wantsPlainText(c) {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", response.Download.Filename))
		c.Data(http.StatusOK, response.Download.ContentType, response.Download.Data)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Discard handles DELETE /api/v1/uploads/:id
//
// @Summary Discard a staged upload without transcribing it
// @Tags uploads
// @Param id path string true "Upload ID"
// @Success 204 "Discarded"
// @Failure 404 {object} errors.APIError "Unknown or already used upload"
// @Router /uploads/{id} [delete]
func (h *UploadHandler) Discard(c *gin.Context) {
	if err := h.service.DiscardUpload(c.Request.Context(), c.Param("id")); err != nil {
		middleware.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func readFormFile(req dto.UploadRequest) ([]byte, error) {
	f, err := req.File.Open()
	if err != nil {
		return nil, fmt.Errorf("cannot open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read uploaded file: %w", err)
	}
	return data, nil
}

func wantsPlainText(c *gin.Context) bool {
	accept := c.GetHeader("Accept")
	return strings.HasPrefix(accept, "text/plain")
}
