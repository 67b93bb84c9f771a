package services

import (
	"context"

	"whisper-web/internal/api/v1/dto"
)

// UploadService stages uploads and runs them once the user confirms
type UploadService interface {
	CreateUpload(ctx context.Context, filename string, data []byte) (*dto.UploadResponse, error)
	Transcribe(ctx context.Context, id string) (*dto.TranscriptionResponse, error)
	DiscardUpload(ctx context.Context, id string) error
}

// ModelService reports on the shared model
type ModelService interface {
	GetModelStatus(ctx context.Context) *dto.ModelStatusResponse
}
