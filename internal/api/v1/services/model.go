package services

import (
	"context"

	"whisper-web/internal/api/v1/dto"
	"whisper-web/internal/app/model"
)

// StatusSource reports the model cache state
type StatusSource interface {
	Status() model.Status
}

type modelService struct {
	cache   StatusSource
	variant string
}

// NewModelService creates a ModelService over the model cache
func NewModelService(cache StatusSource, variant string) ModelService {
	return &modelService{cache: cache, variant: variant}
}

// GetModelStatus implements ModelService
func (s *modelService) GetModelStatus(ctx context.Context) *dto.ModelStatusResponse {
	status := s.cache.Status()
	resp := &dto.ModelStatusResponse{
		Backend: status.Backend,
		Variant: s.variant,
		State:   status.State.String(),
		Loads:   status.Loads,
	}
	if status.Info != nil {
		resp.Source = status.Info.Source
		if status.Info.Variant != "" {
			resp.Variant = status.Info.Variant
		}
	}
	if status.Err != nil {
		resp.Error = status.Err.Error()
	}
	return resp
}
