package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"whisper-web/internal/api/v1/dto"
)

// MockServices contains all mock services for handler tests
type MockServices struct {
	UploadService *MockUploadService
	ModelService  *MockModelService
}

// NewMockServices creates a new instance of mock services
func NewMockServices(t *testing.T) *MockServices {
	return &MockServices{
		UploadService: NewMockUploadService(t),
		ModelService:  NewMockModelService(t),
	}
}

// MockUploadService is a mock implementation of UploadService
type MockUploadService struct {
	mock.Mock
}

func NewMockUploadService(t *testing.T) *MockUploadService {
	m := &MockUploadService{}
	m.Test(t)
	return m
}

func (m *MockUploadService) CreateUpload(ctx context.Context, filename string, data []byte) (*dto.UploadResponse, error) {
	args := m.Called(ctx, filename, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UploadResponse), args.Error(1)
}

func (m *MockUploadService) Transcribe(ctx context.Context, id string) (*dto.TranscriptionResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TranscriptionResponse), args.Error(1)
}

func (m *MockUploadService) DiscardUpload(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockModelService is a mock implementation of ModelService
type MockModelService struct {
	mock.Mock
}

func NewMockModelService(t *testing.T) *MockModelService {
	m := &MockModelService{}
	m.Test(t)
	return m
}

func (m *MockModelService) GetModelStatus(ctx context.Context) *dto.ModelStatusResponse {
	args := m.Called(ctx)
	return args.Get(0).(*dto.ModelStatusResponse)
}
