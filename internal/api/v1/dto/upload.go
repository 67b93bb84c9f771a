package dto

import (
	"mime/multipart"
	"time"
)

// UploadRequest is the multipart form of POST /api/v1/uploads
type UploadRequest struct {
	File *multipart.FileHeader `form:"file" binding:"required"`
}

// UploadResponse describes a staged upload awaiting confirmation
type UploadResponse struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Format    string    `json:"format"`
	Size      int64     `json:"size"`
	State     string    `json:"state"`
	StagedAt  time.Time `json:"staged_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TranscribeQuery holds the query parameters of POST /api/v1/uploads/:id/transcribe
type TranscribeQuery struct {
	Download bool `form:"download"`
}

// TranscriptionResponse is a successful transcription
type TranscriptionResponse struct {
	ID       string `json:"id"`
	State    string `json:"state"`
	Text     string `json:"text"`
	Filename string `json:"filename"`

	// Download is the same transcript packaged as a file.
	Download Download `json:"-"`
}

// Download is a file returned as an attachment
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}
