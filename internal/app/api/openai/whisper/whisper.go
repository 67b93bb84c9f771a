// Package whisper transcribes through the hosted OpenAI Whisper API.
package whisper

import (
	"context"
	"fmt"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	openaiclient "whisper-web/internal/app/api/openai"
	"whisper-web/internal/app/model"
	"whisper-web/internal/config"
)

// Name is the registry key for this backend.
const Name = "openai"

// Backend is the OpenAI Whisper API. Loading verifies the key and model.
type Backend struct {
	client    *openai.Client
	modelName string
	language  string
	variant   string
	logger    *zap.Logger
}

// NewBackend creates a backend from the model configuration.
func NewBackend(cfg config.ModelConfig, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	modelName := cfg.OpenAI.Model
	if modelName == "" {
		modelName = openai.Whisper1
	}
	return &Backend{
		client:    openaiclient.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL),
		modelName: modelName,
		language:  cfg.Language,
		variant:   cfg.Variant,
		logger:    logger,
	}
}

// Name implements model.Backend.
func (b *Backend) Name() string {
	return Name
}

// Load checks that the API key can see the configured model.
func (b *Backend) Load(ctx context.Context) (model.Handle, error) {
	m, err := b.client.GetModel(ctx, b.modelName)
	if err != nil {
		return nil, fmt.Errorf("openai model %s is not accessible: %w", b.modelName, err)
	}

	b.logger.Info("OpenAI model ready", zap.String("model", m.ID), zap.String("owned_by", m.OwnedBy))

	return &RemoteTranscriber{
		client:    b.client,
		modelName: b.modelName,
		language:  b.language,
		info: model.Info{
			Backend: Name,
			Variant: b.variant,
			Source:  m.ID,
		},
	}, nil
}

// RemoteTranscriber implements remote transcription using the OpenAI API.
type RemoteTranscriber struct {
	client    *openai.Client
	modelName string
	language  string
	info      model.Info
}

// Transcribe uploads audioPath and returns the transcript. The API accepts
// every allowed upload format, so no conversion is done.
func (rt *RemoteTranscriber) Transcribe(ctx context.Context, audioPath string) (*model.Output, error) {
	req := openai.AudioRequest{
		Model:    rt.modelName,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if rt.language != "" && rt.language != "auto" {
		req.Language = rt.language
	}

	resp, err := rt.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("createTranscription failed: %w", err)
	}

	out := &model.Output{
		Text:     resp.Text,
		Language: resp.Language,
		Duration: time.Duration(resp.Duration * float64(time.Second)),
	}
	for _, s := range resp.Segments {
		out.Segments = append(out.Segments, model.Segment{
			Start: time.Duration(s.Start * float64(time.Second)),
			End:   time.Duration(s.End * float64(time.Second)),
			Text:  s.Text,
		})
	}
	return out, nil
}

// Info implements model.Handle.
func (rt *RemoteTranscriber) Info() model.Info {
	return rt.info
}
