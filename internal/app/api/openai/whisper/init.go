package whisper

import (
	"fmt"

	"go.uber.org/zap"
	"whisper-web/internal/app/api/provider"
	"whisper-web/internal/app/model"
	"whisper-web/internal/config"
)

func init() {
	// Register openai backend with the factory
	provider.RegisterProvider(Name, createOpenAIBackend)
}

// createOpenAIBackend creates an OpenAI Whisper backend from configuration
func createOpenAIBackend(cfg config.ModelConfig, logger *zap.Logger) (model.Backend, error) {
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai backend requires an api_key")
	}
	return NewBackend(cfg, logger), nil
}
