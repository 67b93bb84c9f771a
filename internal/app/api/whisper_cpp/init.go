package whisper_cpp

import (
	"go.uber.org/zap"
	"whisper-web/internal/app/api/provider"
	"whisper-web/internal/app/model"
	"whisper-web/internal/config"
)

func init() {
	// Register whisper_cpp backend with the factory
	provider.RegisterProvider(Name, func(cfg config.ModelConfig, logger *zap.Logger) (model.Backend, error) {
		return NewBackend(cfg, logger), nil
	})
}
