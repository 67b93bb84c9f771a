package job

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/model"
	"whisper-web/internal/app/staging"
)

// Executor runs one inference pass of a loaded model over a staged artifact.
type Executor struct {
	logger *zap.Logger
}

// NewExecutor creates an executor.
func NewExecutor(logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{logger: logger}
}

// Transcribe returns the model's single-pass transcript as trimmed plain text.
// Model errors and panics become TranscriptionError results; nothing escapes.
// Segments, timings and detected language are dropped.
func (e *Executor) Transcribe(ctx context.Context, handle model.Handle, artifact *staging.Artifact) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Model panicked during transcription",
				zap.String("path", artifact.Path),
				zap.Any("panic", r),
			)
			result = Failure(errors.TranscriptionFailed(errors.Newf("model panicked: %v", r)))
		}
	}()

	out, err := handle.Transcribe(ctx, artifact.Path)
	if err != nil {
		return Failure(errors.TranscriptionFailed(err))
	}
	if out == nil {
		return Failure(errors.TranscriptionFailed(errors.ErrNoOutput))
	}

	return Success(strings.TrimSpace(out.Text))
}
