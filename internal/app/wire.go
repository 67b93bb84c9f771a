//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"whisper-web/internal/config"
)

// InitializeApplication wires the web service from configuration
func InitializeApplication(cfg *config.Config) (*Application, func(), error) {
	wire.Build(ServerSet)
	return nil, nil, nil
}

// InitializePipeline wires the transcription pipeline for one-shot CLI use
func InitializePipeline(cfg *config.Config) (*Pipeline, func(), error) {
	wire.Build(PipelineSet, wire.Struct(new(Pipeline), "*"))
	return nil, nil, nil
}
