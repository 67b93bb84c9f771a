package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"go.uber.org/zap"
	"whisper-web/internal/api/server"
	v1routes "whisper-web/internal/api/v1/routes"
	"whisper-web/internal/api/v1/services"
	"whisper-web/internal/app/api/provider"
	"whisper-web/internal/app/common"
	"whisper-web/internal/app/job"
	"whisper-web/internal/app/metrics"
	"whisper-web/internal/app/model"
	"whisper-web/internal/app/staging"
	"whisper-web/internal/config"

	// Register model backends
	_ "whisper-web/internal/app/api/openai/whisper"
	_ "whisper-web/internal/app/api/whisper_cpp"
)

const shutdownTimeout = 30 * time.Second

// PipelineSet builds the transcription pipeline shared by the server and the CLI.
var PipelineSet = wire.NewSet(
	provideLogger,
	metrics.New,
	provideBackend,
	provideModelCache,
	provideStager,
	job.NewExecutor,
	provideOrchestrator,
)

// ServerSet adds the HTTP surface on top of PipelineSet.
var ServerSet = wire.NewSet(
	PipelineSet,
	provideUploadRegistry,
	provideServiceContainer,
	provideServer,
	wire.Struct(new(Application), "*"),
)

// Pipeline runs jobs without the HTTP layer
type Pipeline struct {
	Logger       *zap.Logger
	Models       *model.Cache
	Orchestrator *job.Orchestrator
}

// Application is the assembled web service
type Application struct {
	Config       *config.Config
	Logger       *zap.Logger
	Metrics      *metrics.Metrics
	Models       *model.Cache
	Orchestrator *job.Orchestrator
	Uploads      *services.UploadRegistry
	Server       *server.Server
}

// Run serves until ctx is done, then shuts the server down and discards
// uploads nobody confirmed.
func (a *Application) Run(ctx context.Context) error {
	if err := a.Server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	swept := make(chan struct{})
	go func() {
		defer close(swept)
		a.Uploads.Run(sweepCtx, a.Config.Uploads.SweepInterval)
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := a.Server.Shutdown(shutdownCtx)

	stopSweep()
	<-swept
	return err
}

func provideLogger(cfg *config.Config) (*zap.Logger, func(), error) {
	logger, err := common.NewLogger(cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

func provideBackend(cfg *config.Config, logger *zap.Logger) (model.Backend, error) {
	return provider.CreateBackend(cfg.Model, logger)
}

func provideModelCache(backend model.Backend, logger *zap.Logger, m *metrics.Metrics) *model.Cache {
	return model.NewCache(backend, logger, model.WithLoadRecorder(m))
}

func provideStager(cfg *config.Config, logger *zap.Logger) *staging.Stager {
	return staging.NewStager(cfg.Staging.Dir, logger)
}

func provideOrchestrator(
	stager *staging.Stager,
	cache *model.Cache,
	executor *job.Executor,
	m *metrics.Metrics,
	logger *zap.Logger,
) *job.Orchestrator {
	return job.NewOrchestrator(stager, cache, executor, m, logger)
}

func provideUploadRegistry(cfg *config.Config, orchestrator *job.Orchestrator, m *metrics.Metrics, logger *zap.Logger) *services.UploadRegistry {
	return services.NewUploadRegistry(orchestrator, cfg.Uploads.TTL, m, logger)
}

func provideServiceContainer(cfg *config.Config, uploads *services.UploadRegistry, cache *model.Cache) *v1routes.ServiceContainer {
	return &v1routes.ServiceContainer{
		UploadService:  uploads,
		ModelService:   services.NewModelService(cache, cfg.Model.Variant),
		MaxUploadBytes: cfg.Server.MaxUploadBytes(),
	}
}

func provideServer(cfg *config.Config, container *v1routes.ServiceContainer, m *metrics.Metrics, logger *zap.Logger) *server.Server {
	return server.NewServer(cfg.Server, container, m, logger)
}
