package job

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/metrics"
	"whisper-web/internal/app/model"
	"whisper-web/internal/app/staging"
)

// Stager materializes uploads as files.
type Stager interface {
	Stage(ctx context.Context, upload staging.UploadedAudio) (*staging.Artifact, error)
}

// ModelSource hands out the shared model.
type ModelSource interface {
	Get(ctx context.Context) (model.Handle, error)
}

// Orchestrator sequences staging, model access, inference and cleanup.
type Orchestrator struct {
	stager   Stager
	models   ModelSource
	executor *Executor
	metrics  *metrics.Metrics
	logger   *zap.Logger

	newID func() string
	now   func() time.Time
}

// NewOrchestrator wires the pipeline. m may be nil.
func NewOrchestrator(stager Stager, models ModelSource, executor *Executor, m *metrics.Metrics, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if executor == nil {
		executor = NewExecutor(logger)
	}
	return &Orchestrator{
		stager:   stager,
		models:   models,
		executor: executor,
		metrics:  m,
		logger:   logger,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// RunJob stages upload and transcribes it immediately. It always returns a
// terminal result, and the staged file is gone by the time it does.
func (o *Orchestrator) RunJob(ctx context.Context, upload staging.UploadedAudio) Result {
	j, err := o.Prepare(ctx, upload)
	if err != nil {
		return Failure(errors.AsJobError(err, errors.KindStaging))
	}
	return j.Start(ctx)
}

// Prepare stages upload and returns a job waiting for confirmation. On a
// staging failure there is nothing to clean up and the error is a
// *errors.JobError of kind KindStaging.
func (o *Orchestrator) Prepare(ctx context.Context, upload staging.UploadedAudio) (*Job, error) {
	id := o.newID()
	artifact, err := o.stager.Stage(ctx, upload)
	if err != nil {
		jobErr := errors.AsJobError(err, errors.KindStaging)
		o.logger.Warn("Staging failed",
			zap.String("job_id", id),
			zap.String("filename", upload.Filename()),
			zap.Error(err),
		)
		o.metrics.ObserveJob(metrics.OutcomeStagingFailed, 0)
		return nil, jobErr
	}
	o.metrics.AddStagedBytes(artifact.Size)

	o.logger.Info("Upload staged",
		zap.String("job_id", id),
		zap.String("filename", upload.Filename()),
		zap.String("path", artifact.Path),
		zap.Int64("bytes", artifact.Size),
	)

	return &Job{
		ID:       id,
		Filename: upload.Filename(),
		Format:   upload.Format(),
		Size:     artifact.Size,
		StagedAt: o.now(),
		orch:     o,
		artifact: artifact,
		state:    StateStaged,
	}, nil
}

// execute runs a confirmed job. Cleanup is deferred so it happens on every
// path out, including a panic, and it never changes the result.
//
// Inference is detached from ctx cancellation: a client that disconnects
// mid-job does not abort the model, it only stops waiting for the answer.
func (o *Orchestrator) execute(ctx context.Context, j *Job) (result Result) {
	start := o.now()
	log := o.logger.With(zap.String("job_id", j.ID))
	log.Info("Transcription started", zap.String("path", j.artifact.Path))

	defer func() {
		if r := recover(); r != nil {
			log.Error("Job panicked", zap.Any("panic", r))
			result = Failure(errors.TranscriptionFailed(errors.Newf("job panicked: %v", r)))
		}

		outcome := StateSucceeded
		if !result.OK() {
			outcome = StateFailed
		}
		j.finish(outcome)
		o.release(j)

		elapsed := o.now().Sub(start)
		o.metrics.ObserveJob(outcomeLabel(result), elapsed)
		if result.OK() {
			log.Info("Transcription succeeded",
				zap.Int("chars", len(result.Text)),
				zap.Duration("elapsed", elapsed),
			)
		} else {
			log.Warn("Transcription failed",
				zap.String("kind", string(result.Kind())),
				zap.Error(result.Err),
				zap.Duration("elapsed", elapsed),
			)
		}
	}()

	ctx = context.WithoutCancel(ctx)

	handle, err := o.models.Get(ctx)
	if err != nil {
		return Failure(errors.AsJobError(err, errors.KindModelUnavailable))
	}

	return o.executor.Transcribe(ctx, handle, j.artifact)
}

// release deletes the job's artifact. Failures are logged and swallowed so a
// cleanup problem never masks the transcription outcome.
func (o *Orchestrator) release(j *Job) {
	if err := j.artifact.Release(); err != nil {
		o.logger.Debug("Staged artifact cleanup failed",
			zap.String("job_id", j.ID),
			zap.String("path", j.artifact.Path),
			zap.Error(err),
		)
	}
	j.markCleaned()
}

func outcomeLabel(r Result) string {
	switch r.Kind() {
	case "":
		return metrics.OutcomeSucceeded
	case errors.KindStaging:
		return metrics.OutcomeStagingFailed
	case errors.KindModelUnavailable:
		return metrics.OutcomeModelUnavailable
	default:
		return metrics.OutcomeTranscription
	}
}
