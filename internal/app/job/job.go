// Package job runs transcription jobs: stage the upload, wait for the user to
// confirm, transcribe with the cached model, and always delete the staged file.
package job

import (
	"context"
	"sync"
	"time"

	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/metrics"
	"whisper-web/internal/app/staging"
)

// Job is one staged upload awaiting or undergoing transcription.
type Job struct {
	ID       string
	Filename string
	Format   audio.Format
	Size     int64
	StagedAt time.Time

	orch     *Orchestrator
	artifact *staging.Artifact

	mu      sync.Mutex
	state   State
	outcome State
}

// State returns the job's current state.
func (j *Job) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Outcome returns Succeeded or Failed once the job has finished, Idle before.
func (j *Job) Outcome() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.outcome
}

// ArtifactPath returns the staged file's path.
func (j *Job) ArtifactPath() string {
	return j.artifact.Path
}

// Start is the user's confirmation. It transcribes the staged upload and
// returns after cleanup. Only the first call runs; later calls fail with a
// conflict and do not touch the model.
func (j *Job) Start(ctx context.Context) Result {
	if err := j.transition(StateStaged, StateTranscribing); err != nil {
		return Failure(err)
	}
	return j.orch.execute(ctx, j)
}

// Discard releases a staged upload that will never be transcribed.
func (j *Job) Discard() error {
	if err := j.transition(StateStaged, StateCleaned); err != nil {
		return err
	}
	j.orch.release(j)
	j.orch.metrics.ObserveJob(metrics.OutcomeDiscarded, 0)
	return nil
}

func (j *Job) transition(from, to State) *errors.JobError {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state != from {
		return errors.Conflict(errors.ErrJobAlreadyStarted, "job %s is %s", j.ID, j.state)
	}
	j.state = to
	return nil
}

func (j *Job) finish(outcome State) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.outcome = outcome
	j.state = outcome
}

func (j *Job) markCleaned() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state = StateCleaned
}
