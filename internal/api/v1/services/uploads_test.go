package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/job"
	"whisper-web/internal/app/metrics"
	"whisper-web/internal/app/model"
	"whisper-web/internal/app/staging"
	"whisper-web/internal/app/testutil"
)

type fixture struct {
	registry *UploadRegistry
	backend  *testutil.StubBackend
	cache    *model.Cache
	dir      string
}

func newFixture(t *testing.T, handle model.Handle) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	backend := testutil.NewStubBackend(handle)
	cache := model.NewCache(backend, logger)
	m := metrics.New()
	orch := job.NewOrchestrator(staging.NewStager(dir, logger), cache, job.NewExecutor(logger), m, logger)
	return &fixture{
		registry: NewUploadRegistry(orch, time.Minute, m, logger),
		backend:  backend,
		cache:    cache,
		dir:      dir,
	}
}

func (f *fixture) stagedCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(f.dir)
	require.NoError(t, err)
	return len(entries)
}

func TestUploadRegistry_CreateAndTranscribe(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel().WithDefaultResponse(testutil.SampleTranscript))
	ctx := context.Background()

	upload, err := f.registry.CreateUpload(ctx, "jfk.wav", []byte("RIFF fake"))
	require.NoError(t, err)
	assert.Equal(t, "staged", upload.State)
	assert.Equal(t, "wav", upload.Format)
	assert.Equal(t, int64(9), upload.Size)
	assert.True(t, upload.ExpiresAt.After(upload.StagedAt))
	assert.Equal(t, 1, f.registry.Pending())
	assert.Equal(t, 1, f.stagedCount(t))
	assert.Zero(t, f.backend.LoadCount(), "model must not load before confirmation")

	resp, err := f.registry.Transcribe(ctx, upload.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleTranscript, resp.Text)
	assert.Equal(t, "succeeded", resp.State)
	assert.Equal(t, "transcription.txt", resp.Download.Filename)
	assert.Equal(t, "text/plain", resp.Download.ContentType)
	assert.Equal(t, []byte(testutil.SampleTranscript), resp.Download.Data)

	assert.Zero(t, f.registry.Pending())
	assert.Zero(t, f.stagedCount(t))
}

func TestUploadRegistry_RejectsBeforeStaging(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel())

	_, err := f.registry.CreateUpload(context.Background(), "notes.txt", []byte("hello"))
	require.Error(t, err)
	assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))

	_, err = f.registry.CreateUpload(context.Background(), "empty.mp3", nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyUpload))

	assert.Zero(t, f.stagedCount(t))
	assert.Zero(t, f.registry.Pending())
}

func TestUploadRegistry_UploadIsClaimedOnce(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel())
	ctx := context.Background()

	upload, err := f.registry.CreateUpload(ctx, "a.mp3", []byte("x"))
	require.NoError(t, err)

	_, err = f.registry.Transcribe(ctx, upload.ID)
	require.NoError(t, err)

	_, err = f.registry.Transcribe(ctx, upload.ID)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
	assert.Error(t, f.registry.DiscardUpload(ctx, upload.ID))
	assert.Equal(t, int64(1), f.backend.LoadCount())
}

func TestUploadRegistry_TranscribeFailureReturnsJobError(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel().WithDefaultError(fmt.Errorf("invalid data found when processing input")))
	ctx := context.Background()

	upload, err := f.registry.CreateUpload(ctx, "a.ogg", []byte("x"))
	require.NoError(t, err)

	_, err = f.registry.Transcribe(ctx, upload.ID)
	require.Error(t, err)
	jobErr, ok := err.(*errors.JobError)
	require.True(t, ok)
	assert.Equal(t, errors.KindTranscription, jobErr.Kind)
	assert.Zero(t, f.stagedCount(t))
}

func TestUploadRegistry_Discard(t *testing.T) {
	mock := testutil.NewMockModel()
	f := newFixture(t, mock)
	ctx := context.Background()

	upload, err := f.registry.CreateUpload(ctx, "a.flac", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, f.registry.DiscardUpload(ctx, upload.ID))
	assert.Zero(t, f.stagedCount(t))
	assert.Zero(t, mock.CallCount())
	assert.Zero(t, f.backend.LoadCount())

	err = f.registry.DiscardUpload(ctx, "missing")
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))
}

func TestUploadRegistry_SweepExpired(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel())
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	f.registry.now = func() time.Time { return now }

	old, err := f.registry.CreateUpload(ctx, "old.mp3", []byte("x"))
	require.NoError(t, err)

	now = now.Add(45 * time.Second)
	fresh, err := f.registry.CreateUpload(ctx, "fresh.mp3", []byte("y"))
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, f.registry.Sweep())
	assert.Equal(t, 1, f.registry.Pending())
	assert.Equal(t, 1, f.stagedCount(t))

	_, err = f.registry.Transcribe(ctx, old.ID)
	assert.Equal(t, errors.KindNotFound, errors.KindOf(err))

	_, err = f.registry.Transcribe(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestUploadRegistry_RunClosesOnCancel(t *testing.T) {
	f := newFixture(t, testutil.NewMockModel())

	_, err := f.registry.CreateUpload(context.Background(), "a.aac", []byte("x"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.registry.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Zero(t, f.registry.Pending())
	assert.Zero(t, f.stagedCount(t))
}

type fakeStatus struct {
	status model.Status
}

func (f fakeStatus) Status() model.Status { return f.status }

func TestModelService_GetModelStatus(t *testing.T) {
	svc := NewModelService(fakeStatus{status: model.Status{
		Backend: "whisper_cpp",
		State:   model.StateFailed,
		Loads:   1,
		Err:     errors.ModelUnavailable(fmt.Errorf("ggml-small.bin not found")),
	}}, "small")

	resp := svc.GetModelStatus(context.Background())
	assert.Equal(t, "whisper_cpp", resp.Backend)
	assert.Equal(t, "small", resp.Variant)
	assert.Equal(t, "failed", resp.State)
	assert.Equal(t, int64(1), resp.Loads)
	assert.Contains(t, resp.Error, "ggml-small.bin not found")

	ready := NewModelService(fakeStatus{status: model.Status{
		Backend: "openai",
		State:   model.StateReady,
		Loads:   1,
		Info:    &model.Info{Backend: "openai", Variant: "whisper-1", Source: "https://api.openai.com/v1"},
	}}, "small")
	resp = ready.GetModelStatus(context.Background())
	assert.Equal(t, "whisper-1", resp.Variant)
	assert.Equal(t, "https://api.openai.com/v1", resp.Source)
	assert.Empty(t, resp.Error)
}
