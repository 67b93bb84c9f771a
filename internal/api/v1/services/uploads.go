package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"whisper-web/internal/api/v1/dto"
	"whisper-web/internal/app/errors"
	"whisper-web/internal/app/job"
	"whisper-web/internal/app/metrics"
	"whisper-web/internal/app/staging"
)

// Preparer stages an upload into a job awaiting confirmation
type Preparer interface {
	Prepare(ctx context.Context, upload staging.UploadedAudio) (*job.Job, error)
}

type pendingUpload struct {
	job       *job.Job
	expiresAt time.Time
}

// UploadRegistry holds staged jobs between upload and confirmation. Each
// upload is handed out exactly once, to Transcribe or to DiscardUpload.
// Uploads nobody claims within the TTL are discarded by Sweep.
type UploadRegistry struct {
	preparer Preparer
	ttl      time.Duration
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	pending map[string]*pendingUpload
}

// NewUploadRegistry creates a registry. m may be nil.
func NewUploadRegistry(preparer Preparer, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) *UploadRegistry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UploadRegistry{
		preparer: preparer,
		ttl:      ttl,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		pending:  make(map[string]*pendingUpload),
	}
}

// CreateUpload validates and stages an upload
func (r *UploadRegistry) CreateUpload(ctx context.Context, filename string, data []byte) (*dto.UploadResponse, error) {
	upload, err := staging.NewUploadedAudio(filename, data)
	if err != nil {
		return nil, err
	}

	j, err := r.preparer.Prepare(ctx, upload)
	if err != nil {
		return nil, err
	}

	expiresAt := r.now().Add(r.ttl)
	r.mu.Lock()
	r.pending[j.ID] = &pendingUpload{job: j, expiresAt: expiresAt}
	count := len(r.pending)
	r.mu.Unlock()
	r.metrics.SetPendingUploads(count)

	return &dto.UploadResponse{
		ID:        j.ID,
		Filename:  j.Filename,
		Format:    j.Format.String(),
		Size:      j.Size,
		State:     j.State().String(),
		StagedAt:  j.StagedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Transcribe claims the upload and runs it. Failures come back as
// *errors.JobError.
func (r *UploadRegistry) Transcribe(ctx context.Context, id string) (*dto.TranscriptionResponse, error) {
	p := r.claim(id)
	if p == nil {
		return nil, errors.UploadNotFound(id)
	}

	result := p.job.Start(ctx)
	if !result.OK() {
		return nil, result.Err
	}

	export, _ := result.Export()
	return &dto.TranscriptionResponse{
		ID:       p.job.ID,
		State:    p.job.Outcome().String(),
		Text:     result.Text,
		Filename: export.Filename,
		Download: dto.Download{
			Filename:    export.Filename,
			ContentType: export.ContentType,
			Data:        export.Data,
		},
	}, nil
}

// DiscardUpload claims the upload and deletes its staged file
func (r *UploadRegistry) DiscardUpload(ctx context.Context, id string) error {
	p := r.claim(id)
	if p == nil {
		return errors.UploadNotFound(id)
	}
	return p.job.Discard()
}

func (r *UploadRegistry) claim(id string) *pendingUpload {
	r.mu.Lock()
	p, ok := r.pending[id]
	if ok {
		delete(r.pending, id)
	}
	count := len(r.pending)
	r.mu.Unlock()

	if !ok {
		return nil
	}
	r.metrics.SetPendingUploads(count)
	return p
}

// Pending returns the number of uploads awaiting confirmation
func (r *UploadRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}

// Sweep discards uploads whose TTL has passed and returns how many it removed
func (r *UploadRegistry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*pendingUpload
	for id, p := range r.pending {
		if now.After(p.expiresAt) {
			expired = append(expired, p)
			delete(r.pending, id)
		}
	}
	count := len(r.pending)
	r.mu.Unlock()

	for _, p := range expired {
		if err := p.job.Discard(); err != nil {
			r.logger.Debug("Expired upload already claimed", zap.String("job_id", p.job.ID), zap.Error(err))
			continue
		}
		r.logger.Info("Discarded expired upload", zap.String("job_id", p.job.ID), zap.String("filename", p.job.Filename))
	}
	if len(expired) > 0 {
		r.metrics.SetPendingUploads(count)
	}
	return len(expired)
}

// Run sweeps every interval until ctx is done, then discards everything
// still pending.
func (r *UploadRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close discards every pending upload
func (r *UploadRegistry) Close() {
	r.mu.Lock()
	pending := r.pending
	r.pending = make(map[string]*pendingUpload)
	r.mu.Unlock()

	for _, p := range pending {
		_ = p.job.Discard()
	}
	r.metrics.SetPendingUploads(0)
}
