// Package staging turns uploaded bytes into job-scoped files on local disk.
package staging

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/errors"
)

// Artifact is a staged upload. It is owned by exactly one job and must be
// released when the job ends.
type Artifact struct {
	Path   string
	Format audio.Format
	Size   int64

	once       sync.Once
	releaseErr error
	remove     func(string) error
}

// Release deletes the staged file. Only the first call touches the
// filesystem; later calls return the first result.
func (a *Artifact) Release() error {
	a.once.Do(func() {
		a.releaseErr = a.remove(a.Path)
	})
	return a.releaseErr
}

// file is the subset of *os.File the stager writes through.
type file interface {
	io.Writer
	Sync() error
	Close() error
}

// Stager writes uploads into a staging directory.
type Stager struct {
	dir    string
	logger *zap.Logger

	mkdirAll func(path string, perm os.FileMode) error
	openFile func(name string) (file, error)
	remove   func(name string) error
	newID    func() string
}

// NewStager creates a stager rooted at dir. An empty dir means the OS temp dir.
func NewStager(dir string, logger *zap.Logger) *Stager {
	if dir == "" {
		dir = os.TempDir()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stager{
		dir:      dir,
		logger:   logger,
		mkdirAll: os.MkdirAll,
		openFile: func(name string) (file, error) {
			return os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		},
		remove: os.Remove,
		newID:  uuid.NewString,
	}
}

// Dir returns the staging directory.
func (s *Stager) Dir() string {
	return s.dir
}

// Stage writes the full upload to a new file named upload-<uuid>.<ext> and
// returns it. The file keeps the upload's extension so the model backend can
// sniff the container. On any failure the partial file is removed and a
// StagingError is returned; the caller then owns nothing.
func (s *Stager) Stage(ctx context.Context, upload UploadedAudio) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.StagingError(err)
	}
	if !upload.Format().IsSupported() {
		return nil, errors.StagingError(errors.ErrUnsupportedFormat)
	}

	if err := s.mkdirAll(s.dir, 0o700); err != nil {
		return nil, errors.StagingError(errors.Wrapf(err, "create staging dir %s", s.dir))
	}

	path := filepath.Join(s.dir, "upload-"+s.newID()+upload.Format().Ext())
	f, err := s.openFile(path)
	if err != nil {
		return nil, errors.StagingError(errors.Wrapf(err, "create %s", path))
	}

	written, err := io.Copy(f, upload.Reader())
	if err == nil {
		err = f.Sync()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		if removeErr := s.remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			s.logger.Warn("Failed to remove partial upload", zap.String("path", path), zap.Error(removeErr))
		}
		return nil, errors.StagingError(errors.Wrapf(err, "write %s", path))
	}

	s.logger.Debug("Staged upload",
		zap.String("path", path),
		zap.String("filename", upload.Filename()),
		zap.Int64("bytes", written),
	)

	return &Artifact{
		Path:   path,
		Format: upload.Format(),
		Size:   written,
		remove: s.remove,
	}, nil
}
