package staging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/errors"
)

func mustUpload(t *testing.T, name string, data []byte) UploadedAudio {
	t.Helper()
	upload, err := NewUploadedAudio(name, data)
	require.NoError(t, err)
	return upload
}

func TestNewUploadedAudio(t *testing.T) {
	t.Run("accepts every allow-listed extension", func(t *testing.T) {
		for _, format := range audio.SupportedFormats {
			upload, err := NewUploadedAudio("clip"+format.Ext(), []byte("bytes"))
			require.NoError(t, err, format)
			assert.Equal(t, format, upload.Format())
			assert.Equal(t, int64(5), upload.Size())
		}
	})

	t.Run("rejects unknown extension", func(t *testing.T) {
		_, err := NewUploadedAudio("movie.mp4", []byte("bytes"))
		require.Error(t, err)
		assert.Equal(t, errors.KindInvalidInput, errors.KindOf(err))
		assert.True(t, errors.Is(err, errors.ErrUnsupportedFormat))
		assert.Contains(t, err.Error(), ".mp3")
	})

	t.Run("rejects empty data", func(t *testing.T) {
		_, err := NewUploadedAudio("empty.wav", nil)
		require.Error(t, err)
		assert.True(t, errors.Is(err, errors.ErrEmptyUpload))
	})

	t.Run("copies the caller buffer", func(t *testing.T) {
		data := []byte("original")
		upload := mustUpload(t, "a.wav", data)
		copy(data, "XXXXXXXX")

		staged, err := NewStager(t.TempDir(), zap.NewNop()).Stage(context.Background(), upload)
		require.NoError(t, err)
		content, err := os.ReadFile(staged.Path)
		require.NoError(t, err)
		assert.Equal(t, "original", string(content))
	})
}

func TestStager_Stage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "staging")
	stager := NewStager(dir, zap.NewNop())

	upload := mustUpload(t, "Interview.M4A", []byte("fake m4a payload"))
	artifact, err := stager.Stage(context.Background(), upload)
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(artifact.Path))
	assert.True(t, strings.HasPrefix(filepath.Base(artifact.Path), "upload-"))
	assert.Equal(t, ".m4a", filepath.Ext(artifact.Path))
	assert.Equal(t, int64(len("fake m4a payload")), artifact.Size)

	content, err := os.ReadFile(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, "fake m4a payload", string(content))

	info, err := os.Stat(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStager_UniquePaths(t *testing.T) {
	stager := NewStager(t.TempDir(), zap.NewNop())
	upload := mustUpload(t, "a.wav", []byte("x"))

	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		artifact, err := stager.Stage(context.Background(), upload)
		require.NoError(t, err)
		assert.False(t, seen[artifact.Path], "path reused: %s", artifact.Path)
		seen[artifact.Path] = true
	}
}

func TestStager_CollidingNameFails(t *testing.T) {
	stager := NewStager(t.TempDir(), zap.NewNop())
	stager.newID = func() string { return "fixed" }
	upload := mustUpload(t, "a.wav", []byte("first"))

	first, err := stager.Stage(context.Background(), upload)
	require.NoError(t, err)

	_, err = stager.Stage(context.Background(), mustUpload(t, "b.wav", []byte("second")))
	require.Error(t, err)
	assert.Equal(t, errors.KindStaging, errors.KindOf(err))

	content, err := os.ReadFile(first.Path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content), "existing artifact must not be overwritten")
}

type failingFile struct {
	writeErr error
	syncErr  error
	closeErr error
	written  int
}

func (f *failingFile) Write(p []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.written += len(p)
	return len(p), nil
}

func (f *failingFile) Sync() error  { return f.syncErr }
func (f *failingFile) Close() error { return f.closeErr }

func TestStager_WriteFailuresRemovePartialFile(t *testing.T) {
	tests := []struct {
		name string
		file *failingFile
	}{
		{"write error", &failingFile{writeErr: fmt.Errorf("no space left on device")}},
		{"sync error", &failingFile{syncErr: fmt.Errorf("input/output error")}},
		{"close error", &failingFile{closeErr: fmt.Errorf("bad file descriptor")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stager := NewStager(t.TempDir(), zap.NewNop())
			var removed []string
			stager.openFile = func(name string) (file, error) { return tt.file, nil }
			stager.remove = func(name string) error {
				removed = append(removed, name)
				return nil
			}

			artifact, err := stager.Stage(context.Background(), mustUpload(t, "a.ogg", []byte("data")))
			assert.Nil(t, artifact)
			require.Error(t, err)
			assert.Equal(t, errors.KindStaging, errors.KindOf(err))
			assert.Len(t, removed, 1)
		})
	}
}

func TestStager_CreateFailure(t *testing.T) {
	stager := NewStager(t.TempDir(), zap.NewNop())
	stager.openFile = func(name string) (file, error) { return nil, os.ErrPermission }

	_, err := stager.Stage(context.Background(), mustUpload(t, "a.aac", []byte("data")))
	require.Error(t, err)
	assert.Equal(t, errors.KindStaging, errors.KindOf(err))
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestStager_DirectoryNotWritable(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	stager := NewStager(filepath.Join(blocker, "staging"), zap.NewNop())
	_, err := stager.Stage(context.Background(), mustUpload(t, "a.flac", []byte("data")))
	require.Error(t, err)
	assert.Equal(t, errors.KindStaging, errors.KindOf(err))
}

func TestStager_RejectsZeroUpload(t *testing.T) {
	_, err := NewStager(t.TempDir(), zap.NewNop()).Stage(context.Background(), UploadedAudio{})
	require.Error(t, err)
	assert.Equal(t, errors.KindStaging, errors.KindOf(err))
}

func TestStager_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStager(t.TempDir(), zap.NewNop()).Stage(ctx, mustUpload(t, "a.mp3", []byte("data")))
	assert.Equal(t, errors.KindStaging, errors.KindOf(err))
}

func TestArtifact_ReleaseOnce(t *testing.T) {
	artifact, err := NewStager(t.TempDir(), zap.NewNop()).Stage(context.Background(), mustUpload(t, "a.wav", []byte("data")))
	require.NoError(t, err)

	require.NoError(t, artifact.Release())
	_, statErr := os.Stat(artifact.Path)
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, artifact.Release(), "second release repeats the first result")
}

func TestArtifact_ReleaseAlreadyRemoved(t *testing.T) {
	artifact, err := NewStager(t.TempDir(), zap.NewNop()).Stage(context.Background(), mustUpload(t, "a.wav", []byte("data")))
	require.NoError(t, err)
	require.NoError(t, os.Remove(artifact.Path))

	err = artifact.Release()
	assert.True(t, os.IsNotExist(err))
}
