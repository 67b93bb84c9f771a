package whisper_cpp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"whisper-web/internal/app/api/provider"
	"whisper-web/internal/app/testutil"
	"whisper-web/internal/config"
	"whisper-web/internal/downloader"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls [][]string
	run   func(ctx context.Context, name string, args ...string) (commandResult, error)
}

func (f *fakeRunner) Run(ctx context.Context, name string, args ...string) (commandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()
	if f.run == nil {
		return commandResult{}, nil
	}
	return f.run(ctx, name, args...)
}

func argAfter(args []string, flag string) string {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag {
			return args[i+1]
		}
	}
	return ""
}

// whisperWrites makes the fake whisper.cpp write transcript to <-of>.txt.
func whisperWrites(transcript string) func(context.Context, string, ...string) (commandResult, error) {
	return func(_ context.Context, name string, args ...string) (commandResult, error) {
		switch name {
		case "/usr/bin/ffmpeg":
			out := args[len(args)-1]
			return commandResult{}, os.WriteFile(out, []byte("RIFF"), 0o600)
		case "/usr/bin/whisper-cli":
			return commandResult{}, os.WriteFile(argAfter(args, "-of")+".txt", []byte(transcript), 0o600)
		}
		return commandResult{}, fmt.Errorf("unexpected command %s", name)
	}
}

func writeModel(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, append([]byte("lmgg"), make([]byte, 64)...), 0o644))
}

func newTestBackend(t *testing.T, modelDir string) (*Backend, *fakeRunner) {
	t.Helper()
	cfg := config.Default().Model
	cfg.WhisperCpp.ModelDir = modelDir
	cfg.WhisperCpp.AutoDownload = false
	cfg.Language = "en"

	b := NewBackend(cfg, zaptest.NewLogger(t))
	runner := &fakeRunner{}
	b.runner = runner
	b.lookPath = func(file string) (string, error) {
		return "/usr/bin/" + file, nil
	}
	return b, runner
}

func TestNewBackendPaths(t *testing.T) {
	cfg := config.Default().Model
	cfg.WhisperCpp.ModelDir = "/models"

	b := NewBackend(cfg, nil)
	assert.Equal(t, Name, b.Name())
	assert.Equal(t, "/models/ggml-small.bin", b.ModelPath())
	assert.Equal(t, config.DefaultModelBaseURL+"/ggml-small.bin", b.ModelURL())

	cfg.WhisperCpp.ModelPath = "/opt/custom.bin"
	assert.Equal(t, "/opt/custom.bin", NewBackend(cfg, nil).ModelPath())
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	b, _ := newTestBackend(t, dir)
	writeModel(t, b.ModelPath())

	handle, err := b.Load(context.Background())
	require.NoError(t, err)
	info := handle.Info()
	assert.Equal(t, Name, info.Backend)
	assert.Equal(t, "small", info.Variant)
	assert.Equal(t, b.ModelPath(), info.Source)
}

func TestLoadFailures(t *testing.T) {
	tests := []struct {
		name          string
		setup         func(t *testing.T, b *Backend)
		errorContains string
	}{
		{
			name: "missing whisper binary",
			setup: func(t *testing.T, b *Backend) {
				b.lookPath = func(file string) (string, error) {
					if file == config.DefaultWhisperBinary {
						return "", errors.New("executable file not found in $PATH")
					}
					return "/usr/bin/" + file, nil
				}
			},
			errorContains: `whisper.cpp binary "whisper-cli" not found`,
		},
		{
			name: "missing ffmpeg",
			setup: func(t *testing.T, b *Backend) {
				b.lookPath = func(file string) (string, error) {
					if file == config.DefaultFFmpegBinary {
						return "", errors.New("executable file not found in $PATH")
					}
					return "/usr/bin/" + file, nil
				}
			},
			errorContains: `ffmpeg binary "ffmpeg" not found`,
		},
		{
			name:          "missing model without download",
			setup:         func(t *testing.T, b *Backend) {},
			errorContains: "auto_download is disabled",
		},
		{
			name: "not a ggml file",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, os.WriteFile(b.ModelPath(), []byte("<html>rate limited</html>"), 0o644))
			},
			errorContains: "is not a ggml model",
		},
		{
			name: "truncated file",
			setup: func(t *testing.T, b *Backend) {
				require.NoError(t, os.WriteFile(b.ModelPath(), []byte("lm"), 0o644))
			},
			errorContains: "is truncated",
		},
		{
			name: "download fails",
			setup: func(t *testing.T, b *Backend) {
				b.autoDownload = true
				b.download = func(context.Context, string, string) (int64, error) {
					return 0, errors.New("unexpected status 404 Not Found")
				}
			},
			errorContains: "download model ggml-small.bin",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, _ := newTestBackend(t, t.TempDir())
			tt.setup(t, b)

			handle, err := b.Load(context.Background())
			require.Error(t, err)
			assert.Nil(t, handle)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestLoadDownloadsMissingModel(t *testing.T) {
	weights := append([]byte("lmgg"), make([]byte, 128)...)
	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		_, _ = w.Write(weights)
	}))
	defer srv.Close()

	b, _ := newTestBackend(t, filepath.Join(t.TempDir(), "models"))
	b.autoDownload = true
	b.modelURL = srv.URL + "/" + ModelFileName("small")
	b.download = downloader.New(srv.Client(), nil, nil).Download

	_, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/ggml-small.bin", requested)

	got, err := os.ReadFile(b.ModelPath())
	require.NoError(t, err)
	assert.Equal(t, weights, got)
}

func TestTranscribeConvertsNonWav(t *testing.T) {
	dir := t.TempDir()
	b, runner := newTestBackend(t, dir)
	writeModel(t, b.ModelPath())
	runner.run = whisperWrites("\n[first segment]  \n second segment\n\n")

	handle, err := b.Load(context.Background())
	require.NoError(t, err)

	input := filepath.Join(dir, "upload.mp3")
	require.NoError(t, os.WriteFile(input, []byte("ID3"), 0o600))

	out, err := handle.Transcribe(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "[first segment] second segment", out.Text)
	assert.Equal(t, "en", out.Language)

	require.Len(t, runner.calls, 2)
	ffmpeg, whisper := runner.calls[0], runner.calls[1]
	assert.Equal(t, "/usr/bin/ffmpeg", ffmpeg[0])
	assert.Equal(t, input, argAfter(ffmpeg, "-i"))
	converted := ffmpeg[len(ffmpeg)-1]

	assert.Equal(t, "/usr/bin/whisper-cli", whisper[0])
	assert.Equal(t, b.ModelPath(), argAfter(whisper, "-m"))
	assert.Equal(t, "en", argAfter(whisper, "-l"))
	assert.Equal(t, converted, argAfter(whisper, "-f"))

	_, err = os.Stat(filepath.Dir(converted))
	assert.True(t, os.IsNotExist(err), "work dir must be removed")
}

func TestTranscribeUsesWavDirectly(t *testing.T) {
	dir := t.TempDir()
	b, runner := newTestBackend(t, dir)
	b.threads = 4
	writeModel(t, b.ModelPath())
	runner.run = whisperWrites(testutil.SampleTranscript)

	handle, err := b.Load(context.Background())
	require.NoError(t, err)

	input := filepath.Join(dir, "jfk.wav")
	testutil.WriteWAV(t, input, 16000, 1, 0.2)

	out, err := handle.Transcribe(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, testutil.SampleTranscript, out.Text)

	require.Len(t, runner.calls, 1)
	assert.Equal(t, input, argAfter(runner.calls[0], "-f"))
	assert.Equal(t, "4", argAfter(runner.calls[0], "-t"))
}

func TestTranscribeFailures(t *testing.T) {
	tests := []struct {
		name          string
		run           func(context.Context, string, ...string) (commandResult, error)
		errorContains string
	}{
		{
			name: "ffmpeg rejects input",
			run: func(_ context.Context, name string, _ ...string) (commandResult, error) {
				return commandResult{
					Stderr:   "ffmpeg version 6.1\nupload.mp3: Invalid data found when processing input\n",
					ExitCode: 1,
				}, errors.New("exit status 1")
			},
			errorContains: "audio conversion failed: upload.mp3: Invalid data found when processing input (exit 1)",
		},
		{
			name: "whisper crashes",
			run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
				if strings.HasSuffix(name, "ffmpeg") {
					return commandResult{}, os.WriteFile(args[len(args)-1], nil, 0o600)
				}
				return commandResult{ExitCode: -1}, errors.New("signal: killed")
			},
			errorContains: "whisper.cpp failed: signal: killed",
		},
		{
			name: "no output file",
			run: func(ctx context.Context, name string, args ...string) (commandResult, error) {
				if strings.HasSuffix(name, "ffmpeg") {
					return commandResult{}, os.WriteFile(args[len(args)-1], nil, 0o600)
				}
				return commandResult{}, nil
			},
			errorContains: "failed to read output file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			b, runner := newTestBackend(t, dir)
			writeModel(t, b.ModelPath())
			runner.run = tt.run

			handle, err := b.Load(context.Background())
			require.NoError(t, err)

			input := filepath.Join(dir, "upload.mp3")
			require.NoError(t, os.WriteFile(input, []byte("ID3"), 0o600))

			out, err := handle.Transcribe(context.Background(), input)
			require.Error(t, err)
			assert.Nil(t, out)
			assert.Contains(t, err.Error(), tt.errorContains)
		})
	}
}

func TestTranscribeMissingInput(t *testing.T) {
	dir := t.TempDir()
	b, runner := newTestBackend(t, dir)
	writeModel(t, b.ModelPath())

	handle, err := b.Load(context.Background())
	require.NoError(t, err)

	_, err = handle.Transcribe(context.Background(), filepath.Join(dir, "gone.wav"))
	require.Error(t, err)
	assert.Empty(t, runner.calls)
}

func TestRegistered(t *testing.T) {
	assert.Contains(t, provider.ListRegisteredProviders(), Name)

	cfg := config.Default().Model
	backend, err := provider.CreateBackend(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, Name, backend.Name())
}

func TestFailureDetailTruncatesOnRuneBoundary(t *testing.T) {
	// 299 ASCII bytes then a 3-byte rune straddling the 300-byte limit
	line := strings.Repeat("a", 299) + "错误" + " trailing"
	detail := failureDetail(commandResult{Stderr: "loading\n" + line, ExitCode: 3}, errors.New("exit status 3"))

	msg := strings.TrimSuffix(detail, " (exit 3)")
	assert.True(t, utf8.ValidString(detail), "detail is not valid UTF-8: %q", detail)
	assert.Equal(t, strings.Repeat("a", 299), msg)

	short := failureDetail(commandResult{Stderr: "error: 音声ファイルが壊れています", ExitCode: 1}, errors.New("exit status 1"))
	assert.Equal(t, "error: 音声ファイルが壊れています (exit 1)", short)

	empty := failureDetail(commandResult{ExitCode: 1}, errors.New("exit status 1"))
	assert.Equal(t, "exit status 1", empty)
}
