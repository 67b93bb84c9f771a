// Package whisper_cpp runs Whisper locally through the whisper.cpp CLI.
package whisper_cpp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"whisper-web/internal/app/model"
	"whisper-web/internal/config"
	"whisper-web/internal/downloader"
)

// Name is the registry key for this backend.
const Name = "whisper_cpp"

// ggmlMagic is the little-endian 0x67676d6c header of a ggml model file.
var ggmlMagic = []byte("lmgg")

// ModelFileName returns the ggml weights file name for a Whisper variant.
func ModelFileName(variant string) string {
	return "ggml-" + variant + ".bin"
}

// Backend loads a ggml Whisper model for the whisper.cpp CLI.
type Backend struct {
	binaryPath   string
	ffmpegPath   string
	modelPath    string
	modelURL     string
	variant      string
	language     string
	prompt       string
	threads      int
	autoDownload bool
	logger       *zap.Logger

	lookPath func(file string) (string, error)
	download func(ctx context.Context, url, dest string) (int64, error)
	runner   commandRunner
}

// NewBackend creates a backend from the model configuration. Nothing is
// checked until Load.
func NewBackend(cfg config.ModelConfig, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	wc := cfg.WhisperCpp

	modelPath := wc.ModelPath
	if modelPath == "" {
		modelPath = filepath.Join(wc.ModelDir, ModelFileName(cfg.Variant))
	}

	return &Backend{
		binaryPath:   wc.BinaryPath,
		ffmpegPath:   wc.FFmpegPath,
		modelPath:    modelPath,
		modelURL:     strings.TrimSuffix(wc.DownloadURL, "/") + "/" + ModelFileName(cfg.Variant),
		variant:      cfg.Variant,
		language:     cfg.Language,
		prompt:       wc.Prompt,
		threads:      wc.Threads,
		autoDownload: wc.AutoDownload,
		logger:       logger,
		lookPath:     exec.LookPath,
		download:     downloader.New(nil, logger, nil).Download,
		runner:       &execRunner{},
	}
}

// Name implements model.Backend.
func (b *Backend) Name() string {
	return Name
}

// ModelPath returns where the weights file is expected.
func (b *Backend) ModelPath() string {
	return b.modelPath
}

// ModelURL returns where missing weights are downloaded from.
func (b *Backend) ModelURL() string {
	return b.modelURL
}

// Load resolves the whisper.cpp and ffmpeg executables and makes sure a
// valid weights file is on disk, downloading it if allowed.
func (b *Backend) Load(ctx context.Context) (model.Handle, error) {
	whisperPath, err := b.lookPath(b.binaryPath)
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp binary %q not found: %w", b.binaryPath, err)
	}
	ffmpegPath, err := b.lookPath(b.ffmpegPath)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg binary %q not found: %w", b.ffmpegPath, err)
	}

	if err := b.ensureModel(ctx); err != nil {
		return nil, err
	}
	if err := verifyModelFile(b.modelPath); err != nil {
		return nil, err
	}

	b.logger.Info("whisper.cpp model ready",
		zap.String("binary", whisperPath),
		zap.String("ffmpeg", ffmpegPath),
		zap.String("model", b.modelPath),
	)

	return &transcriber{
		whisperPath: whisperPath,
		ffmpegPath:  ffmpegPath,
		modelPath:   b.modelPath,
		language:    b.language,
		prompt:      b.prompt,
		threads:     b.threads,
		runner:      b.runner,
		logger:      b.logger,
		mkdirTemp:   os.MkdirTemp,
		removeAll:   os.RemoveAll,
		readFile:    os.ReadFile,
		info: model.Info{
			Backend: Name,
			Variant: b.variant,
			Source:  b.modelPath,
		},
	}, nil
}

func (b *Backend) ensureModel(ctx context.Context) error {
	_, err := os.Stat(b.modelPath)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat model file %s: %w", b.modelPath, err)
	}
	if !b.autoDownload {
		return fmt.Errorf("model file %s not found and auto_download is disabled", b.modelPath)
	}

	b.logger.Info("Model file missing, downloading",
		zap.String("url", b.modelURL),
		zap.String("dest", b.modelPath),
	)
	if _, err := b.download(ctx, b.modelURL, b.modelPath); err != nil {
		return fmt.Errorf("download model %s: %w", ModelFileName(b.variant), err)
	}
	return nil
}

// verifyModelFile rejects files that do not start with the ggml header.
func verifyModelFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	header := make([]byte, len(ggmlMagic))
	if _, err := io.ReadFull(f, header); err != nil {
		return fmt.Errorf("model file %s is truncated: %w", path, err)
	}
	if !bytes.Equal(header, ggmlMagic) {
		return fmt.Errorf("model file %s is not a ggml model (header %x)", path, header)
	}
	return nil
}
