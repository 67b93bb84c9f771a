package whisper_cpp

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"whisper-web/internal/app/audio"
	"whisper-web/internal/app/model"
)

// transcriber is a loaded whisper.cpp model. Each call works in its own
// temp dir, so concurrent calls never share files.
type transcriber struct {
	whisperPath string
	ffmpegPath  string
	modelPath   string
	language    string
	prompt      string
	threads     int
	runner      commandRunner
	logger      *zap.Logger
	info        model.Info

	mkdirTemp func(dir, pattern string) (string, error)
	removeAll func(path string) error
	readFile  func(name string) ([]byte, error)
}

// Transcribe converts audioPath to 16 kHz mono WAV if needed and runs one
// whisper.cpp pass over it.
func (t *transcriber) Transcribe(ctx context.Context, audioPath string) (*model.Output, error) {
	startTime := time.Now()

	workDir, err := t.mkdirTemp("", "whisper-web-*")
	if err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	defer func() {
		if err := t.removeAll(workDir); err != nil {
			t.logger.Debug("Failed to remove work dir", zap.String("dir", workDir), zap.Error(err))
		}
	}()

	input, err := t.prepareInput(ctx, audioPath, workDir)
	if err != nil {
		return nil, err
	}

	outputBase := filepath.Join(workDir, "transcript")
	args := []string{
		"-m", t.modelPath,
		"-l", t.language,
		"-np",
		"-otxt",
		"-f", input,
		"-of", outputBase,
	}
	if t.threads > 0 {
		args = append(args, "-t", strconv.Itoa(t.threads))
	}
	if t.prompt != "" {
		args = append(args, "--prompt", t.prompt)
	}

	t.logger.Debug("Running whisper.cpp", zap.String("command", t.whisperPath+" "+strings.Join(args, " ")))
	result, err := t.runner.Run(ctx, t.whisperPath, args...)
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp failed: %s", failureDetail(result, err))
	}

	raw, err := t.readFile(outputBase + ".txt")
	if err != nil {
		return nil, fmt.Errorf("failed to read output file: %w", err)
	}

	return &model.Output{
		Text:     joinLines(string(raw)),
		Language: t.language,
		Duration: time.Since(startTime),
	}, nil
}

func (t *transcriber) prepareInput(ctx context.Context, audioPath, workDir string) (string, error) {
	ok, err := audio.Is16kHzMonoWav(audioPath)
	if err != nil {
		return "", fmt.Errorf("error checking input file: %w", err)
	}
	if ok {
		return audioPath, nil
	}

	converted := filepath.Join(workDir, "input.wav")
	result, err := t.runner.Run(ctx, t.ffmpegPath, audio.ConvertArgs(audioPath, converted)...)
	if err != nil {
		return "", fmt.Errorf("audio conversion failed: %s", failureDetail(result, err))
	}
	return converted, nil
}

// Info implements model.Handle.
func (t *transcriber) Info() model.Info {
	return t.info
}

// joinLines flattens whisper.cpp's one-segment-per-line txt output.
func joinLines(raw string) string {
	var parts []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, " ")
}

// failureDetail returns the last stderr line of a failed command, which is
// where ffmpeg and whisper.cpp print the actual reason.
func failureDetail(result commandResult, err error) string {
	lines := strings.Split(strings.TrimSpace(result.Stderr), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return err.Error()
	}
	const maxDetail = 300
	if len(last) > maxDetail {
		cut := maxDetail
		for cut > 0 && !utf8.RuneStart(last[cut]) {
			cut--
		}
		last = last[:cut]
	}
	return fmt.Sprintf("%s (exit %d)", last, result.ExitCode)
}
