package config

import "time"

// Default configuration constants
const (
	// Server defaults
	DefaultHost         = "0.0.0.0"
	DefaultHTTPPort     = "8080"
	DefaultReadTimeout  = 60 * time.Second
	DefaultWriteTimeout = 15 * time.Minute
	DefaultIdleTimeout  = 120 * time.Second
	DefaultMaxUploadMB  = 200

	// Model defaults
	DefaultBackend         = "whisper_cpp"
	DefaultWhisperVariant  = "small"
	DefaultWhisperLanguage = "auto"
	DefaultWhisperBinary   = "whisper-cli"
	DefaultFFmpegBinary    = "ffmpeg"
	DefaultModelDir        = "./models"
	DefaultModelBaseURL    = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"
	DefaultOpenAIModel     = "whisper-1"

	// Upload registry defaults
	DefaultUploadTTL     = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// Default returns a configuration with every field set to its default.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         DefaultHost,
			Port:         DefaultHTTPPort,
			ReadTimeout:  DefaultReadTimeout,
			WriteTimeout: DefaultWriteTimeout,
			IdleTimeout:  DefaultIdleTimeout,
			Environment:  "development",
			MaxUploadMB:  DefaultMaxUploadMB,
		},
		Model: ModelConfig{
			Backend:  DefaultBackend,
			Variant:  DefaultWhisperVariant,
			Language: DefaultWhisperLanguage,
			WhisperCpp: WhisperCppConfig{
				BinaryPath:   DefaultWhisperBinary,
				FFmpegPath:   DefaultFFmpegBinary,
				ModelDir:     DefaultModelDir,
				DownloadURL:  DefaultModelBaseURL,
				AutoDownload: true,
			},
			OpenAI: OpenAIConfig{
				Model: DefaultOpenAIModel,
			},
		},
		Uploads: UploadsConfig{
			TTL:           DefaultUploadTTL,
			SweepInterval: DefaultSweepInterval,
		},
	}
}
