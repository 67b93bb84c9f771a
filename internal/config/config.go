// Package config loads whisper-web settings from YAML, .env files and the
// process environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete service configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Model   ModelConfig   `yaml:"model"`
	Staging StagingConfig `yaml:"staging"`
	Uploads UploadsConfig `yaml:"uploads"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         string        `yaml:"port" validate:"required,numeric"`
	ReadTimeout  time.Duration `yaml:"read_timeout" validate:"gt=0"`
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gt=0"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" validate:"gt=0"`
	Environment  string        `yaml:"environment" validate:"oneof=development production test"`
	MaxUploadMB  int64         `yaml:"max_upload_mb" validate:"gt=0,lte=4096"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// MaxUploadBytes returns the request body limit in bytes.
func (s ServerConfig) MaxUploadBytes() int64 {
	return s.MaxUploadMB << 20
}

// ModelConfig selects and configures the speech recognition backend.
type ModelConfig struct {
	// Backend is a registered backend name: whisper_cpp or openai.
	Backend  string `yaml:"backend" validate:"required"`
	Variant  string `yaml:"variant" validate:"required"`
	Language string `yaml:"language" validate:"required"`

	WhisperCpp WhisperCppConfig `yaml:"whisper_cpp"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
}

// WhisperCppConfig configures the local whisper.cpp backend.
type WhisperCppConfig struct {
	BinaryPath string `yaml:"binary_path"`
	FFmpegPath string `yaml:"ffmpeg_path"`
	ModelDir   string `yaml:"model_dir"`
	// ModelPath overrides ModelDir/ggml-<variant>.bin.
	ModelPath    string `yaml:"model_path"`
	DownloadURL  string `yaml:"download_url"`
	AutoDownload bool   `yaml:"auto_download"`
	Threads      int    `yaml:"threads" validate:"gte=0,lte=64"`
	Prompt       string `yaml:"prompt"`
}

// OpenAIConfig configures the hosted Whisper API backend.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// StagingConfig controls where uploads are written before inference.
type StagingConfig struct {
	// Dir defaults to the OS temp dir when empty.
	Dir string `yaml:"dir"`
}

// UploadsConfig controls how long a staged upload waits for confirmation.
type UploadsConfig struct {
	TTL           time.Duration `yaml:"ttl" validate:"gt=0"`
	SweepInterval time.Duration `yaml:"sweep_interval" validate:"gt=0"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Development bool `yaml:"development"`
}

// Load reads the YAML file at path (if any) over the defaults, expands
// ${VAR} and ${VAR:-default} references, applies WHISPER_WEB_* overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal([]byte(ExpandEnv(string(data))), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// ExpandEnv replaces ${VAR}, $VAR and ${VAR:-default} in s.
func ExpandEnv(s string) string {
	return os.Expand(s, func(ref string) string {
		name, fallback, hasDefault := strings.Cut(ref, ":-")
		if value, ok := os.LookupEnv(name); ok && value != "" {
			return value
		}
		if hasDefault {
			return fallback
		}
		return ""
	})
}

type override struct {
	key   string
	apply func(cfg *Config, value string) error
}

func stringOverride(key string, field func(*Config) *string) override {
	return override{key: key, apply: func(cfg *Config, value string) error {
		*field(cfg) = value
		return nil
	}}
}

var overrides = []override{
	stringOverride("WHISPER_WEB_HOST", func(c *Config) *string { return &c.Server.Host }),
	stringOverride("WHISPER_WEB_PORT", func(c *Config) *string { return &c.Server.Port }),
	stringOverride("WHISPER_WEB_ENV", func(c *Config) *string { return &c.Server.Environment }),
	stringOverride("WHISPER_WEB_BACKEND", func(c *Config) *string { return &c.Model.Backend }),
	stringOverride("WHISPER_WEB_MODEL_VARIANT", func(c *Config) *string { return &c.Model.Variant }),
	stringOverride("WHISPER_WEB_LANGUAGE", func(c *Config) *string { return &c.Model.Language }),
	stringOverride("WHISPER_WEB_MODEL_DIR", func(c *Config) *string { return &c.Model.WhisperCpp.ModelDir }),
	stringOverride("WHISPER_WEB_STAGING_DIR", func(c *Config) *string { return &c.Staging.Dir }),
	stringOverride("WHISPER_CPP_BINARY", func(c *Config) *string { return &c.Model.WhisperCpp.BinaryPath }),
	stringOverride("WHISPER_CPP_MODEL", func(c *Config) *string { return &c.Model.WhisperCpp.ModelPath }),
	stringOverride("OPENAI_API_KEY", func(c *Config) *string { return &c.Model.OpenAI.APIKey }),
	{key: "WHISPER_WEB_MAX_UPLOAD_MB", apply: func(cfg *Config, value string) error {
		mb, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("WHISPER_WEB_MAX_UPLOAD_MB: %w", err)
		}
		cfg.Server.MaxUploadMB = mb
		return nil
	}},
	{key: "WHISPER_WEB_UPLOAD_TTL", apply: func(cfg *Config, value string) error {
		ttl, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("WHISPER_WEB_UPLOAD_TTL: %w", err)
		}
		cfg.Uploads.TTL = ttl
		return nil
	}},
	{key: "WHISPER_WEB_LOG_DEVELOPMENT", apply: func(cfg *Config, value string) error {
		dev, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("WHISPER_WEB_LOG_DEVELOPMENT: %w", err)
		}
		cfg.Log.Development = dev
		return nil
	}},
}

func applyEnvOverrides(cfg *Config) error {
	for _, o := range overrides {
		value := strings.TrimSpace(os.Getenv(o.key))
		if value == "" {
			continue
		}
		if err := o.apply(cfg, value); err != nil {
			return err
		}
	}
	return nil
}
