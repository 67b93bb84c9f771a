package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks struct constraints and the backend-specific settings.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}

	if err := ValidateTimeout(c.Uploads.SweepInterval, "uploads sweep"); err != nil {
		return err
	}

	switch c.Model.Backend {
	case "whisper_cpp":
		wc := c.Model.WhisperCpp
		if wc.BinaryPath == "" {
			return fmt.Errorf("whisper_cpp binary_path is required")
		}
		if wc.ModelPath == "" && wc.ModelDir == "" {
			return fmt.Errorf("whisper_cpp requires model_path or model_dir")
		}
		if wc.AutoDownload {
			if err := ValidateURL(wc.DownloadURL, "whisper_cpp download"); err != nil {
				return err
			}
		}
	case "openai":
		if err := ValidateAPIKey(c.Model.OpenAI.APIKey, "OpenAI"); err != nil {
			return err
		}
		if c.Model.OpenAI.BaseURL != "" {
			if err := ValidateURL(c.Model.OpenAI.BaseURL, "openai base"); err != nil {
				return err
			}
		}
	}

	return nil
}

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateAPIKey validates API key format
func ValidateAPIKey(apiKey string, keyType string) error {
	if apiKey == "" {
		return fmt.Errorf("%s API key is required", keyType)
	}

	switch keyType {
	case "OpenAI":
		if !strings.HasPrefix(apiKey, "sk-") {
			return fmt.Errorf("invalid OpenAI API key format: must start with 'sk-'")
		}
		if len(apiKey) < 20 {
			return fmt.Errorf("invalid OpenAI API key format: too short")
		}
	}

	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}
