package openai

import (
	"github.com/sashabaranov/go-openai"
)

// NewClient returns a go-openai client for apiKey. baseURL overrides the
// public endpoint when set (Azure proxies, local gateways, tests).
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
