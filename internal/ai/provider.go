package ai

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

const (
	ProviderAuto   = "auto"
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
	ProviderNone   = "none"
)

// Options holds everything the provider clients need.
type Options struct {
	Provider      string
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string
	GeminiKey     string
	GeminiModel   string
	Temperature   float32
	MaxTokens     int
}

// Resolve picks the concrete provider. "auto" prefers OpenAI, then Gemini.
// A provider without a key resolves to "none".
func Resolve(opts Options) string {
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case ProviderOpenAI:
		if opts.OpenAIKey != "" {
			return ProviderOpenAI
		}
	case ProviderGemini:
		if opts.GeminiKey != "" {
			return ProviderGemini
		}
	case ProviderNone:
	default:
		if opts.OpenAIKey != "" {
			return ProviderOpenAI
		}
		if opts.GeminiKey != "" {
			return ProviderGemini
		}
	}
	return ProviderNone
}

// New builds the client for the resolved provider. A missing key never fails
// startup: the service keeps answering from the lexical path.
func New(ctx context.Context, opts Options, log *zap.Logger) (AI, string) {
	provider := Resolve(opts)

	switch provider {
	case ProviderOpenAI:
		return NewOpenAIClient(opts, log), provider
	case ProviderGemini:
		client, err := NewGeminiClient(ctx, opts, log)
		if err != nil {
			log.Warn("gemini unavailable", zap.Error(err))
			return Unavailable{}, ProviderNone
		}
		return client, provider
	}

	log.Warn("no model provider configured, running lexical-only")
	return Unavailable{}, ProviderNone
}
