package ai

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when no model provider is configured.
var ErrUnavailable = errors.New("MODEL_UNAVAILABLE")

// AI is the external model. It knows nothing about slots or sectors: it gets
// a system prompt, a bounded history and the current message, and returns the
// raw text the model produced.
type AI interface {
	GetReply(
		ctx context.Context,
		systemPrompt string,
		history []Message,
		message string,
	) (string, error)
}

// Message is the provider-neutral dialogue format.
type Message struct {
	Role string `json:"role"` // "user" | "assistant"
	Text string `json:"text"`
}

// Unavailable stands in for a provider when credentials are missing.
type Unavailable struct{}

func (Unavailable) GetReply(context.Context, string, []Message, string) (string, error) {
	return "", ErrUnavailable
}
