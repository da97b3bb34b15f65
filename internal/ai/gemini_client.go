package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/Vovarama1992/autoengine-chat/internal/logger"
)

type GeminiClient struct {
	client *genai.Client
	model  string
	opts   Options
	log    *zap.Logger
}

// NewGeminiClient dials the Gemini API. extra is appended after the API key,
// e.g. option.WithEndpoint for a self-hosted proxy.
func NewGeminiClient(ctx context.Context, opts Options, log *zap.Logger, extra ...option.ClientOption) (*GeminiClient, error) {
	clientOpts := append([]option.ClientOption{option.WithAPIKey(opts.GeminiKey)}, extra...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	model := opts.GeminiModel
	if model == "" {
		model = "gemini-1.5-flash"
	}

	return &GeminiClient{client: client, model: model, opts: opts, log: log.Named("gemini")}, nil
}

func (g *GeminiClient) Close() error {
	return g.client.Close()
}

func (g *GeminiClient) GetReply(
	ctx context.Context,
	systemPrompt string,
	history []Message,
	message string,
) (string, error) {
	// GenerativeModel carries per-call config, so build one per request.
	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemPrompt)}}
	model.ResponseMIMEType = "application/json"
	model.SetTemperature(g.opts.Temperature)
	if g.opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(g.opts.MaxTokens))
	}

	cs := model.StartChat()
	for _, m := range history {
		role := "user"
		if m.Role == "assistant" {
			role = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(m.Text)}})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		g.log.Warn("generate failed", zap.Error(err))
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("gemini: empty candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	raw := sb.String()
	g.log.Debug("raw response", zap.String("model", g.model), zap.String("raw", logger.Short(raw)))

	return raw, nil
}
