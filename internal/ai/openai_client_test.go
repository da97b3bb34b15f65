package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestOpenAIClientGetReply(t *testing.T) {
	var got openai.ChatCompletionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop",
				"message": {"role": "assistant", "content": "{\"reply\":\"¿Para qué día?\"}"}}]
		}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Options{
		OpenAIKey:     "test-key",
		OpenAIBaseURL: srv.URL + "/v1",
		Temperature:   0.3,
		MaxTokens:     300,
	}, zaptest.NewLogger(t))

	raw, err := client.GetReply(context.Background(), "system prompt",
		[]Message{{Role: "user", Text: "hola"}, {Role: "assistant", Text: "¿Qué necesitas?"}},
		"un corte",
	)

	require.NoError(t, err)
	assert.Equal(t, `{"reply":"¿Para qué día?"}`, raw)

	require.Len(t, got.Messages, 5)
	assert.Equal(t, openai.GPT4oMini, got.Model)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, "system prompt", got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleAssistant, got.Messages[2].Role)
	assert.Equal(t, "un corte", got.Messages[3].Content)
	assert.Equal(t, jsonGuard, got.Messages[4].Content)
	assert.Equal(t, 300, got.MaxTokens)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, got.ResponseFormat.Type)
}

func TestOpenAIClientEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[]}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Options{OpenAIKey: "k", OpenAIBaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))

	_, err := client.GetReply(context.Background(), "sys", nil, "m")
	assert.Error(t, err)
}

func TestOpenAIClientHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"down","type":"server_error"}}`))
	}))
	defer srv.Close()

	client := NewOpenAIClient(Options{OpenAIKey: "k", OpenAIBaseURL: srv.URL + "/v1"}, zaptest.NewLogger(t))

	_, err := client.GetReply(context.Background(), "sys", nil, "m")
	assert.Error(t, err)
}
