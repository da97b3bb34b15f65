package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"google.golang.org/api/option"
)

type geminiRequest struct {
	Contents []struct {
		Role  string `json:"role"`
		Parts []struct {
			Text string `json:"text"`
		} `json:"parts"`
	} `json:"contents"`
}

func newGeminiTestClient(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient(context.Background(), Options{GeminiKey: "test-key", MaxTokens: 300},
		zaptest.NewLogger(t), option.WithEndpoint(srv.URL))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGeminiClientGetReply(t *testing.T) {
	var (
		path string
		body string
	)
	client := newGeminiTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		body = string(raw)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"reply\":"},{"text":"\"¿Para qué día?\"}"}]}}]}`))
	})

	raw, err := client.GetReply(context.Background(), "system prompt",
		[]Message{{Role: "user", Text: "hola"}, {Role: "assistant", Text: "¿Qué necesitas?"}},
		"un corte",
	)

	require.NoError(t, err)
	assert.Equal(t, `{"reply":"¿Para qué día?"}`, raw)
	assert.True(t, strings.HasSuffix(path, "gemini-1.5-flash:generateContent"), path)
	assert.Contains(t, body, "system prompt")

	var req geminiRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	require.Len(t, req.Contents, 3)

	roles := make([]string, 0, len(req.Contents))
	for _, c := range req.Contents {
		roles = append(roles, c.Role)
	}
	assert.Equal(t, []string{"user", "model", "user"}, roles)
	assert.Equal(t, "un corte", req.Contents[2].Parts[0].Text)
}

func TestGeminiClientEmptyCandidates(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	})

	_, err := client.GetReply(context.Background(), "sys", nil, "m")
	assert.Error(t, err)
}

func TestGeminiClientHTTPError(t *testing.T) {
	client := newGeminiTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"code":500,"message":"down","status":"INTERNAL"}}`))
	})

	_, err := client.GetReply(context.Background(), "sys", nil, "m")
	assert.Error(t, err)
}
