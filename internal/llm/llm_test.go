package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/techmind/internal/prompt"
)

func TestNew(t *testing.T) {
	p, err := New(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &ChatProvider{}, p)
	assert.Equal(t, "openai/gpt-3.5-turbo", p.Name())

	p, err = New(Config{Kind: " Anthropic ", APIKey: "k", Model: "claude-x"})
	require.NoError(t, err)
	assert.IsType(t, &PromptProvider{}, p)
	assert.Equal(t, "anthropic/claude-x", p.Name())

	_, err = New(Config{Kind: "openai"})
	assert.Error(t, err)

	_, err = New(Config{Kind: "gemini", APIKey: "k"})
	assert.Error(t, err)
}

type chatRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func TestChatProvider_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-3.5-turbo",
			"choices": [{
				"index": 0,
				"finish_reason": "stop",
				"message": {"role": "assistant", "content": " Containers herding containers. "}
			}]
		}`))
	}))
	defer srv.Close()

	p := NewChatProvider(Config{APIKey: "test-key", BaseURL: srv.URL})
	pr := prompt.Build(prompt.ModeNormal, "kubernetes")

	text, err := p.Complete(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, " Containers herding containers. ", text)

	assert.Equal(t, "gpt-3.5-turbo", got.Model)
	assert.Equal(t, MaxTokens, got.MaxTokens)
	assert.InDelta(t, Temperature, got.Temperature, 0.0001)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, pr.System, got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "Explain kubernetes in exactly three words.", got.Messages[1].Content)
}

func TestChatProvider_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[]}`))
	}))
	defer srv.Close()

	p := NewChatProvider(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Complete(context.Background(), prompt.Build(prompt.ModeFun, "go"))
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestChatProvider_UpstreamErrorIsNotRetried(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer srv.Close()

	p := NewChatProvider(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Complete(context.Background(), prompt.Build(prompt.ModeFun, "go"))
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

type messagesRequest struct {
	Model       string  `json:"model"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"messages"`
}

func TestPromptProvider_Complete(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-3-5-haiku-latest",
			"content": [{"type": "text", "text": "Boxes steering boxes!"}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 10, "output_tokens": 5}
		}`))
	}))
	defer srv.Close()

	p := NewPromptProvider(Config{APIKey: "test-key", BaseURL: srv.URL})
	pr := prompt.Build(prompt.ModeKid, "kubernetes")

	text, err := p.Complete(context.Background(), pr)
	require.NoError(t, err)
	assert.Equal(t, "Boxes steering boxes!", text)

	assert.Equal(t, "claude-3-5-haiku-latest", got.Model)
	assert.Equal(t, MaxTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	require.Len(t, got.Messages[0].Content, 1)
	assert.Equal(t, pr.Text(), got.Messages[0].Content[0].Text)
}

func TestPromptProvider_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"authentication_error","message":"bad key"}}`))
	}))
	defer srv.Close()

	p := NewPromptProvider(Config{APIKey: "k", BaseURL: srv.URL})
	_, err := p.Complete(context.Background(), prompt.Build(prompt.ModeNormal, "go"))
	assert.Error(t, err)
}
