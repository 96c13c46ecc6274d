// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

const (
	// DefaultBaseURL is Gemini's OpenAI-compatible endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"
)

const systemPrompt = "Eres un evaluador imparcial de propuestas políticas. Respondes únicamente con números."

var errNoChoices = errors.New("oracle returned no choices")

// OpenAITransport sends prompts through any OpenAI-compatible chat
// completion API.
type OpenAITransport struct {
	client *openai.Client
	model  string
}

// NewOpenAITransport builds a transport. Empty baseURL and model fall back to
// DefaultBaseURL and DefaultModel; a nil httpClient uses http.DefaultClient.
func NewOpenAITransport(apiKey, baseURL, model string, httpClient *http.Client) *OpenAITransport {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	slog.Info("Initializing scoring oracle client", "base_url", baseURL, "model", model)
	return &OpenAITransport{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Send implements Transport
func (t *OpenAITransport) Send(ctx context.Context, prompt string) (string, error) {
	resp, err := t.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: t.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	slog.Debug("oracle reply received", "model", t.model, "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}
