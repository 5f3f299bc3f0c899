// Package kolosal is the client for the Kolosal generative-model endpoint:
// OpenAI-compatible chat completions plus a structured OCR endpoint. The
// reply is free text with no guarantee of schema conformance; extraction and
// validation happen in the caller.
package kolosal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/smartkas-app/kasai/internal/prompt"
)

const defaultBaseURL = "https://api.kolosal.ai"

// Gateway failure modes. The turn controller treats both as "try again"
// fallbacks; callers never see the raw transport error.
var (
	ErrUnavailable = errors.New("model endpoint unavailable")
	ErrRateLimited = errors.New("model endpoint rate limited")
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	chat    *openai.Client
	http    *http.Client
}

func NewClient(apiKey, model string) *Client {
	c := &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
	c.chat = newChatClient(apiKey, c.baseURL, c.http)
	return c
}

func newChatClient(apiKey, baseURL string, httpClient *http.Client) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL + "/v1"
	cfg.HTTPClient = httpClient
	return openai.NewClientWithConfig(cfg)
}

// SetTestTransport redirects the client to a test server.
func (c *Client) SetTestTransport(baseURL string) {
	c.baseURL = baseURL
	c.chat = newChatClient(c.apiKey, baseURL, c.http)
}

// Complete sends a chat completion request and returns the raw text reply.
func (c *Client) Complete(ctx context.Context, messages []prompt.Message, maxTokens int, temperature float32) (string, error) {
	msgs := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
		if m.ImageURL != "" {
			// Vision-capable request: the text and image travel as parts.
			text := m.Content
			if text == "" {
				text = "Analyze this image."
			}
			msg.Content = ""
			msg.MultiContent = []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: text},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: m.ImageURL}},
			}
		}
		msgs = append(msgs, msg)
	}

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    msgs,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion: %w", ErrUnavailable)
	}
	return resp.Choices[0].Message.Content, nil
}

func mapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("chat completion: %w", ErrRateLimited)
		}
		return fmt.Errorf("chat completion %d: %w", apiErr.HTTPStatusCode, ErrUnavailable)
	}
	return fmt.Errorf("chat completion: %v: %w", err, ErrUnavailable)
}
