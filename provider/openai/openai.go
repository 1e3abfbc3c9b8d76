package openai_provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/skimmer/internal/httpjson"
)

const (
	openaiAPIURL = "https://api.openai.com/v1"
	DefaultModel = "gpt-4o-mini"
)

// client implements Completer using OpenAI's chat completions API
type client struct {
	apiKey          string
	baseURL         string
	completionModel string
	temperature     float64
	maxTokens       int
	http            *httpjson.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewOpenAIClient creates a new OpenAI client. An empty baseURL targets the
// public API.
func NewOpenAIClient(apiKey, baseURL, completionModel string, temperature float64, maxTokens int, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = openaiAPIURL
	}
	if completionModel == "" {
		completionModel = DefaultModel
	}
	return &client{
		apiKey:          apiKey,
		baseURL:         strings.TrimRight(baseURL, "/"),
		completionModel: completionModel,
		temperature:     temperature,
		maxTokens:       maxTokens,
		http:            httpjson.New(timeout, nil),
	}
}

// Complete sends prompt as a single user message.
func (c *client) Complete(ctx context.Context, prompt string) (string, error) {
	body := request{
		Model:       c.completionModel,
		Messages:    []Message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}

	var out response
	if err := c.http.Do(ctx, http.MethodPost, c.baseURL+"/chat/completions", headers, body, &out); err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return out.Choices[0].Message.Content, nil
}
