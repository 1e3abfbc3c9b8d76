package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultModel   = "gemini-2.5-flash"
	DefaultTimeout = 60 * time.Second
)

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client talks to the Gemini API through the genai SDK.
type Client struct {
	models      generator
	model       string
	temperature float64
	maxTokens   int
}

// NewClient builds a Gemini client. timeout bounds every HTTP request the SDK
// makes; zero falls back to DefaultTimeout.
func NewClient(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	c, err := genai.NewClient(ctx, clientConfig(apiKey, timeout))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return newWithGenerator(c.Models, model, temperature, maxTokens), nil
}

func clientConfig(apiKey string, timeout time.Duration) *genai.ClientConfig {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{Timeout: &timeout},
	}
}

func newWithGenerator(g generator, model string, temperature float64, maxTokens int) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{models: g, model: model, temperature: temperature, maxTokens: maxTokens}
}

func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if c.temperature > 0 {
		cfg.Temperature = genai.Ptr(float32(c.temperature))
	}
	if c.maxTokens > 0 {
		cfg.MaxOutputTokens = int32(c.maxTokens)
	}
	resp, err := c.models.GenerateContent(ctx, c.model,
		[]*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("gemini returned no candidates")
	}
	return strings.TrimSpace(resp.Text()), nil
}
