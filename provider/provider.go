package provider

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	"github.com/mohammad-safakhou/skimmer/provider/gemini"
	openai_provider "github.com/mohammad-safakhou/skimmer/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Gemini Client = "gemini"
)

var (
	ErrUnsupportedProvider = errors.New("unsupported LLM provider")
	ErrMissingAPIKey       = errors.New("llm api key not set")
	ErrEmptySummary        = errors.New("model returned an empty summary")
)

// Summarizer condenses a corpus of web text into a Markdown summary.
type Summarizer interface {
	Summarize(ctx context.Context, corpus, topic, instruction string) (string, error)
}

// Completer sends one prompt to a model and returns its text reply.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

const promptTemplate = `
You are an expert summarizer. Create a summary about "%s" based on the web content below.

Depth requirement: %s

Format the summary in **Markdown**. Use headings, bullet points, or bold text where appropriate to make it easy to read.

Web content:
%s
`

// BuildPrompt renders the fixed summarization prompt.
func BuildPrompt(corpus, topic, instruction string) string {
	return fmt.Sprintf(promptTemplate, topic, instruction, corpus)
}

type summarizer struct {
	backend Completer
	name    Client
	logger  *zap.Logger
	metrics *metrics.Recorder
}

// NewSummarizer creates the summarizer selected by cfg.Provider. A missing
// key for the selected provider is an error.
func NewSummarizer(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger, m *metrics.Recorder) (Summarizer, error) {
	active := cfg.Active()
	if strings.TrimSpace(active.APIKey) == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAPIKey, cfg.Provider)
	}
	var (
		backend Completer
		err     error
	)
	name := Client(strings.ToLower(cfg.Provider))
	switch name {
	case Gemini:
		backend, err = gemini.NewClient(ctx, active.APIKey, active.Model, active.Temperature, active.MaxTokens, active.Timeout)
	case OpenAI:
		backend = openai_provider.NewOpenAIClient(active.APIKey, active.BaseURL, active.Model, active.Temperature, active.MaxTokens, active.Timeout)
	default:
		return nil, ErrUnsupportedProvider
	}
	if err != nil {
		return nil, err
	}
	return NewWithBackend(name, backend, logger, m), nil
}

// NewWithBackend wraps an existing Completer.
func NewWithBackend(name Client, backend Completer, logger *zap.Logger, m *metrics.Recorder) Summarizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &summarizer{backend: backend, name: name, logger: logger.Named("summarizer"), metrics: m}
}

func (s *summarizer) Summarize(ctx context.Context, corpus, topic, instruction string) (string, error) {
	t0 := time.Now()
	out, err := s.backend.Complete(ctx, BuildPrompt(corpus, topic, instruction))
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrEmptySummary
	}
	if err != nil {
		s.metrics.ObserveSummarize(metrics.SummarizeError, time.Since(t0))
		s.logger.Warn("summarize failed", zap.String("provider", string(s.name)), zap.String("topic", topic), zap.Error(err))
		return "", err
	}
	s.metrics.ObserveSummarize(metrics.SummarizeOK, time.Since(t0))
	s.logger.Debug("summarized", zap.String("provider", string(s.name)), zap.Int("corpus_chars", len(corpus)), zap.Duration("took", time.Since(t0)))
	return strings.TrimSpace(out), nil
}
