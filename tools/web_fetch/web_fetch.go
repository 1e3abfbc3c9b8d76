package web_fetch

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mohammad-safakhou/skimmer/config"
	"github.com/mohammad-safakhou/skimmer/internal/metrics"
	smodels "github.com/mohammad-safakhou/skimmer/models"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/chromedp"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/extract"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/httpget"
	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/models"
	"github.com/mohammad-safakhou/skimmer/utils"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (compatible; skimmer/1.0; +https://github.com/mohammad-safakhou/skimmer)"
)

// Renderer retrieves the HTML of a page.
type Renderer interface {
	Render(ctx context.Context, url string) (models.Page, error)
}

type RendererType string

const (
	HTTPRendererType     RendererType = "http"
	ChromedpRendererType RendererType = "chromedp"
)

var ErrUnsupportedRenderer = errors.New("unsupported renderer")

func NewRenderer(cfg config.FetchConfig) (Renderer, error) {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	switch RendererType(strings.ToLower(cfg.Renderer)) {
	case HTTPRendererType, "":
		return httpget.Render{Client: &http.Client{}, UserAgent: ua, MaxBodyBytes: cfg.MaxBodyBytes}, nil
	case ChromedpRendererType:
		return chromedp.Render{UserAgent: ua}, nil
	default:
		return nil, ErrUnsupportedRenderer
	}
}

// Fetcher turns a URL into a SourceDocument. It never fails: any network,
// status or parse problem yields a document with empty text.
type Fetcher struct {
	renderer  Renderer
	extractor extract.Extractor
	timeout   time.Duration
	logger    *zap.Logger
	metrics   *metrics.Recorder
}

func NewFetcher(r Renderer, e extract.Extractor, timeout time.Duration, logger *zap.Logger, m *metrics.Recorder) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{renderer: r, extractor: e, timeout: timeout, logger: logger, metrics: m}
}

// NewFetcherFromConfig wires the configured renderer and extractor.
func NewFetcherFromConfig(cfg config.FetchConfig, logger *zap.Logger, m *metrics.Recorder) (*Fetcher, error) {
	r, err := NewRenderer(cfg)
	if err != nil {
		return nil, err
	}
	e, err := extract.New(cfg.Extractor)
	if err != nil {
		return nil, err
	}
	return NewFetcher(r, e, cfg.Timeout, logger, m), nil
}

// Fetch returns at most charLimit characters of visible text from url.
func (f *Fetcher) Fetch(ctx context.Context, url string, charLimit int) smodels.SourceDocument {
	doc := smodels.SourceDocument{URL: url}
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	page, err := f.renderer.Render(ctx, url)
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchFailed)
		f.logger.Warn("fetch failed", zap.String("url", url), zap.Int("status", page.Status), zap.Error(err))
		return doc
	}
	var text string
	if isPlainText(page.ContentType) {
		text = extract.PlainText(page.HTML)
	} else {
		text, err = f.extractor.Extract(page.HTML, url)
	}
	if err != nil {
		f.metrics.ObserveFetch(metrics.FetchFailed)
		f.logger.Warn("extract failed", zap.String("url", url), zap.Error(err))
		return doc
	}
	doc.Text, doc.Truncated = utils.TruncateRunes(text, charLimit)
	if doc.Text == "" {
		f.metrics.ObserveFetch(metrics.FetchEmpty)
		f.logger.Info("page had no readable text", zap.String("url", url))
		return doc
	}
	f.metrics.ObserveFetch(metrics.FetchOK)
	f.logger.Debug("fetched", zap.String("url", url), zap.Int("chars", len([]rune(doc.Text))), zap.Bool("truncated", doc.Truncated), zap.Int("render_ms", page.RenderMS))
	return doc
}

func isPlainText(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "text/plain")
}

// FromInline builds a document from text a search provider already returned.
func FromInline(c smodels.Candidate, charLimit int) smodels.SourceDocument {
	text := strings.Join(strings.Fields(c.Content), " ")
	doc := smodels.SourceDocument{URL: c.URL}
	doc.Text, doc.Truncated = utils.TruncateRunes(text, charLimit)
	return doc
}
