package httpget

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/models"
)

const DefaultMaxBodyBytes = 2 << 20

// Render issues a plain GET. Bodies above MaxBodyBytes are cut off rather
// than rejected.
type Render struct {
	Client       *http.Client
	UserAgent    string
	MaxBodyBytes int64
}

func (r Render) Render(ctx context.Context, url string) (models.Page, error) {
	if strings.TrimSpace(url) == "" {
		return models.Page{}, errors.New("invalid url")
	}
	t0 := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.Page{}, fmt.Errorf("create request: %w", err)
	}
	if r.UserAgent != "" {
		req.Header.Set("User-Agent", r.UserAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	client := r.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return models.Page{}, fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	page := models.Page{URL: url, Status: resp.StatusCode, ContentType: resp.Header.Get("Content-Type")}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		page.RenderMS = int(time.Since(t0) / time.Millisecond)
		return page, fmt.Errorf("get %s: status %d", url, resp.StatusCode)
	}

	limit := r.MaxBodyBytes
	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return page, fmt.Errorf("read %s: %w", url, err)
	}
	sum := sha1.Sum(body)
	page.HTML = string(body)
	page.HTMLHash = hex.EncodeToString(sum[:])
	page.RenderMS = int(time.Since(t0) / time.Millisecond)
	return page, nil
}
