package chromedp

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/mohammad-safakhou/skimmer/tools/web_fetch/models"
)

// Render loads the page in headless Chrome so script-built content is
// present in the returned HTML.
type Render struct {
	UserAgent string
}

func (r Render) Render(ctx context.Context, url string) (models.Page, error) {
	if strings.TrimSpace(url) == "" {
		return models.Page{}, errors.New("invalid url")
	}
	t0 := time.Now()

	html, err := fetchHTML(ctx, url, r.UserAgent)
	if err != nil {
		return models.Page{URL: url, Status: 599, RenderMS: int(time.Since(t0) / time.Millisecond)}, fmt.Errorf("render %s: %w", url, err)
	}

	sum := sha1.Sum([]byte(html))
	return models.Page{
		URL:         url,
		HTML:        html,
		ContentType: "text/html",
		HTMLHash:    hex.EncodeToString(sum[:]),
		Status:      200,
		RenderMS:    int(time.Since(t0) / time.Millisecond),
	}, nil
}

func fetchHTML(ctx context.Context, url, userAgent string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	var html string
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	return html, err
}
