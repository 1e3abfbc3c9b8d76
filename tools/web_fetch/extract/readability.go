package extract

import (
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"
)

// Readability extracts the main article body. Pages readability cannot make
// sense of are handed to Fallback.
type Readability struct {
	Fallback Extractor
}

func (r Readability) Extract(doc, pageURL string) (string, error) {
	article, err := readability.FromReader(strings.NewReader(doc), parseURL(pageURL))
	if err == nil {
		if text := collapse(article.TextContent); text != "" {
			return text, nil
		}
	}
	if r.Fallback == nil {
		return "", err
	}
	return r.Fallback.Extract(doc, pageURL)
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
