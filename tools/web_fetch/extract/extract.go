// Package extract turns rendered HTML into plain visible text.
package extract

import (
	"errors"
	"strings"
)

// Extractor returns the readable text of an HTML document.
type Extractor interface {
	Extract(html, pageURL string) (string, error)
}

type Kind string

const (
	DOMKind         Kind = "dom"
	ReadabilityKind Kind = "readability"
)

var ErrUnsupportedExtractor = errors.New("unsupported extractor")

func New(kind string) (Extractor, error) {
	switch Kind(strings.ToLower(kind)) {
	case DOMKind, "":
		return DOM{}, nil
	case ReadabilityKind:
		return Readability{Fallback: DOM{}}, nil
	default:
		return nil, ErrUnsupportedExtractor
	}
}

// PlainText normalizes a text/plain body.
func PlainText(body string) string {
	return collapse(body)
}

// collapse joins whitespace-separated tokens with single spaces.
func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
