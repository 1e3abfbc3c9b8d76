package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultRetention is how long a summary stays fresh after it is written.
const DefaultRetention = 96 * time.Hour

// MaxTopicLength mirrors the width of the topic column.
const MaxTopicLength = 255

var (
	// ErrInvalidDepth is returned for depth labels outside less/medium/high.
	ErrInvalidDepth = errors.New("invalid depth")
	// ErrEmptyTopic is returned when the topic is blank after trimming.
	ErrEmptyTopic = errors.New("topic is required")
	// ErrTopicTooLong is returned when the normalized topic exceeds MaxTopicLength.
	ErrTopicTooLong = errors.New("topic too long")
)

// Depth controls breadth and verbosity of a summary.
type Depth string

const (
	DepthLess   Depth = "less"
	DepthMedium Depth = "medium"
	DepthHigh   Depth = "high"
)

// Depths lists every valid depth in ascending order.
var Depths = []Depth{DepthLess, DepthMedium, DepthHigh}

// ParseDepth is strict: unknown labels are rejected rather than defaulted.
func ParseDepth(s string) (Depth, error) {
	switch d := Depth(strings.ToLower(strings.TrimSpace(s))); d {
	case DepthLess, DepthMedium, DepthHigh:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDepth, s)
	}
}

// NormalizeTopic trims and collapses inner whitespace.
func NormalizeTopic(s string) (string, error) {
	t := strings.Join(strings.Fields(s), " ")
	if t == "" {
		return "", ErrEmptyTopic
	}
	if len([]rune(t)) > MaxTopicLength {
		return "", fmt.Errorf("%w: max %d characters", ErrTopicTooLong, MaxTopicLength)
	}
	return t, nil
}

// CacheKey identifies one cached summary.
type CacheKey struct {
	Topic string `json:"topic"`
	Depth Depth  `json:"depth"`
}

// NewCacheKey validates and normalizes both halves of the key.
func NewCacheKey(topic, depth string) (CacheKey, error) {
	t, err := NormalizeTopic(topic)
	if err != nil {
		return CacheKey{}, err
	}
	d, err := ParseDepth(depth)
	if err != nil {
		return CacheKey{}, err
	}
	return CacheKey{Topic: t, Depth: d}, nil
}

func (k CacheKey) String() string { return string(k.Depth) + ":" + k.Topic }

// CacheRecord is the persisted summary for a key.
type CacheRecord struct {
	ID        string    `json:"id,omitempty"`
	Topic     string    `json:"topic"`
	Depth     Depth     `json:"depth"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
}

func (r CacheRecord) Key() CacheKey { return CacheKey{Topic: r.Topic, Depth: r.Depth} }

// Fresh reports whether the record is still inside the retention window at now.
func (r CacheRecord) Fresh(now time.Time, window time.Duration) bool {
	return now.Sub(r.CreatedAt) < window
}

// Candidate is one ranked search hit. Content is set when the provider
// already returned page text inline.
type Candidate struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content,omitempty"`
}

// SourceDocument is the extracted text of one candidate for a single request.
type SourceDocument struct {
	URL       string
	Text      string
	Truncated bool
}
