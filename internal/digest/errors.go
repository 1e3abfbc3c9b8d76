package digest

import (
	"errors"
	"fmt"
)

// Kind classifies why a request could not produce a summary.
type Kind string

const (
	KindInvalidInput        Kind = "invalid_input"
	KindNoSourcesFound      Kind = "no_sources_found"
	KindNoReadableContent   Kind = "no_readable_content"
	KindSummarization       Kind = "summarization_failed"
	KindUpstreamUnavailable Kind = "upstream_unavailable"
)

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrNoSourcesFound      = errors.New("no sources found")
	ErrNoReadableContent   = errors.New("no readable content")
	ErrSummarizationFailed = errors.New("summarization failed")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotCached is returned by Lookup when no fresh record exists.
	ErrNotCached = errors.New("no fresh cached record")
)

var sentinels = map[Kind]error{
	KindInvalidInput:        ErrInvalidInput,
	KindNoSourcesFound:      ErrNoSourcesFound,
	KindNoReadableContent:   ErrNoReadableContent,
	KindSummarization:       ErrSummarizationFailed,
	KindUpstreamUnavailable: ErrUpstreamUnavailable,
}

// Error is the only error type Handle returns.
type Error struct {
	Kind Kind
	Err  error
}

func newError(kind Kind, err error) *Error {
	if err == nil {
		err = sentinels[kind]
	}
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	s := sentinels[e.Kind]
	if e.Err == nil || errors.Is(e.Err, s) {
		return fmt.Sprintf("%v", s)
	}
	return fmt.Sprintf("%v: %v", s, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinels[e.Kind]
}

// KindOf extracts the Kind from err, if it carries one.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
