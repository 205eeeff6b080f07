package engine

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a pipeline failure.
type ErrorKind string

const (
	KindInvalidURL            ErrorKind = "invalid_url"
	KindInvalidInput          ErrorKind = "invalid_input"
	KindTranscriptUnavailable ErrorKind = "transcript_unavailable"
	KindTransport             ErrorKind = "transport_error"
	KindRateLimited           ErrorKind = "rate_limited"
	KindContentBlocked        ErrorKind = "content_blocked"
	KindCanceled              ErrorKind = "canceled"
	KindUnknown               ErrorKind = "unknown"
)

// User-facing messages.
const (
	MsgInvalidURL          = "Invalid YouTube URL. Please check the link and try again."
	MsgTranscriptsDisabled = "Transcripts are disabled for this video."
	MsgNoTranscript        = "No transcript found for this video."
	MsgContentBlocked      = "The model returned no summary for this transcript (blocked by content filtering)."
)

// Errors reported by transcript sources.
var (
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	ErrNoTranscriptFound   = errors.New("no transcript found")
)

// Errors reported by generators.
var (
	ErrRateLimited  = errors.New("rate limited")
	ErrNoCandidates = errors.New("no candidates returned")
)

// PipelineError is the tagged failure handed to callers. Message is ready
// for display; Err keeps the underlying cause for diagnostics.
type PipelineError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *PipelineError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *PipelineError) Unwrap() error { return e.Err }

// NewError builds a PipelineError.
func NewError(kind ErrorKind, msg string, err error) *PipelineError {
	return &PipelineError{Kind: kind, Message: msg, Err: err}
}

// AsPipelineError converts any error into a PipelineError.
// Errors that are not already tagged become KindUnknown with the original text.
func AsPipelineError(err error) *PipelineError {
	if err == nil {
		return nil
	}
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe
	}
	return NewError(KindUnknown, "An error occurred: "+err.Error(), err)
}

// KindOf returns the kind of a tagged error, or KindUnknown.
func KindOf(err error) ErrorKind {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return KindUnknown
}
