package engine

import (
	"errors"
	"fmt"
	"testing"
)

func TestPipelineErrorWrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	pe := NewError(KindTransport, "An error occurred: dial tcp: refused", cause)

	if !errors.Is(pe, cause) {
		t.Error("PipelineError should unwrap to its cause")
	}
	if got := pe.Error(); got != "An error occurred: dial tcp: refused: dial tcp: refused" {
		t.Errorf("Error() = %q", got)
	}
	if got := NewError(KindInvalidURL, MsgInvalidURL, nil).Error(); got != MsgInvalidURL {
		t.Errorf("Error() without cause = %q", got)
	}
}

func TestAsPipelineError(t *testing.T) {
	if AsPipelineError(nil) != nil {
		t.Error("nil should stay nil")
	}

	tagged := NewError(KindTranscriptUnavailable, MsgNoTranscript, ErrNoTranscriptFound)
	if got := AsPipelineError(fmt.Errorf("fetch: %w", tagged)); got != tagged {
		t.Errorf("wrapped tagged error not recovered: %v", got)
	}

	got := AsPipelineError(errors.New("boom"))
	if got.Kind != KindUnknown || got.Message != "An error occurred: boom" {
		t.Errorf("untagged error = %+v", got)
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(NewError(KindRateLimited, "x", nil)); k != KindRateLimited {
		t.Errorf("KindOf tagged = %v", k)
	}
	if k := KindOf(errors.New("x")); k != KindUnknown {
		t.Errorf("KindOf untagged = %v", k)
	}
}
