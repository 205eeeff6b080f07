package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitize_Redacts(t *testing.T) {
	in := "This talk covers hate speech and harassment online."
	assert.Equal(t, "This talk covers [REDACTED] and [REDACTED] online.", Sanitize(in))
}

func TestSanitize_AllPhrases(t *testing.T) {
	in := strings.Join(HazardPhrases, " | ")
	out := Sanitize(in)
	for _, p := range HazardPhrases {
		assert.NotContains(t, out, p)
	}
	assert.Equal(t, len(HazardPhrases), strings.Count(out, RedactionMarker))
}

func TestSanitize_CaseSensitive(t *testing.T) {
	in := "Hate Speech is capitalized here"
	assert.Equal(t, in, Sanitize(in))
}

func TestSanitize_Truncates(t *testing.T) {
	in := strings.Repeat("a", DefaultMaxTranscriptChars+500)
	out := Sanitize(in)
	assert.Len(t, out, DefaultMaxTranscriptChars)
}

func TestSanitize_RedactsBeforeTruncating(t *testing.T) {
	s := NewSanitizer(20)
	// "dangerous content" straddles the cap; redaction happens first.
	out := s.Sanitize("0123456789 dangerous content tail")
	assert.Equal(t, "0123456789 [REDACTED", out)
}

func TestSanitize_RuneBoundary(t *testing.T) {
	s := NewSanitizer(5)
	out := s.Sanitize("abcdé") // é is 2 bytes, total 6
	assert.Equal(t, "abcd", out)
	assert.True(t, utf8.ValidString(out))
}

func TestSanitize_Idempotent(t *testing.T) {
	in := "sexually explicit " + strings.Repeat("x", DefaultMaxTranscriptChars)
	once := Sanitize(in)
	assert.Equal(t, once, Sanitize(once))
}

func TestSanitize_NoCap(t *testing.T) {
	s := NewSanitizer(0)
	in := strings.Repeat("b", DefaultMaxTranscriptChars*2)
	assert.Equal(t, in, s.Sanitize(in))
}
