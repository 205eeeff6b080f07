package engine

import (
	"strings"
	"unicode/utf8"
)

// DefaultMaxTranscriptChars bounds the transcript handed to the model.
const DefaultMaxTranscriptChars = 30000

// RedactionMarker replaces every denylisted phrase.
const RedactionMarker = "[REDACTED]"

// HazardPhrases are the names of the model's own moderation categories.
// Transcripts quoting them verbatim tend to trip false refusals.
var HazardPhrases = []string{
	"sexually explicit",
	"hate speech",
	"harassment",
	"dangerous content",
}

// Sanitizer redacts hazard phrases and caps transcript size.
type Sanitizer struct {
	Denylist []string
	Marker   string
	MaxChars int // in bytes; <= 0 disables the cap
}

// DefaultSanitizer uses HazardPhrases and DefaultMaxTranscriptChars.
var DefaultSanitizer = Sanitizer{
	Denylist: HazardPhrases,
	Marker:   RedactionMarker,
	MaxChars: DefaultMaxTranscriptChars,
}

// NewSanitizer returns DefaultSanitizer with a different size cap.
func NewSanitizer(maxChars int) Sanitizer {
	s := DefaultSanitizer
	s.MaxChars = maxChars
	return s
}

// Sanitize replaces each denylisted phrase (case-sensitive, literal) with the
// marker, then truncates to MaxChars bytes on a rune boundary.
func (s Sanitizer) Sanitize(text string) string {
	if len(s.Denylist) > 0 {
		pairs := make([]string, 0, 2*len(s.Denylist))
		for _, p := range s.Denylist {
			if p != "" {
				pairs = append(pairs, p, s.Marker)
			}
		}
		text = strings.NewReplacer(pairs...).Replace(text)
	}
	return truncateBytes(text, s.MaxChars)
}

// Sanitize runs DefaultSanitizer.
func Sanitize(text string) string {
	return DefaultSanitizer.Sanitize(text)
}

// truncateBytes cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncateBytes(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
