package engine

import (
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/net/html"
)

// User-Agent strings used across HTTP clients.
const (
	UserAgentBot    = "GoVidsum/1.0"
	UserAgentChrome = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
)

// CleanCaption turns one caption line into plain text: inline tags dropped,
// entities decoded (timed-text XML double-escapes them), whitespace collapsed.
// Tags are stripped before the second decode so an escaped "<" stays text.
func CleanCaption(s string) string {
	if s == "" {
		return ""
	}
	var sb strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.Join(strings.Fields(sb.String()), " ")
		case html.TextToken:
			// Text() decodes one level; "&amp;#39;" needs a second.
			sb.WriteString(html.UnescapeString(string(z.Text())))
			sb.WriteByte(' ')
		}
	}
}

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Devanagari, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}
