package engine

import "testing"

func TestCleanCaption(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "hello world", "hello world"},
		{"double escaped apostrophe", "it&amp;#39;s fine", "it's fine"},
		{"single escaped", "rock &amp; roll", "rock & roll"},
		{"font tag", `<font color="#E5E5E5">hi</font> there`, "hi there"},
		{"newlines", "line one\nline  two\t", "line one line two"},
		{"escaped lt before word", "if x &lt;y then", "if x <y then"},
		{"escaped lt between words", "a&lt;b", "a<b"},
		{"escaped lt spaced", "5 &lt; 6", "5 < 6"},
		{"double escaped lt", "a&amp;lt;b", "a<b"},
		{"escaped tag stays text", "&lt;b&gt;bold&lt;/b&gt;", "<b>bold</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCaption(tt.in); got != tt.want {
				t.Errorf("CleanCaption(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	if got := TruncateRunes("नमस्ते दुनिया", 3, ""); got != "नमस" {
		t.Errorf("TruncateRunes = %q", got)
	}
	if got := TruncateRunes("short", 10, "…"); got != "short" {
		t.Errorf("TruncateRunes no-op = %q", got)
	}
}
