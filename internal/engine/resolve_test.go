package engine

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		url    string
		wantID string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=abc123", "abc123", true},
		{"http://www.youtube.com/watch?feature=share&v=abc123", "abc123", true},
		{"https://youtu.be/abc123", "abc123", true},
		{"https://youtu.be/abc123?t=10", "abc123", true},
		{"youtu.be/abc123", "abc123", true},
		{"www.youtube.com/watch?v=abc123", "abc123", true},
		{"https://WWW.YOUTUBE.COM/watch?v=abc123", "abc123", true},
		{"https://www.youtube.com/watch", "", false},
		{"https://www.youtube.com/watch?v=", "", false},
		{"https://youtu.be/", "", false},
		{"https://vimeo.com/12345", "", false},
		{"https://notyoutube.com/watch?v=abc123", "", false},
		{"ftp://youtube.com/watch?v=abc123", "", false},
		{"", "", false},
		{"   ", "", false},
		{"not a url", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			ref, ok := Resolve(tt.url)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.url, ok, tt.wantOK)
			}
			if ref.ID != tt.wantID {
				t.Errorf("Resolve(%q) id = %q, want %q", tt.url, ref.ID, tt.wantID)
			}
			if ref.URL != tt.url {
				t.Errorf("Resolve(%q) url = %q, want input preserved", tt.url, ref.URL)
			}
		})
	}
}

func TestCanonicalAndThumbnailURL(t *testing.T) {
	if got := CanonicalURL("abc123"); got != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("CanonicalURL = %q", got)
	}
	if got := ThumbnailURL("abc123"); got != "https://img.youtube.com/vi/abc123/0.jpg" {
		t.Errorf("ThumbnailURL = %q", got)
	}
	ref, ok := Resolve(CanonicalURL("dQw4w9WgXcQ"))
	if !ok || ref.ID != "dQw4w9WgXcQ" {
		t.Errorf("canonical URL does not resolve back: %+v %v", ref, ok)
	}
}
