package engine

import (
	"net/url"
	"strings"
)

// Hosts that carry the video id in the "v" query parameter.
var longFormHosts = map[string]bool{
	"youtube.com":     true,
	"www.youtube.com": true,
	"m.youtube.com":   true,
}

// Hosts that carry the video id as the first path segment.
var shortLinkHosts = map[string]bool{
	"youtu.be": true,
}

// Resolve extracts the video identifier from a YouTube URL.
// ok is false for unrecognized hosts, malformed URLs, and URLs without an id.
func Resolve(rawURL string) (VideoReference, bool) {
	ref := VideoReference{URL: rawURL}
	s := strings.TrimSpace(rawURL)
	if s == "" {
		return ref, false
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return ref, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ref, false
	}

	host := strings.ToLower(u.Hostname())
	switch {
	case longFormHosts[host]:
		ref.ID = u.Query().Get("v")
	case shortLinkHosts[host]:
		ref.ID, _, _ = strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
	}
	return ref, ref.ID != ""
}

// CanonicalURL returns the long-form watch URL for a video id.
func CanonicalURL(id string) string {
	return "https://www.youtube.com/watch?v=" + url.QueryEscape(id)
}

// ThumbnailURL returns the default thumbnail image for a video id.
func ThumbnailURL(id string) string {
	return "https://img.youtube.com/vi/" + url.PathEscape(id) + "/0.jpg"
}
