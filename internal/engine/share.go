package engine

import "net/url"

// ShareExcerptRunes caps the summary excerpt before encoding.
const ShareExcerptRunes = 200

// Share platforms, used as map keys.
const (
	PlatformTwitter  = "Twitter"
	PlatformFacebook = "Facebook"
	PlatformLinkedIn = "LinkedIn"
)

// BuildShareLinks returns share-intent URLs for the video, keyed by platform.
// The excerpt is optional and only Twitter carries it. Empty videoURL yields
// an empty map.
func BuildShareLinks(videoURL, excerpt string) map[string]string {
	links := make(map[string]string, 3)
	if videoURL == "" {
		return links
	}
	u := url.QueryEscape(videoURL)

	tweet := "https://twitter.com/intent/tweet?url=" + u
	if excerpt != "" {
		tweet += "&text=" + url.QueryEscape(TruncateRunes(excerpt, ShareExcerptRunes, "…"))
	}
	links[PlatformTwitter] = tweet
	links[PlatformFacebook] = "https://www.facebook.com/sharer/sharer.php?u=" + u
	links[PlatformLinkedIn] = "https://www.linkedin.com/sharing/share-offsite/?url=" + u
	return links
}
