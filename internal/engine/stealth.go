package engine

import (
	"net/http"
	"strings"

	stealth "github.com/anatolykoptev/go-stealth"
)

// SetBrowserHeaders makes req look like a desktop Chrome navigation with a
// rotated User-Agent. Headers already set on req are overwritten.
// Accept-Encoding is left to net/http so responses are decompressed.
func SetBrowserHeaders(req *http.Request) {
	for k, v := range stealth.ChromeHeaders() {
		if strings.EqualFold(k, "accept-encoding") {
			continue
		}
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", stealth.RandomUserAgent())
}
