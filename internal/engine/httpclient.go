package engine

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// TransportRetryConfig governs the retrying transport: 3 attempts total,
// exponential backoff, only on 502/503/504.
type TransportRetryConfig struct {
	MaxTries        uint
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
}

// DefaultTransportRetry is used by NewHTTPClient.
var DefaultTransportRetry = TransportRetryConfig{
	MaxTries:        3,
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     5 * time.Second,
	MaxElapsed:      30 * time.Second,
}

// NewHTTPClient builds the shared outbound client: optional proxy plus a
// transport that retries transient server errors.
func NewHTTPClient(c Config) (*http.Client, error) {
	proxy, err := proxyFunc(c.HTTPProxyURL, c.HTTPSProxyURL)
	if err != nil {
		return nil, err
	}
	base := &http.Transport{
		Proxy:               proxy,
		MaxIdleConns:        20,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     60 * time.Second,
		TLSHandshakeTimeout: 15 * time.Second,
	}
	timeout := c.FetchTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: NewRetryTransport(base, DefaultTransportRetry),
	}, nil
}

// proxyFunc picks the proxy by request scheme. Empty URLs mean direct connection.
func proxyFunc(httpProxy, httpsProxy string) (func(*http.Request) (*url.URL, error), error) {
	if httpProxy == "" && httpsProxy == "" {
		return nil, nil
	}
	var hp, hsp *url.URL
	var err error
	if httpProxy != "" {
		if hp, err = url.Parse(httpProxy); err != nil {
			return nil, fmt.Errorf("parse HTTP proxy: %w", err)
		}
	}
	if httpsProxy != "" {
		if hsp, err = url.Parse(httpsProxy); err != nil {
			return nil, fmt.Errorf("parse HTTPS proxy: %w", err)
		}
	}
	if hsp == nil {
		hsp = hp
	}
	if hp == nil {
		hp = hsp
	}
	return func(r *http.Request) (*url.URL, error) {
		if r.URL.Scheme == "https" {
			return hsp, nil
		}
		return hp, nil
	}, nil
}

// RetryTransport is an http.RoundTripper that replays requests answered
// with 502/503/504.
type RetryTransport struct {
	next http.RoundTripper
	rc   TransportRetryConfig
}

// NewRetryTransport wraps next. A nil next uses http.DefaultTransport.
func NewRetryTransport(next http.RoundTripper, rc TransportRetryConfig) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if rc.MaxTries == 0 {
		rc.MaxTries = 1
	}
	return &RetryTransport{next: next, rc: rc}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	attempt := 0

	operation := func() (*http.Response, error) {
		attempt++
		r, err := cloneRequest(req, attempt)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := t.next.RoundTrip(r)
		if err != nil {
			// Only status codes are retried; dial and TLS failures surface at once.
			return nil, backoff.Permanent(err)
		}
		if IsTransientStatus(resp.StatusCode) && uint(attempt) < t.rc.MaxTries {
			io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // drain for reuse
			resp.Body.Close()
			metrics.TransportRetries.Add(1)
			slog.Debug("transport: transient status, retrying",
				slog.String("host", req.URL.Host), slog.Int("status", resp.StatusCode), slog.Int("attempt", attempt))
			return nil, &transientStatusError{StatusCode: resp.StatusCode}
		}
		return resp, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = t.rc.InitialInterval
	bo.MaxInterval = t.rc.MaxInterval

	return backoff.Retry(ctx, operation,
		backoff.WithBackOff(bo),
		backoff.WithMaxTries(t.rc.MaxTries),
		backoff.WithMaxElapsedTime(t.rc.MaxElapsed),
	)
}

// cloneRequest prepares req for another attempt, rewinding the body.
func cloneRequest(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 || req.Body == nil || req.Body == http.NoBody {
		return req, nil
	}
	if req.GetBody == nil {
		return nil, fmt.Errorf("retry %s %s: request body cannot be replayed", req.Method, req.URL)
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	r := req.Clone(req.Context())
	r.Body = body
	return r, nil
}

// transientStatusError marks a retryable HTTP status code.
type transientStatusError struct {
	StatusCode int
}

func (e *transientStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, http.StatusText(e.StatusCode))
}
