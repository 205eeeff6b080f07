package engine

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fastRetry = TransportRetryConfig{
	MaxTries:        3,
	InitialInterval: time.Millisecond,
	MaxInterval:     5 * time.Millisecond,
	MaxElapsed:      time.Second,
}

// statusSequence serves the given statuses in order, then 200.
func statusSequence(t *testing.T, calls *atomic.Int32, statuses ...int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := int(calls.Add(1))
		if n <= len(statuses) {
			w.WriteHeader(statuses[n-1])
			return
		}
		io.WriteString(w, "ok") //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRetryTransport_TransientThenSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, 503, 502)
	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryTransport_GivesUpAfterThreeAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := statusSequence(t, &calls, 504, 504, 504, 504)
	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryTransport_NonTransientNotRetried(t *testing.T) {
	for _, code := range []int{http.StatusInternalServerError, http.StatusTooManyRequests, http.StatusNotFound} {
		var calls atomic.Int32
		srv := statusSequence(t, &calls, code)
		client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}

		resp, err := client.Get(srv.URL)
		require.NoError(t, err)
		resp.Body.Close()

		assert.Equal(t, code, resp.StatusCode)
		assert.EqualValues(t, 1, calls.Load(), "status %d", code)
	}
}

func TestRetryTransport_ReplaysBody(t *testing.T) {
	var calls atomic.Int32
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}

	resp, err := client.Post(srv.URL, "application/json", strings.NewReader(`{"a":1}`))
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, []string{`{"a":1}`, `{"a":1}`}, bodies)
}

func TestRetryTransport_NetworkErrorNotRetried(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	addr := srv.URL
	srv.Close()

	client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}
	_, err := client.Get(addr)
	assert.Error(t, err)
}

func TestProxyFunc(t *testing.T) {
	fn, err := proxyFunc("", "")
	require.NoError(t, err)
	assert.Nil(t, fn)

	fn, err = proxyFunc("http://proxy-a:3128", "http://proxy-b:3128")
	require.NoError(t, err)
	httpReq := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	httpsReq := httptest.NewRequest(http.MethodGet, "https://example.com", nil)

	u, _ := fn(httpReq)
	assert.Equal(t, "proxy-a:3128", u.Host)
	u, _ = fn(httpsReq)
	assert.Equal(t, "proxy-b:3128", u.Host)

	// One proxy serves both schemes.
	fn, err = proxyFunc("", "http://only:8080")
	require.NoError(t, err)
	u, _ = fn(httpReq)
	assert.Equal(t, "only:8080", u.Host)
}

func TestNewHTTPClient(t *testing.T) {
	c := DefaultConfig()
	hc, err := NewHTTPClient(c)
	require.NoError(t, err)
	assert.Equal(t, c.FetchTimeout, hc.Timeout)
	assert.IsType(t, &RetryTransport{}, hc.Transport)

	c.HTTPProxyURL = "://bad"
	_, err = NewHTTPClient(c)
	assert.Error(t, err)
}

func TestSetBrowserHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://www.youtube.com/watch?v=x", nil)
	SetBrowserHeaders(req)

	ua := req.Header.Get("User-Agent")
	assert.NotEmpty(t, ua)
	assert.Greater(t, len(ua), 20)
	assert.NotEmpty(t, req.Header.Get("Accept"))
}

func TestSetBrowserHeaders_KeepsTransparentGzip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "https://www.youtube.com/", nil)
	SetBrowserHeaders(req)
	assert.Empty(t, req.Header.Get("Accept-Encoding"))
}
