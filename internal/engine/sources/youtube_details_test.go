package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
)

func newDetailsServer(t *testing.T, videos, channels string) (*httptest.Server, *[]string) {
	t.Helper()
	var keys []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		keys = append(keys, r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/videos"):
			w.Write([]byte(videos)) //nolint:errcheck
		case strings.HasSuffix(r.URL.Path, "/channels"):
			w.Write([]byte(channels)) //nolint:errcheck
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, &keys
}

func TestDetails(t *testing.T) {
	srv, keys := newDetailsServer(t,
		`{"items":[{"id":"abc123","snippet":{"title":"Talk","channelTitle":"Go Channel","channelId":"UC1"},`+
			`"statistics":{"viewCount":"1234567","likeCount":"8900"}}]}`,
		`{"items":[{"id":"UC1","statistics":{"subscriberCount":"42000","hiddenSubscriberCount":false}}]}`)

	dc, err := NewDetailsClient(context.Background(), "test-key", srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)
	require.True(t, dc.Enabled())

	d := dc.Details(context.Background(), "abc123")
	assert.Equal(t, "Talk", d.Title)
	assert.Equal(t, "Go Channel", d.Channel)
	assert.Equal(t, "1,234,567", d.Views)
	assert.Equal(t, "8,900", d.Likes)
	assert.Equal(t, "42,000", d.Subscribers)
	assert.Equal(t, "https://img.youtube.com/vi/abc123/0.jpg", d.Thumbnail)
	assert.Empty(t, d.Error)
	for _, k := range *keys {
		assert.Equal(t, "test-key", k)
	}
}

func TestDetails_HiddenSubscribersAndNoLikes(t *testing.T) {
	srv, _ := newDetailsServer(t,
		`{"items":[{"id":"abc123","snippet":{"channelTitle":"C","channelId":"UC1"},"statistics":{"viewCount":"5"}}]}`,
		`{"items":[{"id":"UC1","statistics":{"subscriberCount":"0","hiddenSubscriberCount":true}}]}`)

	dc, err := NewDetailsClient(context.Background(), "k", srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	d := dc.Details(context.Background(), "abc123")
	assert.Equal(t, "5", d.Views)
	assert.Equal(t, NotAvailable, d.Likes)
	assert.Equal(t, NotAvailable, d.Subscribers)
}

func TestDetails_NoItems(t *testing.T) {
	srv, _ := newDetailsServer(t, `{"items":[]}`, `{"items":[]}`)
	dc, err := NewDetailsClient(context.Background(), "k", srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	d := dc.Details(context.Background(), "missing")
	assert.Equal(t, "Channel information unavailable", d.Channel)
	assert.Equal(t, "0", d.Views)
	assert.Equal(t, NotAvailable, d.Subscribers)
	assert.Equal(t, NotAvailable, d.Likes)
}

func TestDetails_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"quota exceeded"}}`, http.StatusForbidden)
	}))
	defer srv.Close()
	dc, err := NewDetailsClient(context.Background(), "k", srv.Client(), option.WithEndpoint(srv.URL+"/"))
	require.NoError(t, err)

	d := dc.Details(context.Background(), "abc123")
	assert.Equal(t, NotAvailable, d.Channel)
	assert.Equal(t, "0", d.Views)
	assert.True(t, strings.HasPrefix(d.Error, "Error fetching video details: "))
}

func TestDetails_Disabled(t *testing.T) {
	dc, err := NewDetailsClient(context.Background(), "", nil)
	require.NoError(t, err)
	assert.False(t, dc.Enabled())

	d := dc.Details(context.Background(), "abc123")
	assert.Equal(t, NotAvailable, d.Channel)
	assert.Equal(t, NotAvailable, d.Views)
	assert.Equal(t, NotAvailable, d.Subscribers)
	assert.Equal(t, NotAvailable, d.Likes)
	assert.NotEmpty(t, d.Thumbnail)

	var nilClient *DetailsClient
	assert.False(t, nilClient.Enabled())
}
