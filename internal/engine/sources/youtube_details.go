package sources

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// NotAvailable fills details the API did not return.
const NotAvailable = "N/A"

// zeroViews is reported when the video lookup fails or finds nothing.
const zeroViews = "0"

// VideoDetails is display-only metadata about a video.
type VideoDetails struct {
	VideoID     string `json:"video_id"`
	Title       string `json:"title,omitempty"`
	Channel     string `json:"channel"`
	Views       string `json:"views"`
	Subscribers string `json:"subscribers"`
	Likes       string `json:"likes"`
	Thumbnail   string `json:"thumbnail"`
	Error       string `json:"error,omitempty"`
}

func unavailableDetails(videoID string) VideoDetails {
	return VideoDetails{
		VideoID:     videoID,
		Channel:     NotAvailable,
		Views:       NotAvailable,
		Subscribers: NotAvailable,
		Likes:       NotAvailable,
		Thumbnail:   engine.ThumbnailURL(videoID),
	}
}

// DetailsClient reads channel and statistics via YouTube Data API v3.
// A nil service (no API key) yields "N/A" everywhere.
type DetailsClient struct {
	svc *youtube.Service
}

// NewDetailsClient creates the Data API client. Requests go through
// httpClient's transport with the key attached as a query parameter.
// An empty apiKey returns a client that only reports "N/A".
func NewDetailsClient(ctx context.Context, apiKey string, httpClient *http.Client, opts ...option.ClientOption) (*DetailsClient, error) {
	if apiKey == "" {
		return &DetailsClient{}, nil
	}
	var base http.RoundTripper
	if httpClient != nil {
		base = httpClient.Transport
	}
	hc := &http.Client{Transport: &transport.APIKey{Key: apiKey, Transport: base}}
	if httpClient != nil {
		hc.Timeout = httpClient.Timeout
	}
	opts = append([]option.ClientOption{option.WithHTTPClient(hc)}, opts...)
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("youtube data API: %w", err)
	}
	return &DetailsClient{svc: svc}, nil
}

// Enabled reports whether an API key was configured.
func (c *DetailsClient) Enabled() bool { return c != nil && c.svc != nil }

// Details returns channel name, views, subscribers and likes for a video.
// Failures degrade to "N/A" fields with Error set; it never returns an error.
func (c *DetailsClient) Details(ctx context.Context, videoID string) VideoDetails {
	out := unavailableDetails(videoID)
	if !c.Enabled() {
		return out
	}
	engine.IncrMetadataRequests()

	resp, err := c.svc.Videos.List([]string{"snippet", "statistics"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		slog.Warn("youtube: video details failed", slog.String("id", videoID), slog.Any("err", err))
		out.Error = "Error fetching video details: " + err.Error()
		out.Views = zeroViews
		return out
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		out.Channel = "Channel information unavailable"
		out.Views = zeroViews
		return out
	}

	v := resp.Items[0]
	out.Title = v.Snippet.Title
	out.Channel = v.Snippet.ChannelTitle
	if st := v.Statistics; st != nil {
		out.Views = humanize.Comma(int64(st.ViewCount))
		if st.LikeCount > 0 {
			out.Likes = humanize.Comma(int64(st.LikeCount))
		}
	}

	if v.Snippet.ChannelId == "" {
		return out
	}
	chResp, err := c.svc.Channels.List([]string{"statistics"}).Id(v.Snippet.ChannelId).Context(ctx).Do()
	if err != nil {
		slog.Warn("youtube: channel details failed", slog.String("channel", v.Snippet.ChannelId), slog.Any("err", err))
		return out
	}
	if len(chResp.Items) > 0 && chResp.Items[0].Statistics != nil {
		st := chResp.Items[0].Statistics
		if !st.HiddenSubscriberCount {
			out.Subscribers = humanize.Comma(int64(st.SubscriberCount))
		}
	}
	return out
}
