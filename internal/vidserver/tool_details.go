package vidserver

import (
	"context"
	"errors"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoDetails(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_details",
		Description: "Get display metadata for a YouTube video: title, channel, views, subscribers, likes and thumbnail URL. Fields the API cannot provide are \"N/A\".",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, videoDetailsHandler(d))
}

func videoDetailsHandler(d Deps) func(context.Context, *mcp.CallToolRequest, VideoDetailsInput) (*mcp.CallToolResult, sources.VideoDetails, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input VideoDetailsInput) (*mcp.CallToolResult, sources.VideoDetails, error) {
		if input.URL == "" {
			return nil, sources.VideoDetails{}, errors.New("url is required")
		}
		det, ok := detailsFor(ctx, d.Details, input.URL)
		if !ok {
			return nil, sources.VideoDetails{}, errors.New(engine.MsgInvalidURL)
		}
		return nil, det, nil
	}
}

// detailsFor resolves the URL and fetches metadata; ok is false for an unrecognized URL.
func detailsFor(ctx context.Context, dc *sources.DetailsClient, rawURL string) (sources.VideoDetails, bool) {
	ref, ok := engine.Resolve(rawURL)
	if !ok {
		return sources.VideoDetails{}, false
	}
	return dc.Details(ctx, ref.ID), true
}

func registerShareLinks(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "share_links",
		Description: "Build share-intent URLs for Twitter, Facebook and LinkedIn. An optional text excerpt is attached to the Twitter link only.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, shareLinksHandler)
}

func shareLinksHandler(_ context.Context, _ *mcp.CallToolRequest, input ShareLinksInput) (*mcp.CallToolResult, ShareLinksOutput, error) {
	if input.URL == "" {
		return nil, ShareLinksOutput{}, errors.New("url is required")
	}
	return nil, ShareLinksOutput{URL: input.URL, Links: engine.BuildShareLinks(input.URL, input.Text)}, nil
}
