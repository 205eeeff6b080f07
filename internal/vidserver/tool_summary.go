package vidserver

import (
	"context"
	"errors"
	"log/slog"

	"github.com/anatolykoptev/go_vidsum/internal/toolutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerVideoSummary(server *mcp.Server, d Deps) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "video_summary",
		Description: "Summarize a YouTube video from its captions. Fetches the transcript, redacts hazard phrases, and returns an English and a Hindi summary of the chosen length, share links (Twitter, Facebook, LinkedIn), and a plain-text file with both summaries. Each language succeeds or fails on its own.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, videoSummaryHandler(d))
}

func videoSummaryHandler(d Deps) func(context.Context, *mcp.CallToolRequest, VideoSummaryInput) (*mcp.CallToolResult, VideoSummaryOutput, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, input VideoSummaryInput) (*mcp.CallToolResult, VideoSummaryOutput, error) {
		if input.URL == "" {
			return nil, VideoSummaryOutput{}, errors.New("url is required")
		}
		if d.Pipeline == nil {
			return nil, VideoSummaryOutput{}, errors.New("pipeline not configured")
		}
		maxWords := toolutil.NormMaxWords(input.MaxWords, d.DefaultMaxWords)

		run := d.Pipeline.Run(ctx, input.URL, maxWords)
		out := newVideoSummaryOutput(run)

		if run.Error != nil {
			return &mcp.CallToolResult{
				IsError: true,
				Content: []mcp.Content{&mcp.TextContent{Text: run.Error.Message}},
			}, out, nil
		}

		if input.IncludeDetails && d.Details.Enabled() {
			det := d.Details.Details(ctx, run.Video.ID)
			out.Details = &det
		}

		content := []mcp.Content{&mcp.TextContent{Text: toolutil.RenderOutput(run)}}
		if res := toolutil.ArtifactResource(run.Artifact); res != nil {
			content = append(content, res)
		}
		slog.Debug("video_summary: done", slog.String("video_id", run.Video.ID),
			slog.Int("summaries", len(run.Summaries)))
		return &mcp.CallToolResult{Content: content}, out, nil
	}
}
