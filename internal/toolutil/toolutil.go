// Package toolutil provides shared helpers for go_vidsum MCP tools.
package toolutil

import (
	"fmt"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NormMaxWords normalises a max_words field: zero → def.
// Out-of-set values pass through so the pipeline can reject them.
func NormMaxWords(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

// ArtifactURI is the resource URI an artifact is exposed under.
func ArtifactURI(a *engine.Artifact) string {
	return "vidsum://artifacts/" + a.Filename
}

// ArtifactResource wraps the in-memory artifact as an embedded MCP resource.
// Returns nil when there is no artifact.
func ArtifactResource(a *engine.Artifact) *mcp.EmbeddedResource {
	if a == nil {
		return nil
	}
	return &mcp.EmbeddedResource{
		Resource: &mcp.ResourceContents{
			URI:      ArtifactURI(a),
			MIMEType: a.MIMEType,
			Text:     string(a.Data),
		},
	}
}

// RenderOutput formats a pipeline run as markdown for the tool's text content.
func RenderOutput(out engine.PipelineOutput) string {
	if out.Error != nil {
		return out.Error.Message
	}
	var sb strings.Builder
	if out.Video.ID != "" {
		fmt.Fprintf(&sb, "[![thumbnail](%s)](%s)\n\n", engine.ThumbnailURL(out.Video.ID), engine.CanonicalURL(out.Video.ID))
	}
	for _, s := range out.Summaries {
		fmt.Fprintf(&sb, "## %s Summary\n\n%s\n\n", s.Language.Name, s.Text)
	}
	if len(out.ShareLinks) > 0 {
		sb.WriteString("**Share:**")
		for _, p := range []string{engine.PlatformTwitter, engine.PlatformFacebook, engine.PlatformLinkedIn} {
			if u, ok := out.ShareLinks[p]; ok {
				fmt.Fprintf(&sb, " [%s](%s)", p, u)
			}
		}
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}
