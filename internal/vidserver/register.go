package vidserver

import (
	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Deps are the long-lived components the tools share.
type Deps struct {
	Pipeline        *engine.Pipeline
	Details         *sources.DetailsClient // may be disabled
	DefaultMaxWords int
}

// RegisterTools registers the video tools on the given MCP server:
// video_summary, video_details, share_links.
func RegisterTools(server *mcp.Server, d Deps) {
	registerVideoSummary(server, d)
	registerVideoDetails(server, d)
	registerShareLinks(server)
}
