package engine

import (
	"fmt"
	"strings"
	"time"
)

// ArtifactMIMEType is the content type of the downloadable summary file.
const ArtifactMIMEType = "text/plain"

// BuildArtifactText renders the summaries as one plain-text document:
//
//	# English Summary
//
//	<text>
//
//	# Hindi Summary
//	<text>
func BuildArtifactText(summaries []SummaryResult) string {
	var sb strings.Builder
	for i, s := range summaries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "# %s Summary\n", s.Language.Name)
		if i == 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(s.Text)
	}
	return sb.String()
}

// BuildArtifact packages the summaries in memory under a per-request name,
// so concurrent runs never share a file.
func BuildArtifact(videoID string, summaries []SummaryResult, now time.Time) *Artifact {
	id := videoID
	if id == "" {
		id = "video"
	}
	return &Artifact{
		Filename: fmt.Sprintf("summary_%s_%d.txt", id, now.UnixNano()),
		MIMEType: ArtifactMIMEType,
		Data:     []byte(BuildArtifactText(summaries)),
	}
}
