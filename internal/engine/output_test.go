package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildArtifactText(t *testing.T) {
	got := BuildArtifactText([]SummaryResult{
		{Language: LangPrimary, Text: "English text", OK: true},
		{Language: LangSecondary, Text: "हिंदी पाठ", OK: true},
	})
	assert.Equal(t, "# English Summary\n\nEnglish text\n\n# Hindi Summary\nहिंदी पाठ", got)
}

func TestBuildArtifactText_Diagnostics(t *testing.T) {
	got := BuildArtifactText([]SummaryResult{
		{Language: LangPrimary, Text: "ok", OK: true},
		{Language: LangSecondary, Text: MsgContentBlocked, Kind: KindContentBlocked},
	})
	assert.Contains(t, got, "# Hindi Summary\n"+MsgContentBlocked)
}

func TestBuildArtifact(t *testing.T) {
	now := time.Unix(1700000000, 42)
	a := BuildArtifact("abc123", []SummaryResult{{Language: LangPrimary, Text: "x", OK: true}}, now)

	assert.Equal(t, "summary_abc123_1700000000000000042.txt", a.Filename)
	assert.Equal(t, ArtifactMIMEType, a.MIMEType)
	assert.True(t, strings.HasPrefix(string(a.Data), "# English Summary\n\nx"))
}

func TestBuildArtifact_UniqueNames(t *testing.T) {
	t0 := time.Unix(1700000000, 0)
	a := BuildArtifact("abc123", nil, t0)
	b := BuildArtifact("abc123", nil, t0.Add(time.Nanosecond))
	assert.NotEqual(t, a.Filename, b.Filename)

	assert.True(t, strings.HasPrefix(BuildArtifact("", nil, t0).Filename, "summary_video_"))
}
