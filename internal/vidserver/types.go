package vidserver

import (
	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
)

// --- video_summary ---

type VideoSummaryInput struct {
	URL            string `json:"url" jsonschema:"YouTube video URL (youtube.com/watch?v=..., m.youtube.com or youtu.be)"`
	MaxWords       int    `json:"max_words,omitempty" jsonschema:"Summary length in words: 100, 200, 300, 400 or 500 (default: 300)"`
	IncludeDetails bool   `json:"include_details,omitempty" jsonschema:"Also return channel, views, subscribers and likes (needs YOUTUBE_API_KEY)"`
}

type VideoSummaryOutput struct {
	Video            engine.VideoReference  `json:"video"`
	Stage            engine.Stage           `json:"stage"`
	Error            *engine.PipelineError  `json:"error,omitempty"`
	TranscriptSource string                 `json:"transcript_source,omitempty"`
	TranscriptChars  int                    `json:"transcript_chars,omitempty"`
	Summaries        []engine.SummaryResult `json:"summaries,omitempty"`
	ShareLinks       map[string]string      `json:"share_links,omitempty"`
	Artifact         *ArtifactOutput        `json:"artifact,omitempty"`
	Details          *sources.VideoDetails  `json:"details,omitempty"`
}

// ArtifactOutput is the downloadable file inlined as text.
type ArtifactOutput struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Text     string `json:"text"`
}

func newVideoSummaryOutput(run engine.PipelineOutput) VideoSummaryOutput {
	out := VideoSummaryOutput{
		Video:      run.Video,
		Stage:      run.Stage,
		Error:      run.Error,
		Summaries:  run.Summaries,
		ShareLinks: run.ShareLinks,
	}
	if run.Transcript != nil {
		out.TranscriptSource = run.Transcript.Source
		out.TranscriptChars = len(run.Transcript.Text)
	}
	if a := run.Artifact; a != nil {
		out.Artifact = &ArtifactOutput{Filename: a.Filename, MIMEType: a.MIMEType, Text: string(a.Data)}
	}
	return out
}

// --- video_details ---

type VideoDetailsInput struct {
	URL string `json:"url" jsonschema:"YouTube video URL"`
}

// --- share_links ---

type ShareLinksInput struct {
	URL  string `json:"url" jsonschema:"URL to share"`
	Text string `json:"text,omitempty" jsonschema:"Optional excerpt, carried only by the Twitter link"`
}

type ShareLinksOutput struct {
	URL   string            `json:"url"`
	Links map[string]string `json:"links"`
}
