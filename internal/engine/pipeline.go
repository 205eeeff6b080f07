package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// pipelineSlowThreshold marks a run as slow in the logs. It sits below the
// default timeout bound of one fetch plus two summaries.
const pipelineSlowThreshold = 30 * time.Second

// Stage is a state of one pipeline run.
type Stage string

const (
	StageIdle        Stage = "idle"
	StageAwaitingURL Stage = "awaiting_url"
	StageResolving   Stage = "resolving"
	StageFetching    Stage = "fetching"
	StageFetchFailed Stage = "fetch_failed" // terminal
	StageSanitizing  Stage = "sanitizing"
	StageSummarizing Stage = "summarizing"
	StagePackaging   Stage = "packaging"
	StageDone        Stage = "done" // terminal
)

// TranscriptFetcher retrieves the caption transcript for a video URL.
// Failures are *PipelineError values.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, rawURL string) (Transcript, error)
}

// Pipeline sequences resolve → fetch → sanitize → summarize → package.
// It holds only read-only configuration, so concurrent Run calls are isolated.
type Pipeline struct {
	fetcher    TranscriptFetcher
	summarizer *Summarizer
	prompts    PromptSet
	now        func() time.Time
}

// PipelineOption customizes a Pipeline.
type PipelineOption func(*Pipeline)

// WithClock overrides the time source used for artifact names.
func WithClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// WithPrompts overrides the per-language templates.
func WithPrompts(ps PromptSet) PipelineOption {
	return func(p *Pipeline) { p.prompts = ps }
}

// NewPipeline wires the pipeline stages.
func NewPipeline(fetcher TranscriptFetcher, summarizer *Summarizer, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fetcher:    fetcher,
		summarizer: summarizer,
		prompts:    DefaultPrompts(),
		now:        time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Languages returns the summary targets in output order.
func (p *Pipeline) Languages() []Language {
	out := make([]Language, len(p.prompts.Languages))
	for i, lp := range p.prompts.Languages {
		out[i] = lp.Language
	}
	return out
}

// Run executes one request. It never returns an error: failures are reported
// in PipelineOutput.Error (short-circuit) or per summary (partial success).
func (p *Pipeline) Run(ctx context.Context, rawURL string, maxWords int) (out PipelineOutput) {
	metrics.PipelineRuns.Add(1)
	_ = TrackOperation(ctx, "pipeline", pipelineSlowThreshold, func(ctx context.Context) error {
		out = p.run(ctx, rawURL, maxWords)
		if out.Error != nil {
			return out.Error
		}
		return nil
	})
	if out.Error != nil {
		metrics.PipelineFailures.Add(1)
	}
	return out
}

func (p *Pipeline) run(ctx context.Context, rawURL string, maxWords int) PipelineOutput {
	out := PipelineOutput{Video: VideoReference{URL: rawURL}, Stage: StageIdle}
	log := slog.With(slog.String("url", rawURL))

	advance := func(s Stage) bool {
		out.Stage = s
		log.Debug("pipeline: stage", slog.String("stage", string(s)))
		if err := ctx.Err(); err != nil {
			out.Error = NewError(KindCanceled, "Request canceled.", err)
			return false
		}
		return true
	}
	fail := func(pe *PipelineError) PipelineOutput {
		out.Error = pe
		log.Warn("pipeline: failed", slog.String("stage", string(out.Stage)),
			slog.String("kind", string(pe.Kind)), slog.Any("error", pe))
		return out
	}

	if !advance(StageAwaitingURL) {
		return out
	}
	if !ValidMaxWords(maxWords) {
		return fail(NewError(KindInvalidInput,
			fmt.Sprintf("Summary length must be one of %v words.", AllowedMaxWords), nil))
	}

	if !advance(StageResolving) {
		return out
	}
	ref, ok := Resolve(rawURL)
	out.Video = ref
	if !ok {
		return fail(NewError(KindInvalidURL, MsgInvalidURL, nil))
	}
	log = log.With(slog.String("video_id", ref.ID))

	if !advance(StageFetching) {
		return out
	}
	tr, err := p.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		out.Stage = StageFetchFailed
		return fail(AsPipelineError(err))
	}
	if tr.Text == "" {
		tr.Text = JoinSegments(tr.Segments)
	}
	out.Transcript = &tr
	log.Info("pipeline: transcript fetched", slog.String("source", tr.Source),
		slog.Int("segments", len(tr.Segments)), slog.Int("chars", len(tr.Text)))

	if !advance(StageSanitizing) {
		return out
	}
	// The summarizer's sanitizer is the only one applied.
	clean := p.summarizer.sanitizer.Sanitize(tr.Text)

	if !advance(StageSummarizing) {
		return out
	}
	// Each language is independent: one failing never stops the others.
	out.Summaries = make([]SummaryResult, 0, len(p.prompts.Languages))
	for _, lp := range p.prompts.Languages {
		res := p.summarizer.summarizeClean(ctx, clean, SummaryRequest{
			Template: lp.Template,
			MaxWords: maxWords,
			Language: lp.Language,
		})
		out.Summaries = append(out.Summaries, res)
	}

	// Packaging runs even if ctx was canceled mid-summaries: the results exist.
	out.Stage = StagePackaging
	out.ShareLinks = BuildShareLinks(rawURL, shareExcerpt(out.Summaries))
	out.Artifact = BuildArtifact(ref.ID, out.Summaries, p.now())

	out.Stage = StageDone
	log.Info("pipeline: done", slog.Int("summaries", len(out.Summaries)), slog.Int("ok", countOK(out.Summaries)))
	return out
}

// shareExcerpt picks the first successful summary.
func shareExcerpt(summaries []SummaryResult) string {
	for _, s := range summaries {
		if s.OK {
			return s.Text
		}
	}
	return ""
}

func countOK(summaries []SummaryResult) int {
	n := 0
	for _, s := range summaries {
		if s.OK {
			n++
		}
	}
	return n
}

// IsCanceled reports whether the output stopped because ctx was done.
func (o PipelineOutput) IsCanceled() bool {
	return o.Error != nil && (o.Error.Kind == KindCanceled || errors.Is(o.Error, context.Canceled))
}
