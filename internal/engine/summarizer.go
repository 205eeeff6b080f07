package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Summarizer turns a transcript into a word-bounded summary.
// It never returns an error: every failure becomes a diagnostic SummaryResult.
type Summarizer struct {
	gen       Generator
	sanitizer Sanitizer
	retry     RetryConfig
	limiter   *rate.Limiter
	timeout   time.Duration
}

// SummarizerOption customizes a Summarizer.
type SummarizerOption func(*Summarizer)

// WithRetryConfig overrides the rate-limit retry policy (tests pass a fake Sleep).
func WithRetryConfig(rc RetryConfig) SummarizerOption {
	return func(s *Summarizer) { s.retry = rc }
}

// WithSanitizer overrides the transcript sanitizer.
func WithSanitizer(san Sanitizer) SummarizerOption {
	return func(s *Summarizer) { s.sanitizer = san }
}

// WithRequestsPerMinute caps outbound generate calls. rpm <= 0 disables the cap.
func WithRequestsPerMinute(rpm int) SummarizerOption {
	return func(s *Summarizer) {
		if rpm <= 0 {
			s.limiter = nil
			return
		}
		s.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
	}
}

// WithCallTimeout bounds each generate call.
func WithCallTimeout(d time.Duration) SummarizerOption {
	return func(s *Summarizer) { s.timeout = d }
}

// NewSummarizer builds a Summarizer over gen.
func NewSummarizer(gen Generator, opts ...SummarizerOption) *Summarizer {
	s := &Summarizer{
		gen:       gen,
		sanitizer: DefaultSanitizer,
		retry:     RateLimitRetryConfig,
	}
	for _, o := range opts {
		o(s)
	}
	s.retry.Retryable = IsRateLimited
	return s
}

// Summarize builds the prompt and calls the model, retrying only on rate limits.
func (s *Summarizer) Summarize(ctx context.Context, transcript string, req SummaryRequest) SummaryResult {
	return s.summarizeClean(ctx, s.sanitizer.Sanitize(transcript), req)
}

// summarizeClean is Summarize for text already passed through s.sanitizer.
func (s *Summarizer) summarizeClean(ctx context.Context, clean string, req SummaryRequest) SummaryResult {
	prompt := BuildPrompt(req.Template, clean, req.MaxWords)
	log := slog.With(slog.String("lang", req.Language.Code), slog.Int("max_words", req.MaxWords))

	attempts := 0
	text, err := RetryDo(ctx, s.retry, func() (string, error) {
		attempts++
		return s.generate(ctx, prompt)
	})
	if err == nil {
		log.Debug("summary generated", slog.Int("attempts", attempts), slog.Int("chars", len(text)))
		return SummaryResult{Language: req.Language, Text: text, OK: true}
	}

	res := SummaryResult{Language: req.Language}
	switch {
	case errors.Is(err, ErrNoCandidates):
		metrics.LLMBlocked.Add(1)
		res.Kind = KindContentBlocked
		res.Text = MsgContentBlocked
	case IsRateLimited(err):
		res.Kind = KindRateLimited
		res.Text = fmt.Sprintf("Rate limit exceeded after %d attempts. Please try again later.", attempts)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		res.Kind = KindCanceled
		res.Text = "Summary generation was canceled: " + err.Error()
	default:
		res.Kind = KindUnknown
		res.Text = "An error occurred while generating the summary: " + err.Error()
	}
	log.Warn("summary failed", slog.String("kind", string(res.Kind)), slog.Int("attempts", attempts), slog.Any("error", err))
	return res
}

// generate performs one model call under the limiter and per-call timeout.
func (s *Summarizer) generate(ctx context.Context, prompt string) (out string, err error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			// The next slot falls after the deadline.
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
	}
	callCtx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	metrics.LLMCalls.Add(1)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("generator panic: %v", r)
		}
		if err != nil {
			metrics.LLMErrors.Add(1)
			if IsRateLimited(err) {
				metrics.LLMRateLimited.Add(1)
			}
		}
	}()
	out, err = s.gen.Generate(callCtx, prompt)
	if err == nil && strings.TrimSpace(out) == "" {
		err = ErrNoCandidates
	}
	return out, err
}

// withTimeout applies d to ctx when d > 0.
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
