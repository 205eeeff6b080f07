package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	PipelineRuns        atomic.Int64
	PipelineFailures    atomic.Int64
	TranscriptRequests  atomic.Int64
	TranscriptFallbacks atomic.Int64
	TranscriptErrors    atomic.Int64
	TransportRetries    atomic.Int64
	LLMCalls            atomic.Int64
	LLMErrors           atomic.Int64
	LLMRateLimited      atomic.Int64
	LLMBlocked          atomic.Int64
	MetadataRequests    atomic.Int64
}

// GetMetrics returns a snapshot of all metrics.
func GetMetrics() map[string]int64 {
	return map[string]int64{
		"pipeline_runs":        metrics.PipelineRuns.Load(),
		"pipeline_failures":    metrics.PipelineFailures.Load(),
		"transcript_requests":  metrics.TranscriptRequests.Load(),
		"transcript_fallbacks": metrics.TranscriptFallbacks.Load(),
		"transcript_errors":    metrics.TranscriptErrors.Load(),
		"transport_retries":    metrics.TransportRetries.Load(),
		"llm_calls":            metrics.LLMCalls.Load(),
		"llm_errors":           metrics.LLMErrors.Load(),
		"llm_rate_limited":     metrics.LLMRateLimited.Load(),
		"llm_blocked":          metrics.LLMBlocked.Load(),
		"metadata_requests":    metrics.MetadataRequests.Load(),
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"pipeline_runs", "pipeline_failures",
		"transcript_requests", "transcript_fallbacks", "transcript_errors",
		"transport_retries",
		"llm_calls", "llm_errors", "llm_rate_limited", "llm_blocked",
		"metadata_requests",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sources/ sub-package.
func IncrTranscriptRequests()  { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptFallbacks() { metrics.TranscriptFallbacks.Add(1) }
func IncrTranscriptErrors()    { metrics.TranscriptErrors.Add(1) }
func IncrMetadataRequests()    { metrics.MetadataRequests.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
