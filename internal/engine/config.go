package engine

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
)

// Config holds all engine configuration, injected from main.
// It is read-only once the pipeline is built.
type Config struct {
	LLMProvider        string // "gemini" (default) or "openai"
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string // OpenAI-compatible base, used when LLMProvider == "openai"
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMRequestsPerMin  int           // 0 = unlimited
	LLMTimeout         time.Duration // per generate call
	RelaxSafety        bool          // lower the four hazard thresholds to SafetyThreshold
	SafetyThreshold    genai.HarmBlockThreshold

	YouTubeAPIKey   string
	TranscriptLangs []string // caption preference order
	HTTPProxyURL    string
	HTTPSProxyURL   string
	FetchTimeout    time.Duration

	MaxTranscriptChars int
	DefaultMaxWords    int
	PromptsFile        string // optional YAML override of the embedded prompts

	HTTPClient *http.Client // shared outbound client (proxy + transient retry)
}

// DefaultConfig returns the values used when the environment is silent.
func DefaultConfig() Config {
	return Config{
		LLMProvider:        "gemini",
		LLMAPIBase:         "https://generativelanguage.googleapis.com/v1beta/openai",
		LLMModel:           "gemini-1.5-flash",
		LLMTemperature:     0.3,
		LLMMaxTokens:       2048,
		LLMTimeout:         60 * time.Second,
		RelaxSafety:        true,
		SafetyThreshold:    genai.HarmBlockNone,
		TranscriptLangs:    []string{"hi", "en"},
		FetchTimeout:       15 * time.Second,
		MaxTranscriptChars: DefaultMaxTranscriptChars,
		DefaultMaxWords:    300,
	}
}

// ParseSafetyThreshold maps a config string to a block threshold.
// Empty means HarmBlockNone.
func ParseSafetyThreshold(s string) (genai.HarmBlockThreshold, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none", "block_none":
		return genai.HarmBlockNone, nil
	case "only_high", "block_only_high":
		return genai.HarmBlockOnlyHigh, nil
	case "medium", "block_medium_and_above":
		return genai.HarmBlockMediumAndAbove, nil
	case "low", "block_low_and_above":
		return genai.HarmBlockLowAndAbove, nil
	}
	return genai.HarmBlockUnspecified, fmt.Errorf("unknown safety threshold %q", s)
}
