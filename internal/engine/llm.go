package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/googleapi/transport"
	"google.golang.org/api/option"
)

// Generator is the LLM text-generation call.
// Implementations wrap rate-limit failures with ErrRateLimited and report
// an empty or filtered answer as ErrNoCandidates.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// HazardCategories are the four standard moderation categories.
var HazardCategories = []genai.HarmCategory{
	genai.HarmCategorySexuallyExplicit,
	genai.HarmCategoryHateSpeech,
	genai.HarmCategoryHarassment,
	genai.HarmCategoryDangerousContent,
}

// SafetySettings returns per-category thresholds for the model.
// nil means the model's defaults apply.
func SafetySettings(relax bool, threshold genai.HarmBlockThreshold) []*genai.SafetySetting {
	if !relax {
		return nil
	}
	out := make([]*genai.SafetySetting, 0, len(HazardCategories))
	for _, c := range HazardCategories {
		out = append(out, &genai.SafetySetting{Category: c, Threshold: threshold})
	}
	return out
}

// GeminiGenerator calls the Gemini API through the official SDK.
type GeminiGenerator struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiGenerator creates the SDK client. When c.HTTPClient is set its
// transport (proxy + transient retry) carries the calls.
func NewGeminiGenerator(ctx context.Context, c Config) (*GeminiGenerator, error) {
	if c.LLMAPIKey == "" {
		return nil, errors.New("gemini: LLM_API_KEY is required")
	}
	var opts []option.ClientOption
	if c.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(&http.Client{
			Transport: &transport.APIKey{Key: c.LLMAPIKey, Transport: c.HTTPClient.Transport},
		}))
	} else {
		opts = append(opts, option.WithAPIKey(c.LLMAPIKey))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	model := client.GenerativeModel(c.LLMModel)
	model.SetTemperature(float32(c.LLMTemperature))
	if c.LLMMaxTokens > 0 {
		model.SetMaxOutputTokens(int32(c.LLMMaxTokens))
	}
	model.SafetySettings = SafetySettings(c.RelaxSafety, c.SafetyThreshold)
	return &GeminiGenerator{client: client, model: model}, nil
}

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", fmt.Errorf("%w: %v", ErrNoCandidates, err)
		}
		if isHTTP429(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", err
	}
	text := candidateText(resp)
	if text == "" {
		return "", ErrNoCandidates
	}
	return text, nil
}

// Close releases the SDK client.
func (g *GeminiGenerator) Close() error { return g.client.Close() }

// candidateText concatenates the text parts of the first candidate with content.
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				sb.WriteString(string(t))
			}
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			return s
		}
	}
	return ""
}

func isHTTP429(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code == http.StatusTooManyRequests
	}
	return looksRateLimited(err)
}

// looksRateLimited matches rate-limit failures from clients that do not
// expose a typed status.
func looksRateLimited(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "resource_exhausted") ||
		strings.Contains(msg, "resource exhausted")
}

// OpenAIGenerator calls an OpenAI-compatible chat endpoint via go-kit/llm.
type OpenAIGenerator struct {
	client *llm.Client
}

// NewOpenAIGenerator wires a go-kit LLM client from config.
func NewOpenAIGenerator(c Config) *OpenAIGenerator {
	hc := &http.Client{Timeout: c.LLMTimeout}
	if c.HTTPClient != nil {
		hc.Transport = c.HTTPClient.Transport
	}
	return &OpenAIGenerator{client: llm.NewClient(c.LLMAPIBase, c.LLMAPIKey, c.LLMModel,
		llm.WithFallbackKeys(c.LLMAPIKeyFallbacks),
		llm.WithMaxTokens(c.LLMMaxTokens),
		llm.WithTemperature(c.LLMTemperature),
		llm.WithHTTPClient(hc),
	)}
}

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Complete(ctx, "", prompt)
	if err != nil {
		if looksRateLimited(err) {
			return "", fmt.Errorf("%w: %v", ErrRateLimited, err)
		}
		return "", err
	}
	if strings.TrimSpace(resp) == "" {
		return "", ErrNoCandidates
	}
	return strings.TrimSpace(resp), nil
}

// NewGenerator picks the backend named by c.LLMProvider.
func NewGenerator(ctx context.Context, c Config) (Generator, error) {
	switch strings.ToLower(c.LLMProvider) {
	case "", "gemini":
		return NewGeminiGenerator(ctx, c)
	case "openai":
		return NewOpenAIGenerator(c), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", c.LLMProvider)
	}
}
