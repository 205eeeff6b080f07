// go_vidsum: YouTube video summary MCP server.
//
// Exposes three MCP tools: video_summary, video_details, share_links.
// A video URL goes through transcript fetch, sanitizing and bilingual
// summarization; the result carries share links and a downloadable text file.
package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_vidsum/internal/engine"
	"github.com/anatolykoptev/go_vidsum/internal/engine/sources"
	"github.com/anatolykoptev/go_vidsum/internal/vidserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8892")
)

func main() {
	ctx := context.Background()

	c, err := loadConfig()
	if err != nil {
		slog.Error("config invalid", slog.Any("error", err))
		os.Exit(1)
	}
	deps, closeFn, err := initEngine(ctx, c)
	if err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer closeFn()

	slog.Info("starting go_vidsum",
		slog.String("port", mcpPort),
		slog.String("llm_provider", c.LLMProvider),
		slog.String("llm_model", c.LLMModel),
		slog.Bool("details", deps.Details.Enabled()),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_vidsum",
		Version: version,
	}, nil)

	vidserver.RegisterTools(server, deps)
	slog.Info("tools registered", slog.Int("count", 3))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_vidsum",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() (engine.Config, error) {
	d := engine.DefaultConfig()
	c := engine.Config{
		LLMProvider:        env.Str("LLM_PROVIDER", d.LLMProvider),
		LLMAPIKey:          env.Str("LLM_API_KEY", ""),
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", d.LLMAPIBase),
		LLMModel:           env.Str("LLM_MODEL", d.LLMModel),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", d.LLMTemperature),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", d.LLMMaxTokens),
		LLMRequestsPerMin:  env.Int("LLM_RPM", 0),
		LLMTimeout:         env.Duration("LLM_TIMEOUT", d.LLMTimeout),
		YouTubeAPIKey:      env.Str("YOUTUBE_API_KEY", ""),
		TranscriptLangs:    env.List("TRANSCRIPT_LANGS", "hi,en"),
		HTTPProxyURL:       env.Str("HTTP_PROXY_URL", ""),
		HTTPSProxyURL:      env.Str("HTTPS_PROXY_URL", ""),
		FetchTimeout:       env.Duration("FETCH_TIMEOUT", d.FetchTimeout),
		MaxTranscriptChars: env.Int("MAX_TRANSCRIPT_CHARS", d.MaxTranscriptChars),
		DefaultMaxWords:    env.Int("DEFAULT_MAX_WORDS", d.DefaultMaxWords),
		PromptsFile:        env.Str("PROMPTS_FILE", ""),
	}

	relax, err := strconv.ParseBool(env.Str("LLM_RELAX_SAFETY", "true"))
	if err != nil {
		return c, err
	}
	c.RelaxSafety = relax
	if c.SafetyThreshold, err = engine.ParseSafetyThreshold(env.Str("LLM_SAFETY_THRESHOLD", "none")); err != nil {
		return c, err
	}
	if !engine.ValidMaxWords(c.DefaultMaxWords) {
		slog.Warn("DEFAULT_MAX_WORDS not allowed, using default",
			slog.Int("value", c.DefaultMaxWords), slog.Int("default", d.DefaultMaxWords))
		c.DefaultMaxWords = d.DefaultMaxWords
	}
	return c, nil
}

func initEngine(ctx context.Context, c engine.Config) (vidserver.Deps, func(), error) {
	noop := func() {}

	hc, err := engine.NewHTTPClient(c)
	if err != nil {
		return vidserver.Deps{}, noop, err
	}
	c.HTTPClient = hc
	if c.HTTPProxyURL != "" || c.HTTPSProxyURL != "" {
		slog.Info("outbound proxy configured")
	}

	fetcher := sources.NewYouTubeFetcher(hc, c.TranscriptLangs)

	gen, err := engine.NewGenerator(ctx, c)
	if err != nil {
		return vidserver.Deps{}, noop, err
	}
	closeFn := noop
	if g, ok := gen.(*engine.GeminiGenerator); ok {
		closeFn = func() { _ = g.Close() }
	}

	summarizer := engine.NewSummarizer(gen,
		engine.WithSanitizer(engine.NewSanitizer(c.MaxTranscriptChars)),
		engine.WithRequestsPerMinute(c.LLMRequestsPerMin),
		engine.WithCallTimeout(c.LLMTimeout),
	)

	prompts := engine.DefaultPrompts()
	if c.PromptsFile != "" {
		if prompts, err = engine.LoadPrompts(c.PromptsFile); err != nil {
			closeFn()
			return vidserver.Deps{}, noop, err
		}
		slog.Info("prompts loaded", slog.String("file", c.PromptsFile), slog.Int("languages", len(prompts.Languages)))
	}

	pipeline := engine.NewPipeline(fetcher, summarizer, engine.WithPrompts(prompts))

	details, err := sources.NewDetailsClient(ctx, c.YouTubeAPIKey, hc)
	if err != nil {
		slog.Warn("youtube data API init failed, details disabled", slog.Any("error", err))
		details = &sources.DetailsClient{}
	}

	return vidserver.Deps{
		Pipeline:        pipeline,
		Details:         details,
		DefaultMaxWords: c.DefaultMaxWords,
	}, closeFn, nil
}
