package sources

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_vidsum/internal/engine"
)

// YouTube transcript fetching.
// Primary:   watch page ytInitialPlayerResponse → caption track → timedtext XML
// Secondary: engagement panel /next → /get_transcript
//
// Policy: the secondary source is tried only when the primary reports that
// transcripts are disabled or that no track matches the language preferences.
// Every other primary failure is a transport error.

// Track is the caption track a source returned.
type Track struct {
	Language string
	Segments []engine.Segment
}

// Source retrieves the caption track of one video.
// It reports engine.ErrTranscriptsDisabled or engine.ErrNoTranscriptFound
// (wrapped) when the video has no usable transcript.
type Source interface {
	Name() string
	FetchTrack(ctx context.Context, videoID string, langs []string) (Track, error)
}

// --- Primary: watch page ---

// WatchPageSource scrapes the watch page and downloads the preferred caption track.
type WatchPageSource struct {
	client  *http.Client
	baseURL string
}

// NewWatchPageSource creates the primary source. baseURL "" means youtube.com.
func NewWatchPageSource(client *http.Client, baseURL string) *WatchPageSource {
	if baseURL == "" {
		baseURL = ytBaseURL
	}
	return &WatchPageSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *WatchPageSource) Name() string { return "watch_page" }

// FetchTrack implements Source.
func (s *WatchPageSource) FetchTrack(ctx context.Context, videoID string, langs []string) (Track, error) {
	watchURL := s.baseURL + "/watch?v=" + url.QueryEscape(videoID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, watchURL, nil)
	if err != nil {
		return Track{}, err
	}
	engine.SetBrowserHeaders(req)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return Track{}, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Track{}, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
	if err != nil {
		return Track{}, fmt.Errorf("read watch page: %w", err)
	}

	playerResp, err := parsePlayerResponse(body)
	if err != nil {
		return Track{}, err
	}
	track, err := selectTrack(playerResp, langs)
	if err != nil {
		return Track{}, err
	}

	segs, err := fetchTimedText(ctx, s.client, track.BaseURL)
	if err != nil {
		return Track{}, err
	}
	if len(segs) == 0 {
		return Track{}, fmt.Errorf("%w: caption track %q is empty", engine.ErrNoTranscriptFound, track.LanguageCode)
	}
	return Track{Language: track.LanguageCode, Segments: segs}, nil
}

// parsePlayerResponse pulls ytInitialPlayerResponse out of watch page HTML.
func parsePlayerResponse(body []byte) (innertubePlayerResp, error) {
	var pr innertubePlayerResp
	idx := strings.Index(string(body), ytInitialPlayerResponseMarker)
	if idx < 0 {
		return pr, errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(ytInitialPlayerResponseMarker):])
	if jsonData == nil {
		return pr, errors.New("failed to extract ytInitialPlayerResponse JSON")
	}
	if err := json.Unmarshal(jsonData, &pr); err != nil {
		return pr, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return pr, nil
}

// selectTrack applies the language preference to the available caption tracks.
func selectTrack(pr innertubePlayerResp, langs []string) (captionTrack, error) {
	if pr.Captions == nil {
		if ps := pr.PlayabilityStatus; ps != nil && ps.Status != "" && ps.Status != "OK" {
			return captionTrack{}, fmt.Errorf("video unavailable: %s %s", ps.Status, ps.Reason)
		}
		return captionTrack{}, engine.ErrTranscriptsDisabled
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return captionTrack{}, engine.ErrTranscriptsDisabled
	}
	track, ok := pickBestTrack(tracks, langs)
	if !ok {
		return captionTrack{}, fmt.Errorf("%w: wanted %v, available %v",
			engine.ErrNoTranscriptFound, langs, trackLanguages(tracks))
	}
	return track, nil
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the first usable track in preference order, manual
// tracks before auto-generated ones for the same language. An empty
// preference list accepts any language.
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, false
	}
	if len(langs) == 0 {
		return usable[0], true
	}
	for _, lang := range langs {
		var auto *captionTrack
		for i, t := range usable {
			if t.LanguageCode != lang {
				continue
			}
			if t.Kind != "asr" {
				return t, true
			}
			if auto == nil {
				auto = &usable[i]
			}
		}
		if auto != nil {
			return *auto, true
		}
	}
	return captionTrack{}, false
}

func trackLanguages(tracks []captionTrack) []string {
	out := make([]string, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.LanguageCode)
	}
	return out
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func fetchTimedText(ctx context.Context, client *http.Client, baseURL string) ([]engine.Segment, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	return parseTimedText(body)
}

// parseTimedText decodes either timedtext layout into ordered segments.
func parseTimedText(body []byte) ([]engine.Segment, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	segs := make([]engine.Segment, 0, len(tt.Lines)+len(tt.Body.Paras))
	for _, line := range tt.Lines {
		if text := engine.CleanCaption(line.Text); text != "" {
			segs = append(segs, engine.Segment{Text: text, Start: line.Start, Duration: line.Dur})
		}
	}
	for _, p := range tt.Body.Paras {
		if text := engine.CleanCaption(p.Text); text != "" {
			segs = append(segs, engine.Segment{
				Text:     text,
				Start:    float64(p.T) / 1000,
				Duration: float64(p.D) / 1000,
			})
		}
	}
	return segs, nil
}

// --- Secondary: engagement panel ---

// getTranscriptRE extracts the continuation token from a raw /next JSON response.
var getTranscriptRE = regexp.MustCompile(`"getTranscriptEndpoint":\{"params":"([^"]+)"`)

// PanelSource reads the transcript panel via /next → /get_transcript.
type PanelSource struct {
	client  *http.Client
	baseURL string
}

// NewPanelSource creates the secondary source. baseURL "" means youtube.com.
func NewPanelSource(client *http.Client, baseURL string) *PanelSource {
	if baseURL == "" {
		baseURL = ytBaseURL
	}
	return &PanelSource{client: client, baseURL: strings.TrimRight(baseURL, "/")}
}

func (s *PanelSource) Name() string { return "engagement_panel" }

// FetchTrack implements Source. The panel serves the video's default track,
// so langs only sets the interface language of the request.
func (s *PanelSource) FetchTrack(ctx context.Context, videoID string, langs []string) (Track, error) {
	hl := "en"
	if len(langs) > 0 {
		hl = langs[0]
	}
	visitorData := generateVisitorData()

	nextData, err := postInnerTubeWEB(ctx, s.client, s.baseURL, ytNextPath, map[string]any{
		"videoId": videoID,
		"context": ytWebContext(visitorData, hl),
	}, visitorData)
	if err != nil {
		return Track{}, fmt.Errorf("/next: %w", err)
	}

	token, err := extractTranscriptToken(nextData)
	if err != nil {
		return Track{}, err
	}

	transcriptData, err := postInnerTubeWEB(ctx, s.client, s.baseURL, ytGetTranscriptPath, map[string]any{
		"params":  token,
		"context": ytWebContext(visitorData, hl),
	}, visitorData)
	if err != nil {
		return Track{}, fmt.Errorf("/get_transcript: %w", err)
	}

	var transcriptResp ytGetTranscriptResp
	if err := json.Unmarshal(transcriptData, &transcriptResp); err != nil {
		return Track{}, fmt.Errorf("decode transcript: %w", err)
	}

	segs := parseTranscriptSegments(transcriptResp)
	if len(segs) == 0 {
		return Track{}, fmt.Errorf("%w: empty transcript panel", engine.ErrNoTranscriptFound)
	}
	return Track{Segments: segs}, nil
}

func extractTranscriptToken(data []byte) (string, error) {
	if m := getTranscriptRE.FindSubmatch(data); len(m) >= 2 {
		// The params value in the /next JSON response is URL-encoded.
		// /get_transcript expects the decoded (raw base64) form.
		decoded, err := url.QueryUnescape(string(m[1]))
		if err != nil {
			return string(m[1]), nil
		}
		return decoded, nil
	}
	return "", fmt.Errorf("%w: no transcript panel on this video", engine.ErrNoTranscriptFound)
}

// parseTranscriptSegments extracts timed segments from a /get_transcript response.
func parseTranscriptSegments(resp ytGetTranscriptResp) []engine.Segment {
	var segs []engine.Segment
	for _, action := range resp.Actions {
		if action.UpdateEngagementPanelAction == nil {
			continue
		}
		list := action.UpdateEngagementPanelAction.Content.
			TranscriptRenderer.Content.
			TranscriptSearchPanelRenderer.Body.
			TranscriptSegmentListRenderer.InitialSegments
		for _, seg := range list {
			r := seg.TranscriptSegmentRenderer
			if r == nil {
				continue
			}
			var sb strings.Builder
			for _, run := range r.Snippet.Runs {
				sb.WriteString(run.Text)
			}
			// Runs are plain JSON strings: no markup to strip.
			text := strings.Join(strings.Fields(sb.String()), " ")
			if text == "" {
				continue
			}
			start := msToSeconds(r.StartMs)
			end := msToSeconds(r.EndMs)
			dur := end - start
			if dur < 0 {
				dur = 0
			}
			segs = append(segs, engine.Segment{Text: text, Start: start, Duration: dur})
		}
	}
	return segs
}

func msToSeconds(ms string) float64 {
	n, err := strconv.ParseInt(ms, 10, 64)
	if err != nil {
		return 0
	}
	return float64(n) / 1000
}

// --- Fetcher ---

// Fetcher resolves a URL and fetches its transcript with the fallback policy.
type Fetcher struct {
	primary   Source
	secondary Source // nil disables the fallback
	langs     []string
}

// NewFetcher wires the two sources with a language preference list.
func NewFetcher(primary, secondary Source, langs []string) *Fetcher {
	return &Fetcher{primary: primary, secondary: secondary, langs: langs}
}

// NewYouTubeFetcher builds the default watch-page → panel fetcher over client.
func NewYouTubeFetcher(client *http.Client, langs []string) *Fetcher {
	return NewFetcher(NewWatchPageSource(client, ""), NewPanelSource(client, ""), langs)
}

// Fetch implements engine.TranscriptFetcher. Errors are *engine.PipelineError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (engine.Transcript, error) {
	ref, ok := engine.Resolve(rawURL)
	if !ok {
		return engine.Transcript{}, engine.NewError(engine.KindInvalidURL, engine.MsgInvalidURL, nil)
	}
	engine.IncrTranscriptRequests()

	track, err := f.primary.FetchTrack(ctx, ref.ID, f.langs)
	if err == nil {
		return newTranscript(ref.ID, f.primary.Name(), track), nil
	}

	unavailable := unavailableError(err)
	if unavailable == nil {
		engine.IncrTranscriptErrors()
		slog.Warn("youtube: transcript fetch failed",
			slog.String("id", ref.ID), slog.String("source", f.primary.Name()), slog.Any("err", err))
		return engine.Transcript{}, transportError(ctx, err)
	}
	if f.secondary == nil {
		engine.IncrTranscriptErrors()
		return engine.Transcript{}, unavailable
	}

	slog.Info("youtube: primary source has no transcript, trying fallback",
		slog.String("id", ref.ID), slog.String("fallback", f.secondary.Name()), slog.Any("err", err))
	engine.IncrTranscriptFallbacks()

	track, err2 := f.secondary.FetchTrack(ctx, ref.ID, f.langs)
	if err2 == nil {
		return newTranscript(ref.ID, f.secondary.Name(), track), nil
	}
	engine.IncrTranscriptErrors()
	slog.Warn("youtube: fallback source failed",
		slog.String("id", ref.ID), slog.String("source", f.secondary.Name()), slog.Any("err", err2))
	if errors.Is(err2, context.Canceled) || errors.Is(err2, context.DeadlineExceeded) {
		return engine.Transcript{}, transportError(ctx, err2)
	}
	return engine.Transcript{}, unavailable
}

func newTranscript(videoID, source string, t Track) engine.Transcript {
	return engine.Transcript{
		VideoID:  videoID,
		Language: t.Language,
		Source:   source,
		Segments: t.Segments,
		Text:     engine.JoinSegments(t.Segments),
	}
}

// unavailableError maps "no transcript" failures to a tagged error, or nil.
func unavailableError(err error) *engine.PipelineError {
	switch {
	case errors.Is(err, engine.ErrTranscriptsDisabled):
		return engine.NewError(engine.KindTranscriptUnavailable, engine.MsgTranscriptsDisabled, err)
	case errors.Is(err, engine.ErrNoTranscriptFound):
		return engine.NewError(engine.KindTranscriptUnavailable, engine.MsgNoTranscript, err)
	}
	return nil
}

func transportError(ctx context.Context, err error) *engine.PipelineError {
	if ctx.Err() != nil {
		return engine.NewError(engine.KindCanceled, "Request canceled.", err)
	}
	return engine.NewError(engine.KindTransport, "An error occurred: "+err.Error(), err)
}
