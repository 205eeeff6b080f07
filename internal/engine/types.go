package engine

// --- Video and transcript types ---

// VideoReference is the raw input URL plus the identifier derived from it.
// ID is non-empty only when URL matched a recognized host/path shape.
type VideoReference struct {
	URL string `json:"url"`
	ID  string `json:"id"`
}

// Segment is one timed caption unit.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// Transcript is the caption track of a video joined into one string.
type Transcript struct {
	VideoID  string    `json:"video_id"`
	Language string    `json:"language,omitempty"`
	Source   string    `json:"source"` // which source produced it: "watch_page" or "engagement_panel"
	Segments []Segment `json:"-"`
	Text     string    `json:"text"`
}

// JoinSegments concatenates segment texts with single spaces, preserving order.
// Empty segments are skipped so the result never has doubled separators.
func JoinSegments(segs []Segment) string {
	n := 0
	for _, s := range segs {
		n += len(s.Text) + 1
	}
	buf := make([]byte, 0, n)
	for _, s := range segs {
		if s.Text == "" {
			continue
		}
		if len(buf) > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, s.Text...)
	}
	return string(buf)
}

// --- Summary types ---

// Language names one summary target.
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

// Summary target languages, in output order.
var (
	LangPrimary   = Language{Code: "en", Name: "English"}
	LangSecondary = Language{Code: "hi", Name: "Hindi"}
)

// AllowedMaxWords is the fixed set of summary lengths a caller may pick.
var AllowedMaxWords = []int{100, 200, 300, 400, 500}

// ValidMaxWords reports whether n is one of AllowedMaxWords.
func ValidMaxWords(n int) bool {
	for _, w := range AllowedMaxWords {
		if w == n {
			return true
		}
	}
	return false
}

// SummaryRequest configures one summarizer invocation.
type SummaryRequest struct {
	Template string
	MaxWords int
	Language Language
}

// SummaryResult is either generated text (OK) or a diagnostic message.
// Text is never empty.
type SummaryResult struct {
	Language Language  `json:"language"`
	Text     string    `json:"text"`
	OK       bool      `json:"ok"`
	Kind     ErrorKind `json:"error_kind,omitempty"`
}

// --- Pipeline output ---

// Artifact is the downloadable plain-text file, built in memory per request.
type Artifact struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mime_type"`
	Data     []byte `json:"-"`
}

// PipelineOutput is everything one pipeline run produced.
// Error is set only on the short-circuit paths; otherwise Summaries holds one
// entry per target language.
type PipelineOutput struct {
	Video      VideoReference    `json:"video"`
	Stage      Stage             `json:"stage"`
	Error      *PipelineError    `json:"error,omitempty"`
	Transcript *Transcript       `json:"transcript,omitempty"`
	Summaries  []SummaryResult   `json:"summaries,omitempty"`
	ShareLinks map[string]string `json:"share_links,omitempty"`
	Artifact   *Artifact         `json:"artifact,omitempty"`
}

// Summary returns the result for the given language code.
func (o PipelineOutput) Summary(code string) (SummaryResult, bool) {
	for _, s := range o.Summaries {
		if s.Language.Code == code {
			return s, true
		}
	}
	return SummaryResult{}, false
}
