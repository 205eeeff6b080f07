package engine

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LLM prompt templates. Defaults ship embedded; PROMPTS_FILE may override them.

//go:embed prompts.yaml
var defaultPromptsYAML []byte

// PromptSet is one template per summary language, in output order.
type PromptSet struct {
	Languages []LanguagePrompt `yaml:"languages"`
}

// LanguagePrompt pairs a target language with its template.
type LanguagePrompt struct {
	Language `yaml:",inline"`
	Template string `yaml:"template"`
}

// DefaultPrompts parses the embedded templates.
func DefaultPrompts() PromptSet {
	ps, err := ParsePrompts(defaultPromptsYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml: %v", err))
	}
	return ps
}

// LoadPrompts reads a YAML template file. An empty path returns the defaults.
func LoadPrompts(path string) (PromptSet, error) {
	if path == "" {
		return DefaultPrompts(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return PromptSet{}, fmt.Errorf("read prompts: %w", err)
	}
	ps, err := ParsePrompts(data)
	if err != nil {
		return PromptSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return ps, nil
}

// ParsePrompts decodes and validates a template set.
func ParsePrompts(data []byte) (PromptSet, error) {
	var ps PromptSet
	if err := yaml.Unmarshal(data, &ps); err != nil {
		return PromptSet{}, fmt.Errorf("parse prompts: %w", err)
	}
	if len(ps.Languages) == 0 {
		return PromptSet{}, errors.New("prompts: no languages defined")
	}
	seen := make(map[string]bool, len(ps.Languages))
	for i, lp := range ps.Languages {
		if lp.Code == "" || strings.TrimSpace(lp.Template) == "" {
			return PromptSet{}, fmt.Errorf("prompts: entry %d needs code and template", i)
		}
		if seen[lp.Code] {
			return PromptSet{}, fmt.Errorf("prompts: duplicate language %q", lp.Code)
		}
		seen[lp.Code] = true
		if lp.Name == "" {
			ps.Languages[i].Name = lp.Code
		}
	}
	return ps, nil
}

// BuildPrompt assembles the single prompt sent to the model.
func BuildPrompt(template, sanitizedTranscript string, maxWords int) string {
	var sb strings.Builder
	sb.Grow(len(template) + len(sanitizedTranscript) + 40)
	sb.WriteString(template)
	sb.WriteByte(' ')
	sb.WriteString(sanitizedTranscript)
	sb.WriteString(" Limit the summary to ")
	sb.WriteString(strconv.Itoa(maxWords))
	sb.WriteString(" words.")
	return sb.String()
}
