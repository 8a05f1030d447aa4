package synthesizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"novelcast/internal/config"
	"novelcast/internal/llmservice"
	"novelcast/internal/models"

	"github.com/tmc/langchaingo/llms"
)

// AnalysisRequest carries the text payload for one analysis call. When
// Differences is set the analyzer focuses on the flagged pairs with their
// surrounding context; otherwise it scans Text for risky words.
type AnalysisRequest struct {
	Text        string
	Context     string
	Differences []models.DifferenceRecord
}

// AnalysisResult is whatever the capability returned: a proposal map
// (surface form → reading, values untyped so the validation gate owns the
// type check) or a list of spoken differences.
type AnalysisResult struct {
	Proposals   map[string]any
	Differences []models.SpokenDifference
}

// Analyzer is the external text-analysis capability. Implementations make
// no promise about internal reasoning; the pipeline treats malformed or
// unavailable responses as an empty result.
type Analyzer interface {
	Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error)
}

// LLMAnalyzer delegates to a chat model in JSON mode.
type LLMAnalyzer struct {
	cfg *config.LLMConfig
}

func NewLLMAnalyzer(cfg *config.LLMConfig) *LLMAnalyzer {
	return &LLMAnalyzer{cfg: cfg}
}

func (a *LLMAnalyzer) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisResult, error) {
	prompt := buildPrompt(req)

	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextContent{Text: models.CorrectionSystemPrompt}},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextContent{Text: prompt}},
		},
	}

	res, err := llmservice.GenerateContent(ctx, a.cfg, messages, llms.WithJSONMode())
	if err != nil {
		return nil, err
	}
	if len(res.Choices) == 0 {
		return nil, fmt.Errorf("empty model response")
	}
	return parseResponse(res.Choices[0].Content)
}

func buildPrompt(req AnalysisRequest) string {
	if len(req.Differences) > 0 {
		var pairs strings.Builder
		for _, d := range req.Differences {
			fmt.Fprintf(&pairs, "原文: %s\n認識: %s\n\n", d.Original, d.Transcribed)
		}
		return fmt.Sprintf(models.DifferencePromptTemplate, pairs.String(), req.Context)
	}
	return fmt.Sprintf(models.CorrectionPromptTemplate, req.Text)
}

// parseResponse decodes the model output. The schema is either a flat
// proposal object or {"differences": [{original, spoken, type, note}]}.
func parseResponse(content string) (*AnalysisResult, error) {
	content = stripFences(content)

	var envelope struct {
		Differences []models.SpokenDifference `json:"differences"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err == nil && len(envelope.Differences) > 0 {
		return &AnalysisResult{Differences: envelope.Differences}, nil
	}

	var proposals map[string]any
	if err := json.Unmarshal([]byte(content), &proposals); err != nil {
		return nil, fmt.Errorf("unparseable analysis response: %w", err)
	}
	delete(proposals, "differences")
	return &AnalysisResult{Proposals: proposals}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
