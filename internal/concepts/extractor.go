package concepts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/services"
)

// maxExtractedConcepts bounds both the prompt instruction and the defensive
// truncation of whatever the model returns.
const maxExtractedConcepts = 5

const (
	minExtractedScore = 1.0
	maxExtractedScore = 5.0
	minNameLength     = 2
)

const extractPromptTemplate = `Analyze the following transcript and extract the key concepts, topics, and important entities mentioned.
Focus on:
- Technical terms and jargon
- Product names and brands
- Skills and competencies
- Business concepts and methodologies
- Important people, places, or organizations
- Main topics discussed

Return ONLY a JSON array of concepts with this exact format:
[
  {"name": "concept name", "score": 4.5},
  {"name": "another concept", "score": 3.2}
]

Rules:
- Use lowercase for concept names
- Score from 1.0 to 5.0 based on importance/prominence in transcript
- Maximum %d concepts
- No explanation, just the JSON array
- Skip common words like "the", "and", "is", "of", etc.

Transcript:
%s`

// Extractor produces scored concept mentions from a transcript via the
// text-generation collaborator. Extraction is a best-effort enrichment:
// every failure path degrades to an empty result and a log line.
type Extractor struct {
	log *logger.Logger
	ai  services.AIClient
}

func NewExtractor(log *logger.Logger, ai services.AIClient) *Extractor {
	return &Extractor{log: log.With("service", "ConceptExtractor"), ai: ai}
}

func (e *Extractor) Extract(ctx context.Context, transcript string) []Mention {
	if strings.TrimSpace(transcript) == "" {
		e.log.Warn("empty transcript provided for concept extraction")
		return []Mention{}
	}

	prompt := fmt.Sprintf(extractPromptTemplate, maxExtractedConcepts, transcript)
	response, err := e.ai.GenerateText(ctx, prompt, services.GenerateOptions{Temperature: 0.2})
	if err != nil {
		e.log.Error("concept extraction call failed", "error", err)
		return []Mention{}
	}

	raw := stripCodeFence(response)

	var candidates []struct {
		Name  *string  `json:"name"`
		Score *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(raw), &candidates); err != nil {
		e.log.Error("failed to parse extraction response as JSON", "error", err)
		e.log.Debug("raw extraction response", "response", raw)
		return []Mention{}
	}

	if len(candidates) > maxExtractedConcepts {
		candidates = candidates[:maxExtractedConcepts]
	}

	mentions := make([]Mention, 0, len(candidates))
	for _, c := range candidates {
		if c.Name == nil || c.Score == nil {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(*c.Name))
		score := *c.Score
		if utf8.RuneCountInString(name) < minNameLength {
			continue
		}
		if score < minExtractedScore || score > maxExtractedScore {
			continue
		}
		mentions = append(mentions, Mention{Name: name, Score: score})
	}

	e.log.Info("extracted concepts from transcript", "count", len(mentions))
	return mentions
}

// stripCodeFence removes a Markdown code fence wrapper (```json ... ``` or
// ``` ... ```) the model sometimes adds around JSON output.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
	} else {
		return s
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
