package search

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/types"
)

// ConceptCandidate is a concept offered for ranking.
type ConceptCandidate struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// ConceptMatch is a candidate that cleared the similarity threshold.
type ConceptMatch struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SimilarityScore float64   `json:"similarity_score"`
}

// Service ranks concepts and transcript notes against a query by rescaled
// cosine similarity. It never raises to the caller: search is a best-effort
// enrichment, so any internal failure is logged and yields an empty result.
type Service struct {
	log   *logger.Logger
	index *EmbeddingIndex
}

func NewService(log *logger.Logger, index *EmbeddingIndex) *Service {
	return &Service{log: log.With("service", "SemanticSearchService"), index: index}
}

// SearchConcepts ranks candidate concepts by name similarity to query,
// keeping matches at or above threshold, sorted descending, at most limit.
// Ties keep original candidate order.
func (s *Service) SearchConcepts(ctx context.Context, query string, candidates []ConceptCandidate, limit int, threshold float64) []ConceptMatch {
	if strings.TrimSpace(query) == "" || len(candidates) == 0 {
		return []ConceptMatch{}
	}

	queryVec, err := s.index.Encode(ctx, query)
	if err != nil {
		s.log.Error("failed to encode concept search query", "error", err)
		return []ConceptMatch{}
	}

	texts := make([]string, len(candidates))
	for i, c := range candidates {
		texts[i] = c.Name
	}
	candidateVecs, err := s.index.EncodeBatch(ctx, texts)
	if err != nil {
		s.log.Error("failed to encode concept candidates", "error", err)
		return []ConceptMatch{}
	}

	similarities := s.index.Similarity(queryVec, candidateVecs)

	results := make([]ConceptMatch, 0, len(candidates))
	for i, c := range candidates {
		if similarities[i] >= threshold {
			results = append(results, ConceptMatch{
				ID:              c.ID,
				Name:            c.Name,
				SimilarityScore: similarities[i],
			})
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].SimilarityScore > results[j].SimilarityScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// SearchTranscripts ranks notes by similarity of query to each note's
// summary (preferred) or transcript. Returned notes carry SimilarityScore.
func (s *Service) SearchTranscripts(ctx context.Context, query string, notes []types.Note, limit int, threshold float64) []types.Note {
	if strings.TrimSpace(query) == "" || len(notes) == 0 {
		return []types.Note{}
	}

	queryVec, err := s.index.Encode(ctx, query)
	if err != nil {
		s.log.Error("failed to encode transcript search query", "error", err)
		return []types.Note{}
	}

	texts := make([]string, len(notes))
	for i, n := range notes {
		if strings.TrimSpace(n.Summary) != "" {
			texts[i] = n.Summary
		} else {
			texts[i] = n.Transcript
		}
	}
	noteVecs, err := s.index.EncodeBatch(ctx, texts)
	if err != nil {
		s.log.Error("failed to encode transcript candidates", "error", err)
		return []types.Note{}
	}

	similarities := s.index.Similarity(queryVec, noteVecs)

	results := make([]types.Note, 0, len(notes))
	for i := range notes {
		if similarities[i] >= threshold {
			n := notes[i]
			score := similarities[i]
			n.SimilarityScore = &score
			results = append(results, n)
		}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return *results[i].SimilarityScore > *results[j].SimilarityScore
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}
