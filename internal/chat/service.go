package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/repos"
	"github.com/yungbote/notey-backend/internal/search"
	"github.com/yungbote/notey-backend/internal/services"
	"github.com/yungbote/notey-backend/internal/types"
)

const (
	// Question answering: concept retrieval first, transcript fallback second.
	conceptSearchLimit     = 5
	conceptSearchThreshold = 0.5

	fallbackChunkLimit   = 200
	fallbackSearchLimit  = 10
	fallbackThreshold    = 0.6
	fallbackConceptScore = 0.5

	// Standalone concept search endpoint.
	browseThreshold = 0.2

	answerMaxTokens   = 600
	answerTemperature = 0.7
)

// AskResult is one answered question with its provenance.
type AskResult struct {
	Answer          string            `json:"answer"`
	Sources         []types.SourceRef `json:"sources"`
	RelatedConcepts []string          `json:"related_concepts"`
}

// ConceptSearchResult ranks a concept for the browse endpoint by a blend of
// semantic similarity and how often the concept is mentioned.
type ConceptSearchResult struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SimilarityScore float64   `json:"similarity_score"`
	MentionCount    int64     `json:"mention_count"`
	CombinedScore   float64   `json:"combined_score"`
}

type Service interface {
	Ask(ctx context.Context, userID uuid.UUID, query string) (*AskResult, error)
	GetNotesByConcept(ctx context.Context, userID uuid.UUID, conceptName string) ([]types.Note, error)
	SearchConcepts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ConceptSearchResult, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error)
}

type service struct {
	log           *logger.Logger
	events        repos.EventRepo
	chunks        repos.AudioChunkRepo
	concepts      repos.ConceptRepo
	chunkConcepts repos.ChunkConceptRepo
	messages      repos.ChatMessageRepo
	semantic      *search.Service
	aggregator    *Aggregator
	ai            services.AIClient
}

func NewService(
	log *logger.Logger,
	events repos.EventRepo,
	chunks repos.AudioChunkRepo,
	concepts repos.ConceptRepo,
	chunkConcepts repos.ChunkConceptRepo,
	messages repos.ChatMessageRepo,
	semantic *search.Service,
	aggregator *Aggregator,
	ai services.AIClient,
) Service {
	return &service{
		log:           log.With("service", "ChatService"),
		events:        events,
		chunks:        chunks,
		concepts:      concepts,
		chunkConcepts: chunkConcepts,
		messages:      messages,
		semantic:      semantic,
		aggregator:    aggregator,
		ai:            ai,
	}
}

func (s *service) Ask(ctx context.Context, userID uuid.UUID, query string) (*AskResult, error) {
	notes, relatedConcepts := s.retrieveByConcepts(ctx, userID, query)
	if len(notes) == 0 {
		notes = s.retrieveByTranscripts(ctx, userID, query)
	}

	agg := s.aggregator.Aggregate(ctx, query, notes)

	var prompt string
	if agg.HasContext() {
		prompt = buildAnswerPrompt(agg.ContextText, query)
	} else {
		prompt = buildNoContextPrompt(query)
	}

	answer, err := s.ai.GenerateText(ctx, prompt, services.GenerateOptions{
		MaxTokens:   answerMaxTokens,
		Temperature: answerTemperature,
	})
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	result := &AskResult{
		Answer:          answer,
		Sources:         agg.Sources,
		RelatedConcepts: relatedConcepts,
	}
	if result.Sources == nil {
		result.Sources = []types.SourceRef{}
	}
	if result.RelatedConcepts == nil {
		result.RelatedConcepts = []string{}
	}
	s.persistMessage(ctx, userID, query, result)
	return result, nil
}

// retrieveByConcepts matches the question against the user's concept
// vocabulary and pulls notes for every matched concept. Retrieval is
// best-effort throughout: failures log and degrade to fewer notes.
func (s *service) retrieveByConcepts(ctx context.Context, userID uuid.UUID, query string) ([]types.Note, []string) {
	conceptRows, err := s.concepts.ListByUser(ctx, nil, userID)
	if err != nil {
		s.log.Error("failed to list concepts", "error", err)
		return nil, nil
	}
	candidates := make([]search.ConceptCandidate, len(conceptRows))
	for i, c := range conceptRows {
		candidates[i] = search.ConceptCandidate{ID: c.ID, Name: c.Name}
	}

	matches := s.semantic.SearchConcepts(ctx, query, candidates, conceptSearchLimit, conceptSearchThreshold)
	if len(matches) == 0 {
		return nil, nil
	}

	var notes []types.Note
	related := make([]string, 0, len(matches))
	for _, match := range matches {
		related = append(related, match.Name)
		conceptNotes, err := s.notesForConcept(ctx, userID, match.ID)
		if err != nil {
			s.log.Error("failed to load notes for concept", "concept", match.Name, "error", err)
			continue
		}
		// Concept-derived notes carry only their link score; the query's
		// similarity to the concept name says nothing about an individual
		// mention, and admission must be able to reject weak mentions.
		notes = append(notes, conceptNotes...)
	}
	return notes, related
}

// retrieveByTranscripts is the fallback when no concept matches: rank recent
// chunks directly against the question.
func (s *service) retrieveByTranscripts(ctx context.Context, userID uuid.UUID, query string) []types.Note {
	chunks, err := s.chunks.ListByUser(ctx, nil, userID, fallbackChunkLimit)
	if err != nil {
		s.log.Error("failed to list chunks for fallback search", "error", err)
		return nil
	}
	notes, err := s.notesFromChunks(ctx, chunks)
	if err != nil {
		s.log.Error("failed to build fallback notes", "error", err)
		return nil
	}
	// Fallback notes have no concept provenance; give them a neutral score
	// so the similarity threshold alone decides admission.
	defaultScore := fallbackConceptScore
	for i := range notes {
		notes[i].ConceptScore = &defaultScore
	}
	return s.semantic.SearchTranscripts(ctx, query, notes, fallbackSearchLimit, fallbackThreshold)
}

func (s *service) GetNotesByConcept(ctx context.Context, userID uuid.UUID, conceptName string) ([]types.Note, error) {
	concept, err := s.concepts.FindByNameLike(ctx, nil, userID, conceptName)
	if err != nil {
		return nil, fmt.Errorf("concept lookup: %w", err)
	}
	return s.notesForConcept(ctx, userID, concept.ID)
}

// notesForConcept joins the concept's chunk links with their chunks and
// events. Link order (score descending) is preserved.
func (s *service) notesForConcept(ctx context.Context, userID uuid.UUID, conceptID uuid.UUID) ([]types.Note, error) {
	links, err := s.chunkConcepts.GetByConceptID(ctx, nil, userID, conceptID)
	if err != nil {
		return nil, fmt.Errorf("concept links: %w", err)
	}
	if len(links) == 0 {
		return []types.Note{}, nil
	}

	chunkIDs := make([]uuid.UUID, len(links))
	for i, link := range links {
		chunkIDs[i] = link.ChunkID
	}
	chunks, err := s.chunks.GetByIDs(ctx, nil, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("chunk lookup: %w", err)
	}
	chunksByID := make(map[uuid.UUID]*types.AudioChunk, len(chunks))
	for _, chunk := range chunks {
		chunksByID[chunk.ID] = chunk
	}

	notes := make([]types.Note, 0, len(links))
	for _, link := range links {
		chunk, ok := chunksByID[link.ChunkID]
		if !ok {
			continue
		}
		score := link.Score
		notes = append(notes, types.Note{
			ChunkID:      chunk.ID,
			EventID:      chunk.EventID,
			Transcript:   chunk.Transcript,
			Summary:      chunk.Summary,
			ConceptScore: &score,
			StartTime:    chunk.StartTime,
			Duration:     chunk.Length,
			FromSec:      link.FromSec,
			ToSec:        link.ToSec,
		})
	}
	if err := s.attachEvents(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *service) notesFromChunks(ctx context.Context, chunks []*types.AudioChunk) ([]types.Note, error) {
	notes := make([]types.Note, 0, len(chunks))
	for _, chunk := range chunks {
		notes = append(notes, types.Note{
			ChunkID:    chunk.ID,
			EventID:    chunk.EventID,
			Transcript: chunk.Transcript,
			Summary:    chunk.Summary,
			StartTime:  chunk.StartTime,
			Duration:   chunk.Length,
		})
	}
	if err := s.attachEvents(ctx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (s *service) attachEvents(ctx context.Context, notes []types.Note) error {
	if len(notes) == 0 {
		return nil
	}
	seen := make(map[uuid.UUID]struct{})
	var eventIDs []uuid.UUID
	for _, n := range notes {
		if _, ok := seen[n.EventID]; ok {
			continue
		}
		seen[n.EventID] = struct{}{}
		eventIDs = append(eventIDs, n.EventID)
	}
	events, err := s.events.GetByIDs(ctx, nil, eventIDs)
	if err != nil {
		return fmt.Errorf("event lookup: %w", err)
	}
	eventsByID := make(map[uuid.UUID]*types.Event, len(events))
	for _, e := range events {
		eventsByID[e.ID] = e
	}
	for i := range notes {
		if e, ok := eventsByID[notes[i].EventID]; ok {
			notes[i].EventTitle = e.Title
			startedAt := e.StartedAt
			notes[i].EventDate = &startedAt
		}
	}
	return nil
}

// SearchConcepts ranks the user's concepts for browsing. Twice the requested
// limit is pulled from the similarity pass so that mention popularity can
// reorder before the final cut.
func (s *service) SearchConcepts(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ConceptSearchResult, error) {
	if limit <= 0 {
		limit = 10
	}
	conceptRows, err := s.concepts.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	candidates := make([]search.ConceptCandidate, len(conceptRows))
	for i, c := range conceptRows {
		candidates[i] = search.ConceptCandidate{ID: c.ID, Name: c.Name}
	}

	matches := s.semantic.SearchConcepts(ctx, query, candidates, limit*2, browseThreshold)

	results := make([]ConceptSearchResult, 0, len(matches))
	for _, match := range matches {
		count, err := s.chunkConcepts.CountByConceptID(ctx, nil, userID, match.ID)
		if err != nil {
			s.log.Error("failed to count mentions", "concept", match.Name, "error", err)
			count = 0
		}
		popularity := float64(count) / 10.0
		if popularity > 1.0 {
			popularity = 1.0
		}
		results = append(results, ConceptSearchResult{
			ID:              match.ID,
			Name:            match.Name,
			SimilarityScore: match.SimilarityScore,
			MentionCount:    count,
			CombinedScore:   0.7*match.SimilarityScore + 0.3*popularity,
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CombinedScore > results[j].CombinedScore
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ChatMessage, error) {
	return s.messages.ListByUser(ctx, nil, userID, limit)
}

// persistMessage is best-effort: a failed history write never fails the
// answer that was already generated.
func (s *service) persistMessage(ctx context.Context, userID uuid.UUID, query string, result *AskResult) {
	sources, err := json.Marshal(result.Sources)
	if err != nil {
		s.log.Error("failed to marshal sources", "error", err)
		return
	}
	related, err := json.Marshal(result.RelatedConcepts)
	if err != nil {
		s.log.Error("failed to marshal related concepts", "error", err)
		return
	}
	msg := &types.ChatMessage{
		UserID:          userID,
		Query:           query,
		Answer:          result.Answer,
		Sources:         sources,
		RelatedConcepts: related,
	}
	if err := s.messages.Create(ctx, nil, msg); err != nil {
		s.log.Error("failed to persist chat message", "error", err)
	}
}
