package types

import (
	"time"

	"github.com/google/uuid"
)

// Note is a query-time join of a chunk-concept link, its chunk, and the
// owning event. It is never persisted; it carries either a concept score
// (concept-relevance provenance) or a similarity score (direct semantic
// search provenance), or both.
type Note struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	EventID    uuid.UUID `json:"event_id"`
	EventTitle string    `json:"event_title"`

	Transcript string `json:"transcript"`
	Summary    string `json:"summary"`

	ConceptScore    *float64 `json:"concept_score,omitempty"`
	SimilarityScore *float64 `json:"similarity_score,omitempty"`

	StartTime float64    `json:"start_time"`
	Duration  float64    `json:"duration"`
	EventDate *time.Time `json:"event_date,omitempty"`

	FromSec *float64 `json:"from_sec,omitempty"`
	ToSec   *float64 `json:"to_sec,omitempty"`
}

// SourceRef identifies one event cited in a chat answer.
type SourceRef struct {
	EventID    uuid.UUID  `json:"event_id"`
	EventTitle string     `json:"event_title"`
	EventDate  *time.Time `json:"event_date,omitempty"`
}
