package concepts

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/repos"
	"github.com/yungbote/notey-backend/internal/services"
	"github.com/yungbote/notey-backend/internal/types"
)

// Service owns the write path for concepts: validated mention lists are
// upserted by name (lazy concept creation) and merged into chunk links.
type Service interface {
	UpsertMentions(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID, mentions []Mention) (int, error)
	GetChunkConcepts(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID) ([]*types.ChunkConcept, error)
	DeleteChunkConcepts(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID) error
	// ProcessChunk runs the full enrichment pipeline for a chunk's audio:
	// transcribe+summarize (terminal on failure), then best-effort concept
	// extraction and upsert.
	ProcessChunk(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID, audio []byte, mimeType string) (*types.AudioChunk, []Mention, error)
}

type service struct {
	log           *logger.Logger
	db            *gorm.DB
	chunks        repos.AudioChunkRepo
	concepts      repos.ConceptRepo
	chunkConcepts repos.ChunkConceptRepo
	extractor     *Extractor
	transcription services.TranscriptionService
}

func NewService(
	log *logger.Logger,
	db *gorm.DB,
	chunks repos.AudioChunkRepo,
	concepts repos.ConceptRepo,
	chunkConcepts repos.ChunkConceptRepo,
	extractor *Extractor,
	transcription services.TranscriptionService,
) Service {
	return &service{
		log:           log.With("service", "ConceptService"),
		db:            db,
		chunks:        chunks,
		concepts:      concepts,
		chunkConcepts: chunkConcepts,
		extractor:     extractor,
		transcription: transcription,
	}
}

func (s *service) UpsertMentions(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID, mentions []Mention) (int, error) {
	validated, err := ValidateMentions(mentions)
	if err != nil {
		return 0, err
	}

	chunk, err := s.chunks.GetByID(ctx, nil, chunkID)
	if err != nil {
		return 0, fmt.Errorf("chunk lookup: %w", err)
	}
	if chunk.UserID != userID {
		return 0, fmt.Errorf("chunk %s does not belong to user", chunkID)
	}

	inserted := 0
	for _, m := range validated {
		concept, err := s.concepts.UpsertByName(ctx, nil, userID, m.Name)
		if err != nil {
			s.log.Error("failed to upsert concept", "name", m.Name, "error", err)
			continue
		}
		link := &types.ChunkConcept{
			ChunkID:   chunkID,
			ConceptID: concept.ID,
			UserID:    userID,
			Score:     m.Score,
			FromSec:   m.FromSec,
			ToSec:     m.ToSec,
		}
		if err := s.chunkConcepts.Upsert(ctx, nil, link); err != nil {
			s.log.Error("failed to upsert chunk concept link", "name", m.Name, "error", err)
			continue
		}
		inserted++
	}
	return inserted, nil
}

func (s *service) GetChunkConcepts(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID) ([]*types.ChunkConcept, error) {
	return s.chunkConcepts.GetByChunkIDs(ctx, nil, userID, []uuid.UUID{chunkID})
}

func (s *service) DeleteChunkConcepts(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID) error {
	return s.chunkConcepts.DeleteByChunkID(ctx, nil, userID, chunkID)
}

func (s *service) ProcessChunk(ctx context.Context, userID uuid.UUID, chunkID uuid.UUID, audio []byte, mimeType string) (*types.AudioChunk, []Mention, error) {
	chunk, err := s.chunks.GetByID(ctx, nil, chunkID)
	if err != nil {
		return nil, nil, fmt.Errorf("chunk lookup: %w", err)
	}
	if chunk.UserID != userID {
		return nil, nil, fmt.Errorf("chunk %s does not belong to user", chunkID)
	}

	transcript, summary, err := s.transcription.TranscribeAndSummarize(ctx, audio, mimeType)
	if err != nil {
		return nil, nil, err
	}
	if err := s.chunks.UpdateTranscription(ctx, nil, chunkID, transcript, summary); err != nil {
		return nil, nil, fmt.Errorf("persist transcription: %w", err)
	}
	chunk.Transcript = transcript
	chunk.Summary = summary

	// Extraction is best-effort; an empty result is not a pipeline failure.
	mentions := s.extractor.Extract(ctx, transcript)
	if len(mentions) > 0 {
		if _, err := s.UpsertMentions(ctx, userID, chunkID, mentions); err != nil {
			s.log.Warn("failed to upsert extracted mentions", "chunk_id", chunkID, "error", err)
		}
	}
	return chunk, mentions, nil
}
