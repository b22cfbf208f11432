package graph

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/repos"
	"github.com/yungbote/notey-backend/internal/types"
)

const defaultExportLimit = 60

// Stats summarizes a user's graph without materializing it.
type Stats struct {
	Events    int `json:"events"`
	Concepts  int `json:"concepts"`
	Mentions  int `json:"mentions"`
	Relations int `json:"relations"`
}

type Service interface {
	// Export materializes the concept graph. When eventID is set, the graph
	// is scoped to that single event; otherwise the most recent events fill
	// roughly a third of limit, leaving room for concept nodes.
	Export(ctx context.Context, userID uuid.UUID, eventID *uuid.UUID, limit int) (*Graph, error)
	Stats(ctx context.Context, userID uuid.UUID) (*Stats, error)
}

type service struct {
	log           *logger.Logger
	events        repos.EventRepo
	chunks        repos.AudioChunkRepo
	concepts      repos.ConceptRepo
	chunkConcepts repos.ChunkConceptRepo
	relations     repos.ConceptRelationRepo
}

func NewService(
	log *logger.Logger,
	events repos.EventRepo,
	chunks repos.AudioChunkRepo,
	concepts repos.ConceptRepo,
	chunkConcepts repos.ChunkConceptRepo,
	relations repos.ConceptRelationRepo,
) Service {
	return &service{
		log:           log.With("service", "GraphService"),
		events:        events,
		chunks:        chunks,
		concepts:      concepts,
		chunkConcepts: chunkConcepts,
		relations:     relations,
	}
}

func (s *service) Export(ctx context.Context, userID uuid.UUID, eventID *uuid.UUID, limit int) (*Graph, error) {
	if limit <= 0 {
		limit = defaultExportLimit
	}

	var events []*types.Event
	if eventID != nil {
		event, err := s.events.GetByID(ctx, nil, *eventID)
		if err != nil {
			return nil, fmt.Errorf("event lookup: %w", err)
		}
		if event.UserID != userID {
			return nil, fmt.Errorf("event %s does not belong to user", *eventID)
		}
		events = []*types.Event{event}
	} else {
		var err error
		events, err = s.events.ListByUser(ctx, nil, userID, limit/3)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
	}

	eventIDs := make([]uuid.UUID, len(events))
	for i, e := range events {
		eventIDs[i] = e.ID
	}
	chunks, err := s.chunks.GetByEventIDs(ctx, nil, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	chunkEvents := make(map[uuid.UUID]uuid.UUID, len(chunks))
	chunkIDs := make([]uuid.UUID, len(chunks))
	for i, c := range chunks {
		chunkEvents[c.ID] = c.EventID
		chunkIDs[i] = c.ID
	}

	links, err := s.chunkConcepts.GetByChunkIDs(ctx, nil, userID, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("list concept links: %w", err)
	}

	seen := make(map[uuid.UUID]struct{})
	var conceptIDs []uuid.UUID
	for _, link := range links {
		if _, ok := seen[link.ConceptID]; ok {
			continue
		}
		seen[link.ConceptID] = struct{}{}
		conceptIDs = append(conceptIDs, link.ConceptID)
	}
	concepts, err := s.concepts.GetByIDs(ctx, nil, conceptIDs)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}

	relations, err := s.relations.GetBySrcIDs(ctx, nil, userID, conceptIDs, limit)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	g := Build(Input{
		Events:      events,
		Concepts:    concepts,
		Links:       links,
		Relations:   relations,
		ChunkEvents: chunkEvents,
	})
	s.log.Info("graph exported",
		"user_id", userID, "nodes", len(g.Nodes), "edges", len(g.Edges))
	return g, nil
}

func (s *service) Stats(ctx context.Context, userID uuid.UUID) (*Stats, error) {
	events, err := s.events.ListByUser(ctx, nil, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	concepts, err := s.concepts.ListByUser(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	chunks, err := s.chunks.ListByUser(ctx, nil, userID, 0)
	if err != nil {
		return nil, fmt.Errorf("list chunks: %w", err)
	}
	chunkIDs := make([]uuid.UUID, len(chunks))
	for i, c := range chunks {
		chunkIDs[i] = c.ID
	}
	links, err := s.chunkConcepts.GetByChunkIDs(ctx, nil, userID, chunkIDs)
	if err != nil {
		return nil, fmt.Errorf("list concept links: %w", err)
	}
	conceptIDs := make([]uuid.UUID, len(concepts))
	for i, c := range concepts {
		conceptIDs[i] = c.ID
	}
	relations, err := s.relations.GetBySrcIDs(ctx, nil, userID, conceptIDs, 0)
	if err != nil {
		return nil, fmt.Errorf("list relations: %w", err)
	}

	return &Stats{
		Events:    len(events),
		Concepts:  len(concepts),
		Mentions:  len(links),
		Relations: len(relations),
	}, nil
}
