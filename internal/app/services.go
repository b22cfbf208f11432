package app

import (
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/chat"
	"github.com/yungbote/notey-backend/internal/concepts"
	"github.com/yungbote/notey-backend/internal/graph"
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/search"
	"github.com/yungbote/notey-backend/internal/services"
)

type Services struct {
	AIClient      services.AIClient
	Transcription services.TranscriptionService
	Extractor     *concepts.Extractor
	Concepts      concepts.Service
	Index         *search.EmbeddingIndex
	Semantic      *search.Service
	Aggregator    *chat.Aggregator
	Chat          chat.Service
	Graph         graph.Service
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, cache *redis.Client) (Services, error) {
	log.Info("Wiring services...")

	aiClient, err := services.NewAIClient(log)
	if err != nil {
		return Services{}, fmt.Errorf("init ai client: %w", err)
	}
	transcription, err := services.NewTranscriptionService(log, aiClient)
	if err != nil {
		return Services{}, fmt.Errorf("init transcription: %w", err)
	}

	extractor := concepts.NewExtractor(log, aiClient)
	conceptSvc := concepts.NewService(log, db, reposet.AudioChunk, reposet.Concept, reposet.ChunkConcept, extractor, transcription)

	index := search.NewEmbeddingIndex(log, aiClient, cfg.EmbedDim, cfg.EmbedModel, cache)
	semantic := search.NewService(log, index)

	aggregator := chat.NewAggregator(log)
	chatSvc := chat.NewService(
		log,
		reposet.Event,
		reposet.AudioChunk,
		reposet.Concept,
		reposet.ChunkConcept,
		reposet.ChatMessage,
		semantic,
		aggregator,
		aiClient,
	)
	graphSvc := graph.NewService(log, reposet.Event, reposet.AudioChunk, reposet.Concept, reposet.ChunkConcept, reposet.ConceptRelation)

	return Services{
		AIClient:      aiClient,
		Transcription: transcription,
		Extractor:     extractor,
		Concepts:      conceptSvc,
		Index:         index,
		Semantic:      semantic,
		Aggregator:    aggregator,
		Chat:          chatSvc,
		Graph:         graphSvc,
	}, nil
}
