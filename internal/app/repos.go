package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/repos"
)

type Repos struct {
	Event           repos.EventRepo
	AudioChunk      repos.AudioChunkRepo
	Concept         repos.ConceptRepo
	ChunkConcept    repos.ChunkConceptRepo
	ConceptRelation repos.ConceptRelationRepo
	ChatMessage     repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Event:           repos.NewEventRepo(db, log),
		AudioChunk:      repos.NewAudioChunkRepo(db, log),
		Concept:         repos.NewConceptRepo(db, log),
		ChunkConcept:    repos.NewChunkConceptRepo(db, log),
		ConceptRelation: repos.NewConceptRelationRepo(db, log),
		ChatMessage:     repos.NewChatMessageRepo(db, log),
	}
}
