package app

import (
	"github.com/yungbote/notey-backend/internal/handlers"
	"github.com/yungbote/notey-backend/internal/logger"
)

type Handlers struct {
	Chat        *handlers.ChatHandler
	Concepts    *handlers.ConceptsHandler
	Graph       *handlers.GraphHandler
	Transcripts *handlers.TranscriptsHandler
}

func wireHandlers(log *logger.Logger, serviceset Services, reposet Repos) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Chat:        handlers.NewChatHandler(log, serviceset.Chat),
		Concepts:    handlers.NewConceptsHandler(log, serviceset.Concepts, reposet.Concept),
		Graph:       handlers.NewGraphHandler(log, serviceset.Graph),
		Transcripts: handlers.NewTranscriptsHandler(log, serviceset.Concepts),
	}
}
