package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/notey-backend/internal/server"
)

func wireRouter(cfg Config, handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		ServiceName:        cfg.ServiceName,
		AuthMiddleware:     middlewareset.Auth,
		ChatHandler:        handlerset.Chat,
		ConceptsHandler:    handlerset.Concepts,
		GraphHandler:       handlerset.Graph,
		TranscriptsHandler: handlerset.Transcripts,
	})
}
