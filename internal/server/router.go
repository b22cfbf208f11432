package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/notey-backend/internal/handlers"
	"github.com/yungbote/notey-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName string

	AuthMiddleware *middleware.AuthMiddleware

	ChatHandler        *handlers.ChatHandler
	ConceptsHandler    *handlers.ConceptsHandler
	GraphHandler       *handlers.GraphHandler
	TranscriptsHandler *handlers.TranscriptsHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware(cfg.ServiceName))

	// Cors
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// ===============
	// || Public    ||
	// ===============
	router.GET("/healthcheck", handlers.HealthCheck)

	// ===============
	// || Protected ||
	// ===============
	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())

	// Chat
	api.POST("/chat/ask", cfg.ChatHandler.Ask)
	api.GET("/chat/concepts/search", cfg.ChatHandler.SearchConcepts)
	api.GET("/chat/notes", cfg.ChatHandler.GetNotesByConcept)
	api.GET("/chat/history", cfg.ChatHandler.History)

	// Concepts
	api.GET("/concepts", cfg.ConceptsHandler.ListConcepts)
	api.DELETE("/concepts/:id", cfg.ConceptsHandler.DeleteConcept)
	api.POST("/chunks/:id/concepts", cfg.ConceptsHandler.UpsertChunkConcepts)
	api.GET("/chunks/:id/concepts", cfg.ConceptsHandler.GetChunkConcepts)
	api.DELETE("/chunks/:id/concepts", cfg.ConceptsHandler.DeleteChunkConcepts)

	// Transcripts
	api.POST("/chunks/:id/transcripts/process", cfg.TranscriptsHandler.Process)

	// Graph
	api.GET("/graph/export", cfg.GraphHandler.Export)
	api.GET("/graph/stats", cfg.GraphHandler.Stats)

	return router
}
