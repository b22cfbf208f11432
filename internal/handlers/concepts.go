package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/concepts"
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/repos"
	"github.com/yungbote/notey-backend/internal/requestdata"
)

type ConceptsHandler struct {
	log         *logger.Logger
	conceptSvc  concepts.Service
	conceptRepo repos.ConceptRepo
}

func NewConceptsHandler(log *logger.Logger, conceptSvc concepts.Service, conceptRepo repos.ConceptRepo) *ConceptsHandler {
	return &ConceptsHandler{
		log:         log.With("handler", "ConceptsHandler"),
		conceptSvc:  conceptSvc,
		conceptRepo: conceptRepo,
	}
}

// POST /api/chunks/:id/concepts
// Upsert a validated mention list for one chunk.
func (h *ConceptsHandler) UpsertChunkConcepts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	chunkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid chunk id"))
		return
	}
	var req struct {
		Mentions []concepts.Mention `json:"mentions"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	inserted, err := h.conceptSvc.UpsertMentions(c.Request.Context(), rd.UserID, chunkID, req.Mentions)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "upsert_failed", err)
		return
	}
	RespondOK(c, gin.H{"inserted": inserted})
}

// GET /api/chunks/:id/concepts
func (h *ConceptsHandler) GetChunkConcepts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	chunkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid chunk id"))
		return
	}
	links, err := h.conceptSvc.GetChunkConcepts(c.Request.Context(), rd.UserID, chunkID)
	if err != nil {
		h.log.Error("failed to load chunk concepts", "chunk_id", chunkID, "error", err)
		RespondError(c, http.StatusInternalServerError, "lookup_failed", err)
		return
	}
	RespondOK(c, gin.H{"concepts": links})
}

// DELETE /api/chunks/:id/concepts
func (h *ConceptsHandler) DeleteChunkConcepts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	chunkID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid chunk id"))
		return
	}
	if err := h.conceptSvc.DeleteChunkConcepts(c.Request.Context(), rd.UserID, chunkID); err != nil {
		h.log.Error("failed to delete chunk concepts", "chunk_id", chunkID, "error", err)
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}

// GET /api/concepts
func (h *ConceptsHandler) ListConcepts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	rows, err := h.conceptRepo.ListByUser(c.Request.Context(), nil, rd.UserID)
	if err != nil {
		h.log.Error("failed to list concepts", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_failed", err)
		return
	}
	RespondOK(c, gin.H{"concepts": rows})
}

// DELETE /api/concepts/:id
func (h *ConceptsHandler) DeleteConcept(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	conceptID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid concept id"))
		return
	}
	if err := h.conceptRepo.Delete(c.Request.Context(), nil, rd.UserID, conceptID); err != nil {
		h.log.Error("failed to delete concept", "concept_id", conceptID, "error", err)
		RespondError(c, http.StatusInternalServerError, "delete_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
