package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/notey-backend/internal/chat"
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/requestdata"
)

type ChatHandler struct {
	log     *logger.Logger
	chatSvc chat.Service
}

func NewChatHandler(log *logger.Logger, chatSvc chat.Service) *ChatHandler {
	return &ChatHandler{
		log:     log.With("handler", "ChatHandler"),
		chatSvc: chatSvc,
	}
}

// POST /api/chat/ask
// Answer a question from the user's notes, with cited sources.
func (h *ChatHandler) Ask(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid request body"))
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("query must not be empty"))
		return
	}
	result, err := h.chatSvc.Ask(c.Request.Context(), rd.UserID, req.Query)
	if err != nil {
		h.log.Error("ask failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "ask_failed", err)
		return
	}
	RespondOK(c, result)
}

// GET /api/chat/concepts/search?q=...&limit=10
// Rank the user's concepts against a free-text query.
func (h *ChatHandler) SearchConcepts(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("q must not be empty"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	results, err := h.chatSvc.SearchConcepts(c.Request.Context(), rd.UserID, query, limit)
	if err != nil {
		h.log.Error("concept search failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "search_failed", err)
		return
	}
	RespondOK(c, gin.H{"results": results})
}

// GET /api/chat/notes?concept=...
// Notes for the closest matching concept by name.
func (h *ChatHandler) GetNotesByConcept(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	conceptName := strings.TrimSpace(c.Query("concept"))
	if conceptName == "" {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("concept must not be empty"))
		return
	}
	notes, err := h.chatSvc.GetNotesByConcept(c.Request.Context(), rd.UserID, conceptName)
	if err != nil {
		h.log.Error("notes lookup failed", "concept", conceptName, "error", err)
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondOK(c, gin.H{"notes": notes})
}

// GET /api/chat/history?limit=50
func (h *ChatHandler) History(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	messages, err := h.chatSvc.History(c.Request.Context(), rd.UserID, limit)
	if err != nil {
		h.log.Error("history lookup failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "history_failed", err)
		return
	}
	RespondOK(c, gin.H{"messages": messages})
}
