package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/graph"
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/requestdata"
)

type GraphHandler struct {
	log      *logger.Logger
	graphSvc graph.Service
}

func NewGraphHandler(log *logger.Logger, graphSvc graph.Service) *GraphHandler {
	return &GraphHandler{
		log:      log.With("handler", "GraphHandler"),
		graphSvc: graphSvc,
	}
}

// GET /api/graph/export?event_id=...&limit=60
func (h *GraphHandler) Export(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	var eventID *uuid.UUID
	if raw := c.Query("event_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "bad_request", errors.New("invalid event id"))
			return
		}
		eventID = &parsed
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	g, err := h.graphSvc.Export(c.Request.Context(), rd.UserID, eventID, limit)
	if err != nil {
		h.log.Error("graph export failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "export_failed", err)
		return
	}
	RespondOK(c, g)
}

// GET /api/graph/stats
func (h *GraphHandler) Stats(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing request identity"))
		return
	}
	stats, err := h.graphSvc.Stats(c.Request.Context(), rd.UserID)
	if err != nil {
		h.log.Error("graph stats failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "stats_failed", err)
		return
	}
	RespondOK(c, stats)
}
