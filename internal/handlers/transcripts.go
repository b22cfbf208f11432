package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/notey-backend/internal/concepts"
	"github.com/yungbote/notey-backend/internal/logger"
	"github.com/yungbote/notey-backend/internal/requestdata"
)

// Uploads beyond this are rejected before touching the speech backend.
const maxAudioBytes = 25 << 20

type TranscriptsHandler struct {
	log        *logger.Logger
	conceptSvc concepts.Service
}

func NewTranscriptsHandler(log *logger.Logger, conceptSvc concepts.Service) *TranscriptsHandler {
	return &TranscriptsHandler{
		log:        log.With("handler", "TranscriptsHandler"),
		conceptSvc: conceptSvc,
	}
}

// POST /api/chunks/:id/transcripts/process
// Transcribe and summarize an uploaded audio chunk, then extract concepts.
func (h *TranscriptsHandler) Process(c *gin.Context) {
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

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", errors.New("missing audio file"))
		return
	}
	if fileHeader.Size > maxAudioBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "too_large", errors.New("audio file too large"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	defer file.Close()
	audio, err := io.ReadAll(file)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")

	chunk, mentions, err := h.conceptSvc.ProcessChunk(c.Request.Context(), rd.UserID, chunkID, audio, mimeType)
	if err != nil {
		h.log.Error("chunk processing failed", "chunk_id", chunkID, "error", err)
		RespondError(c, http.StatusInternalServerError, "process_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"chunk":    chunk,
		"mentions": mentions,
	})
}
