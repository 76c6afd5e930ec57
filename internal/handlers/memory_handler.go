package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/models"
	"github.com/cdekimpe/kagent-memory/internal/services/memory"
)

// userIDHeader carries the caller identity when the request body omits it.
const userIDHeader = "X-User-ID"

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	memoryService interfaces.MemoryService
	config        *common.Config
	logger        arbor.ILogger
	validate      *validator.Validate
}

// NewMemoryHandler creates a new memory handler with dependencies
func NewMemoryHandler(memoryService interfaces.MemoryService, config *common.Config, logger arbor.ILogger) *MemoryHandler {
	return &MemoryHandler{
		memoryService: memoryService,
		config:        config,
		logger:        logger,
		validate:      validator.New(),
	}
}

// AddHandler handles POST /api/memory requests
func (h *MemoryHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.AddMemoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(userIDHeader)
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.memoryService.AddMemory(r.Context(), req.Content, req.Metadata, req.UserID, req.SessionID, req.AgentName)
	if err != nil {
		h.writeServiceError(w, err, "Failed to add memory")
		return
	}

	h.logger.Info().
		Str("user_id", req.UserID).
		Int("chunks", resp.ChunksCreated).
		Msg("Memory add request completed")

	WriteJSON(w, http.StatusOK, resp)
}

// SearchHandler handles POST /api/memory/search requests
func (h *MemoryHandler) SearchHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.SearchMemoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(userIDHeader)
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	// Apply configured defaults for anything the request leaves unset.
	if req.TopK <= 0 {
		req.TopK = h.config.Search.TopK
	}
	if req.ScoreThreshold == nil && h.config.Search.ScoreThreshold > 0 {
		threshold := h.config.Search.ScoreThreshold
		req.ScoreThreshold = &threshold
	}

	resp, err := h.memoryService.SearchMemory(r.Context(), &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to search memory")
		return
	}

	h.logger.Debug().
		Str("query", req.Query).
		Int("results", len(resp.Results)).
		Msg("Memory search request completed")

	WriteJSON(w, http.StatusOK, resp)
}

// SessionHandler handles POST /api/memory/session requests
func (h *MemoryHandler) SessionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req models.SessionMemoryRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.UserID == "" {
		req.UserID = r.Header.Get(userIDHeader)
	}
	if err := h.validate.Struct(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	resp, err := h.memoryService.AddSessionToMemory(r.Context(), req.SessionID, req.UserID, req.Events, req.AppName)
	if err != nil {
		h.writeServiceError(w, err, "Failed to add session to memory")
		return
	}

	h.logger.Info().
		Str("session_id", req.SessionID).
		Int("chunks", resp.ChunksCreated).
		Msg("Session memory request completed")

	WriteJSON(w, http.StatusOK, resp)
}

// DeleteHandler handles DELETE /api/memory/{user_id} requests. The user id
// comes from the path, falling back to the user_id query parameter and then
// the X-User-ID header; session and agent scope stay as query parameters.
func (h *MemoryHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	userID := r.PathValue("user_id")
	if userID == "" {
		userID = r.URL.Query().Get("user_id")
	}
	if userID == "" {
		userID = r.Header.Get(userIDHeader)
	}
	if userID == "" {
		WriteError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	count, err := h.memoryService.DeleteMemories(r.Context(),
		userID,
		r.URL.Query().Get("session_id"),
		r.URL.Query().Get("agent_name"),
	)
	if err != nil {
		h.writeServiceError(w, err, "Failed to delete memories")
		return
	}

	WriteJSON(w, http.StatusOK, models.DeleteMemoryResponse{DeletedCount: count})
}

// writeServiceError maps service failures to transport responses. Upstream
// collaborator failures surface as 502 so callers can distinguish them from
// handler-side problems.
func (h *MemoryHandler) writeServiceError(w http.ResponseWriter, err error, message string) {
	h.logger.Error().Err(err).Msg(message)

	if errors.Is(err, memory.ErrNotInitialized) {
		WriteError(w, http.StatusServiceUnavailable, "Memory service is not ready")
		return
	}
	WriteError(w, http.StatusBadGateway, message+": "+err.Error())
}
