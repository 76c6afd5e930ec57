package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/cdekimpe/kagent-memory/internal/common"
	"github.com/cdekimpe/kagent-memory/internal/interfaces"
	"github.com/cdekimpe/kagent-memory/internal/models"
)

type APIHandler struct {
	memoryService interfaces.MemoryService
	logger        arbor.ILogger
}

func NewAPIHandler(memoryService interfaces.MemoryService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		memoryService: memoryService,
		logger:        logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status including store connectivity.
// A degraded store is reported in the body with HTTP 200, never as an error.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	connected := h.memoryService.HealthCheck(r.Context())

	status := "healthy"
	if !connected {
		status = "degraded"
	}

	WriteJSON(w, http.StatusOK, models.HealthResponse{
		Status:         status,
		Version:        common.GetVersion(),
		StoreConnected: connected,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
