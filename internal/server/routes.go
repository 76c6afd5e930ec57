package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// API routes - Memory
	mux.HandleFunc("/api/memory", s.handleMemoryRoute)
	mux.HandleFunc("DELETE /api/memory/{user_id}", s.app.MemoryHandler.DeleteHandler)
	mux.HandleFunc("POST /api/memory/search", s.app.MemoryHandler.SearchHandler)
	mux.HandleFunc("POST /api/memory/session", s.app.MemoryHandler.SessionHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleMemoryRoute dispatches /api/memory by method: POST adds a memory,
// DELETE removes memories by identity filter.
func (s *Server) handleMemoryRoute(w http.ResponseWriter, r *http.Request) {
	RouteByMethod(w, r, MethodRouter{
		http.MethodPost:   s.app.MemoryHandler.AddHandler,
		http.MethodDelete: s.app.MemoryHandler.DeleteHandler,
	})
}
