package server

import (
	"encoding/json"
	"net/http"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *ForgeServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/ideas", s.handleCreateIdea)
	mux.HandleFunc("GET /v1/ideas", s.handleListIdeas)
	mux.HandleFunc("GET /v1/ideas/{id}", s.handleGetIdea)
	mux.HandleFunc("PATCH /v1/ideas/{id}", s.handleUpdateIdea)
	mux.HandleFunc("DELETE /v1/ideas/{id}", s.handleDeleteIdea)
	mux.HandleFunc("POST /v1/ideas/{id}/accept", s.handleAcceptIdea)
	mux.HandleFunc("POST /v1/ideas/{id}/reject", s.handleRejectIdea)
	mux.HandleFunc("GET /v1/ideas/{id}/labels", s.handleGetLabels)
	mux.HandleFunc("POST /v1/ideas/{id}/labels", s.handleAddLabel)
	mux.HandleFunc("DELETE /v1/ideas/{id}/labels/{label}", s.handleRemoveLabel)
	mux.HandleFunc("GET /v1/ideas/{id}/comments", s.handleGetComments)
	mux.HandleFunc("POST /v1/ideas/{id}/comments", s.handleAddComment)
	mux.HandleFunc("POST /v1/scans", s.handleEnqueueScan)
	mux.HandleFunc("GET /v1/scans", s.handleListScans)
	mux.HandleFunc("GET /v1/scans/{id}", s.handleGetScan)
	mux.HandleFunc("POST /v1/scans/{id}/cancel", s.handleCancelScan)
	mux.HandleFunc("GET /v1/scans/{id}/findings", s.handleGetFindings)
	mux.HandleFunc("POST /v1/specs", s.handleCreateSpec)
	mux.HandleFunc("GET /v1/specs", s.handleListSpecs)
	mux.HandleFunc("POST /v1/specs/validate", s.handleValidateSpec)
	mux.HandleFunc("GET /v1/specs/{id}", s.handleGetSpec)
	mux.HandleFunc("PUT /v1/specs/{id}", s.handleUpdateSpec)
	mux.HandleFunc("DELETE /v1/specs/{id}", s.handleDeleteSpec)
	mux.HandleFunc("GET /v1/events", s.handleGetEvents)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("PUT /v1/configs/{key...}", s.handleSetConfig)
	mux.HandleFunc("GET /v1/configs/{key...}", s.handleGetConfig)
	mux.HandleFunc("GET /v1/configs", s.handleListConfigs)
	mux.HandleFunc("DELETE /v1/configs/{key...}", s.handleDeleteConfig)
	mux.HandleFunc("GET /v1/stats", s.handleGetStats)
	mux.HandleFunc("GET /v1/health", s.handleHealth)

	var handler http.Handler = mux
	handler = AuthMiddleware(authToken, handler)
	handler = LoggingMiddleware(handler)
	handler = RecoveryMiddleware(handler)
	return handler
}

// handleHealth handles GET /v1/health.
func (s *ForgeServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleGetStats handles GET /v1/stats.
func (s *ForgeServer) handleGetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.GetStats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
