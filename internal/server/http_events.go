package server

import (
	"net/http"

	"github.com/alfredjeanlab/forge/internal/model"
)

// handleGetEvents handles GET /v1/events?entity_id=...
func (s *ForgeServer) handleGetEvents(w http.ResponseWriter, r *http.Request) {
	entityID := r.URL.Query().Get("entity_id")
	if entityID == "" {
		writeError(w, http.StatusBadRequest, "entity_id query parameter is required")
		return
	}

	events, err := s.store.GetEvents(r.Context(), entityID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get events")
		return
	}
	if events == nil {
		events = []*model.Event{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
