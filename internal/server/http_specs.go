package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/idgen"
	"github.com/alfredjeanlab/forge/internal/model"
)

// handleCreateSpec handles POST /v1/specs.
func (s *ForgeServer) handleCreateSpec(w http.ResponseWriter, r *http.Request) {
	var spec model.RefactorSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.GenerateWithPrefix(idgen.SpecPrefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}
	spec.ID = id
	if spec.Version == "" {
		spec.Version = model.SpecVersion
	}
	now := time.Now().UTC()
	spec.CreatedAt = now
	spec.UpdatedAt = now

	if err := model.ValidateRefactorSpec(&spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// A spec may reference the idea it implements; reject dangling references.
	if spec.IdeaID != "" {
		if _, err := s.store.GetIdea(r.Context(), spec.IdeaID); errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusBadRequest, "idea_id references an unknown idea")
			return
		} else if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to resolve idea_id")
			return
		}
	}

	if err := s.store.CreateSpec(r.Context(), &spec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create spec")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicSpecCreated, spec.ID, spec.CreatedBy, events.SpecCreated{Spec: &spec})

	writeJSON(w, http.StatusCreated, &spec)
}

// handleGetSpec handles GET /v1/specs/{id}.
func (s *ForgeServer) handleGetSpec(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	spec, err := s.store.GetSpec(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "spec not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get spec")
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// handleListSpecs handles GET /v1/specs.
func (s *ForgeServer) handleListSpecs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, offset := 0, 0
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			offset = n
		}
	}

	specs, total, err := s.store.ListSpecs(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list specs")
		return
	}
	if specs == nil {
		specs = []*model.RefactorSpec{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"specs": specs,
		"total": total,
	})
}

// handleUpdateSpec handles PUT /v1/specs/{id}. The body replaces the stored
// spec wholesale; the ID and creation time are preserved.
func (s *ForgeServer) handleUpdateSpec(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := s.store.GetSpec(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "spec not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get spec")
		return
	}

	var spec model.RefactorSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	spec.ID = existing.ID
	spec.CreatedAt = existing.CreatedAt
	if spec.Version == "" {
		spec.Version = model.SpecVersion
	}
	spec.UpdatedAt = time.Now().UTC()

	if err := model.ValidateRefactorSpec(&spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.UpdateSpec(r.Context(), &spec); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update spec")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicSpecUpdated, spec.ID, "", events.SpecUpdated{Spec: &spec})

	writeJSON(w, http.StatusOK, &spec)
}

// handleDeleteSpec handles DELETE /v1/specs/{id}.
func (s *ForgeServer) handleDeleteSpec(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteSpec(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "spec not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete spec")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicSpecDeleted, id, "", events.SpecDeleted{SpecID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleValidateSpec handles POST /v1/specs/validate. The spec is checked but
// never stored; the response always reports the full list of field errors.
func (s *ForgeServer) handleValidateSpec(w http.ResponseWriter, r *http.Request) {
	var spec model.RefactorSpec
	if err := json.NewDecoder(r.Body).Decode(&spec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if spec.Version == "" {
		spec.Version = model.SpecVersion
	}

	err := model.ValidateRefactorSpec(&spec)
	if err == nil {
		writeJSON(w, http.StatusOK, map[string]any{"valid": true})
		return
	}

	var ve *model.ValidationError
	if !errors.As(err, &ve) {
		writeError(w, http.StatusInternalServerError, "failed to validate spec")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid":  false,
		"errors": ve.Errors,
	})
}
