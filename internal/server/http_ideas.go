package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// handleCreateIdea handles POST /v1/ideas.
func (s *ForgeServer) handleCreateIdea(w http.ResponseWriter, r *http.Request) {
	var in createIdeaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	idea, err := s.createIdea(r.Context(), in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusCreated, idea)
}

// handleListIdeas handles GET /v1/ideas.
func (s *ForgeServer) handleListIdeas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.IdeaFilter{
		ScanID: q.Get("scan_id"),
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.IdeaStatus(st))
		}
	}
	if v := q.Get("framework"); v != "" {
		for _, f := range strings.Split(v, ",") {
			filter.Framework = append(filter.Framework, model.Framework(f))
		}
	}
	if v := q.Get("labels"); v != "" {
		filter.Labels = strings.Split(v, ",")
	}
	if v := q.Get("priority"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Priority = &n
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	ideas, total, err := s.store.ListIdeas(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list ideas")
		return
	}

	// Ensure ideas is never null in JSON output.
	if ideas == nil {
		ideas = []*model.Idea{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ideas": ideas,
		"total": total,
	})
}

// handleGetIdea handles GET /v1/ideas/{id}.
func (s *ForgeServer) handleGetIdea(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	idea, err := s.store.GetIdea(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get idea")
		return
	}
	if idea == nil {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// handleUpdateIdea handles PATCH /v1/ideas/{id}.
func (s *ForgeServer) handleUpdateIdea(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var in updateIdeaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	idea, err := s.updateIdea(r.Context(), id, in)
	if err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeError(w, http.StatusBadRequest, ie.Error())
			return
		}
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "idea not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// handleDeleteIdea handles DELETE /v1/ideas/{id}.
func (s *ForgeServer) handleDeleteIdea(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.DeleteIdea(r.Context(), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "idea not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete idea")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicIdeaDeleted, id, "", events.IdeaDeleted{IdeaID: id})

	w.WriteHeader(http.StatusNoContent)
}

// handleAcceptIdea handles POST /v1/ideas/{id}/accept.
func (s *ForgeServer) handleAcceptIdea(w http.ResponseWriter, r *http.Request) {
	s.handleDecideIdea(w, r, model.StatusAccepted)
}

// handleRejectIdea handles POST /v1/ideas/{id}/reject.
func (s *ForgeServer) handleRejectIdea(w http.ResponseWriter, r *http.Request) {
	s.handleDecideIdea(w, r, model.StatusRejected)
}

// handleDecideIdea accepts or rejects a proposed idea. Accepts an optional
// JSON body with "decided_by".
func (s *ForgeServer) handleDecideIdea(w http.ResponseWriter, r *http.Request, status model.IdeaStatus) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	var body struct {
		DecidedBy string `json:"decided_by"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	idea, err := s.decideIdea(r.Context(), id, status, body.DecidedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			writeError(w, http.StatusNotFound, "idea not found")
			return
		}
		if errors.Is(err, store.ErrInvalidTransition) {
			writeError(w, http.StatusConflict, "idea is already decided")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to decide idea")
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// handleGetLabels handles GET /v1/ideas/{id}/labels.
func (s *ForgeServer) handleGetLabels(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	labels, err := s.store.GetLabels(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get labels")
		return
	}
	if labels == nil {
		labels = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"labels": labels})
}

// handleAddLabel handles POST /v1/ideas/{id}/labels.
func (s *ForgeServer) handleAddLabel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Label string `json:"label"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	if err := s.store.AddLabel(r.Context(), id, body.Label); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add label")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicLabelAdded, id, "", events.LabelAdded{
		IdeaID: id,
		Label:  body.Label,
	})

	// Fetch the updated idea to return.
	idea, err := s.store.GetIdea(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && idea == nil) {
		writeError(w, http.StatusNotFound, "idea not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get idea after adding label")
		return
	}

	writeJSON(w, http.StatusOK, idea)
}

// handleRemoveLabel handles DELETE /v1/ideas/{id}/labels/{label}.
func (s *ForgeServer) handleRemoveLabel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	label := r.PathValue("label")
	if label == "" {
		writeError(w, http.StatusBadRequest, "label is required")
		return
	}

	if err := s.store.RemoveLabel(r.Context(), id, label); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to remove label")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicLabelRemoved, id, "", events.LabelRemoved{
		IdeaID: id,
		Label:  label,
	})

	w.WriteHeader(http.StatusNoContent)
}

// handleGetComments handles GET /v1/ideas/{id}/comments.
func (s *ForgeServer) handleGetComments(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	comments, err := s.store.GetComments(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get comments")
		return
	}
	if comments == nil {
		comments = []*model.Comment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// handleAddComment handles POST /v1/ideas/{id}/comments.
func (s *ForgeServer) handleAddComment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var body struct {
		Author string `json:"author"`
		Text   string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	comment := &model.Comment{
		IdeaID:    id,
		Author:    body.Author,
		Text:      body.Text,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AddComment(r.Context(), comment); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicCommentAdded, id, body.Author, events.CommentAdded{Comment: comment})

	writeJSON(w, http.StatusCreated, comment)
}
