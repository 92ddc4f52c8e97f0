package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/idgen"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// createIdeaInput holds parameters for creating an idea.
type createIdeaInput struct {
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Notes     string          `json:"notes"`
	Priority  int             `json:"priority"`
	Framework string          `json:"framework"`
	Effort    int             `json:"effort"`
	Impact    int             `json:"impact"`
	Author    string          `json:"author"`
	Labels    []string        `json:"labels"`
	Fields    json.RawMessage `json:"fields"`
}

// createIdea validates input, persists a new idea with labels, and publishes
// an IdeaCreated event. Returns inputError for validation failures.
func (s *ForgeServer) createIdea(ctx context.Context, in createIdeaInput) (*model.Idea, error) {
	id, err := idgen.GenerateWithPrefix(idgen.IdeaPrefix)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ID: %w", err)
	}

	now := time.Now().UTC()
	idea := &model.Idea{
		ID:        id,
		Title:     in.Title,
		Summary:   in.Summary,
		Notes:     in.Notes,
		Status:    model.StatusProposed,
		Priority:  in.Priority,
		Framework: model.Framework(in.Framework),
		Effort:    in.Effort,
		Impact:    in.Impact,
		Author:    in.Author,
		CreatedAt: now,
		UpdatedAt: now,
		Labels:    in.Labels,
	}
	if len(in.Fields) > 0 {
		idea.Fields = in.Fields
	}

	if err := model.ValidateIdea(idea); err != nil {
		return nil, inputError("invalid idea: " + err.Error())
	}

	// The idea row and its labels land together or not at all.
	err = s.store.RunInTransaction(ctx, func(tx store.Store) error {
		if err := tx.CreateIdea(ctx, idea); err != nil {
			return fmt.Errorf("failed to create idea: %w", err)
		}
		for _, label := range idea.Labels {
			if err := tx.AddLabel(ctx, idea.ID, label); err != nil {
				return fmt.Errorf("failed to add label %q: %w", label, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicIdeaCreated, idea.ID, idea.Author, events.IdeaCreated{Idea: idea})

	return idea, nil
}

// updateIdeaInput holds optional parameters for updating an idea.
// Pointer fields indicate optionality: nil means "don't change".
type updateIdeaInput struct {
	Title    *string         `json:"title,omitempty"`
	Summary  *string         `json:"summary,omitempty"`
	Notes    *string         `json:"notes,omitempty"`
	Status   *string         `json:"status,omitempty"`
	Priority *int            `json:"priority,omitempty"`
	Effort   *int            `json:"effort,omitempty"`
	Impact   *int            `json:"impact,omitempty"`
	Fields   json.RawMessage `json:"fields,omitempty"`
	Labels   []string        `json:"labels,omitempty"`
}

// updateIdea applies partial updates to an existing idea, persists them,
// and publishes an IdeaUpdated event. Returns inputError for validation failures.
func (s *ForgeServer) updateIdea(ctx context.Context, id string, in updateIdeaInput) (*model.Idea, error) {
	idea, err := s.store.GetIdea(ctx, id)
	if err != nil {
		return nil, err
	}
	if idea == nil {
		return nil, sql.ErrNoRows
	}

	changes := make(map[string]any)

	if in.Title != nil {
		idea.Title = *in.Title
		changes["title"] = idea.Title
	}
	if in.Summary != nil {
		idea.Summary = *in.Summary
		changes["summary"] = idea.Summary
	}
	if in.Notes != nil {
		idea.Notes = *in.Notes
		changes["notes"] = idea.Notes
	}
	if in.Status != nil {
		idea.Status = model.IdeaStatus(*in.Status)
		changes["status"] = idea.Status
	}
	if in.Priority != nil {
		idea.Priority = *in.Priority
		changes["priority"] = idea.Priority
	}
	if in.Effort != nil {
		idea.Effort = *in.Effort
		changes["effort"] = idea.Effort
	}
	if in.Impact != nil {
		idea.Impact = *in.Impact
		changes["impact"] = idea.Impact
	}

	if in.Fields != nil {
		// Merge incoming fields into existing fields (patch semantics).
		existing := make(map[string]any)
		if len(idea.Fields) > 0 {
			_ = json.Unmarshal(idea.Fields, &existing)
		}
		var patch map[string]any
		if err := json.Unmarshal(in.Fields, &patch); err == nil {
			for k, v := range patch {
				existing[k] = v
			}
		}
		merged, mergeErr := json.Marshal(existing)
		if mergeErr != nil {
			return nil, fmt.Errorf("failed to merge fields: %w", mergeErr)
		}
		idea.Fields = merged
		changes["fields"] = idea.Fields
	}
	if in.Labels != nil {
		idea.Labels = in.Labels
		changes["labels"] = idea.Labels
	}

	// Reconcile DecidedAt with Status changes.
	if idea.Status.IsDecided() && idea.DecidedAt == nil {
		now := time.Now().UTC()
		idea.DecidedAt = &now
		changes["decided_at"] = idea.DecidedAt
	}
	if !idea.Status.IsDecided() && idea.DecidedAt != nil {
		idea.DecidedAt = nil
		idea.DecidedBy = ""
		changes["decided_at"] = idea.DecidedAt
	}

	idea.UpdatedAt = time.Now().UTC()

	if err := model.ValidateIdea(idea); err != nil {
		return nil, inputError("invalid idea: " + err.Error())
	}

	if err := s.store.UpdateIdea(ctx, idea); err != nil {
		return nil, fmt.Errorf("failed to update idea: %w", err)
	}

	if _, ok := changes["labels"]; ok {
		if err := s.reconcileLabels(ctx, idea.ID, idea.Labels); err != nil {
			return nil, fmt.Errorf("failed to reconcile labels: %w", err)
		}
	}

	s.recordAndPublish(ctx, events.TopicIdeaUpdated, idea.ID, "", events.IdeaUpdated{
		Idea:    idea,
		Changes: changes,
	})

	return idea, nil
}

// reconcileLabels compares the desired labels with the existing labels in
// the store and adds/removes as needed.
func (s *ForgeServer) reconcileLabels(ctx context.Context, ideaID string, newLabels []string) error {
	existing, err := s.store.GetLabels(ctx, ideaID)
	if err != nil {
		return err
	}

	existingSet := make(map[string]struct{}, len(existing))
	for _, l := range existing {
		existingSet[l] = struct{}{}
	}
	newSet := make(map[string]struct{}, len(newLabels))
	for _, l := range newLabels {
		newSet[l] = struct{}{}
	}

	// Remove labels that are no longer desired.
	for _, l := range existing {
		if _, ok := newSet[l]; !ok {
			if err := s.store.RemoveLabel(ctx, ideaID, l); err != nil {
				return err
			}
		}
	}
	// Add labels that are new.
	for _, l := range newLabels {
		if _, ok := existingSet[l]; !ok {
			if err := s.store.AddLabel(ctx, ideaID, l); err != nil {
				return err
			}
		}
	}

	return nil
}

// decideIdea moves a proposed idea to an accepted or rejected state and
// publishes an IdeaDecided event.
func (s *ForgeServer) decideIdea(ctx context.Context, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error) {
	idea, err := s.store.DecideIdea(ctx, id, status, decidedBy)
	if err != nil {
		return nil, err
	}

	s.recordAndPublish(ctx, events.TopicIdeaDecided, idea.ID, decidedBy, events.IdeaDecided{
		Idea:      idea,
		Status:    status,
		DecidedBy: decidedBy,
	})

	return idea, nil
}
