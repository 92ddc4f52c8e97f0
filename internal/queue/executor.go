package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/idgen"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/scan"
	"github.com/alfredjeanlab/forge/internal/store"
)

// Executor turns idea seeds from a scan result into persisted Idea records.
type Executor struct {
	store     store.Store
	publisher events.Publisher
	logger    *slog.Logger
}

// NewExecutor creates an executor over the given store and publisher.
func NewExecutor(s store.Store, p events.Publisher, logger *slog.Logger) *Executor {
	return &Executor{store: s, publisher: p, logger: logger}
}

// Execute creates one idea per seed and returns the number created.
// Seeds with duplicate titles (within this run or from an earlier run of
// the same scan) are skipped, so re-running a scan never doubles its ideas.
func (e *Executor) Execute(ctx context.Context, job *model.ScanJob, framework model.Framework, seeds []scan.IdeaSeed) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}

	// Titles already generated for this scan, for idempotent re-runs.
	existing, _, err := e.store.ListIdeas(ctx, model.IdeaFilter{ScanID: job.ID})
	if err != nil {
		return 0, fmt.Errorf("list existing ideas for scan %s: %w", job.ID, err)
	}
	seen := make(map[string]bool, len(existing))
	for _, idea := range existing {
		seen[strings.ToLower(idea.Title)] = true
	}

	created := 0
	for _, seed := range seeds {
		key := strings.ToLower(strings.TrimSpace(seed.Title))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		id, err := idgen.GenerateWithPrefix(idgen.IdeaPrefix)
		if err != nil {
			return created, err
		}

		now := time.Now().UTC()
		idea := &model.Idea{
			ID:        id,
			Title:     seed.Title,
			Summary:   seed.Summary,
			Status:    model.StatusProposed,
			Priority:  2,
			Framework: framework,
			ScanID:    job.ID,
			Effort:    seed.Effort,
			Impact:    seed.Impact,
			Author:    "scanner",
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := model.ValidateIdea(idea); err != nil {
			// A malformed seed is an adapter bug; skip it rather than
			// failing the whole scan.
			e.logger.Warn("skipping invalid idea seed", "scan", job.ID, "title", seed.Title, "err", err)
			continue
		}

		if err := e.store.CreateIdea(ctx, idea); err != nil {
			return created, fmt.Errorf("create idea for scan %s: %w", job.ID, err)
		}
		created++

		// Recorded as well as published, so the idea's event history shows
		// its creation just like ideas entered through the API.
		recordAndPublish(ctx, e.store, e.publisher, e.logger, events.TopicIdeaCreated, idea.ID, events.IdeaCreated{Idea: idea})
	}

	return created, nil
}
