// Package sync exports the workspace as JSONL and ships it to remote
// destinations (S3 buckets, git repos) on a schedule.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	IdeaCount   int       `json:"idea_count"`
	SpecCount   int       `json:"spec_count"`
	ConfigCount int       `json:"config_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ExportJSONL writes all ideas, refactor specs, and configs from the store as
// JSONL to w. Ideas are sorted by ID and include embedded labels and comments.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	// Fetch all ideas (no filter, no limit).
	ideas, _, err := s.ListIdeas(ctx, model.IdeaFilter{Sort: "created_at"})
	if err != nil {
		return fmt.Errorf("list ideas: %w", err)
	}

	// Populate relational data for each idea.
	for _, i := range ideas {
		labels, err := s.GetLabels(ctx, i.ID)
		if err != nil {
			return fmt.Errorf("get labels for %s: %w", i.ID, err)
		}
		i.Labels = labels

		comments, err := s.GetComments(ctx, i.ID)
		if err != nil {
			return fmt.Errorf("get comments for %s: %w", i.ID, err)
		}
		i.Comments = comments
	}

	// Sort ideas by ID.
	sort.Slice(ideas, func(i, j int) bool {
		return ideas[i].ID < ideas[j].ID
	})

	// Fetch all specs.
	specs, _, err := s.ListSpecs(ctx, 0, 0)
	if err != nil {
		return fmt.Errorf("list specs: %w", err)
	}
	sort.Slice(specs, func(i, j int) bool {
		return specs[i].ID < specs[j].ID
	})

	// Fetch all configs.
	configs, err := s.ListAllConfigs(ctx)
	if err != nil {
		return fmt.Errorf("list configs: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	// Write header.
	if err := enc.Encode(header{
		Version:     "1",
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		IdeaCount:   len(ideas),
		SpecCount:   len(specs),
		ConfigCount: len(configs),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	// Write ideas.
	for _, i := range ideas {
		if err := enc.Encode(record{Type: "idea", Data: i}); err != nil {
			return fmt.Errorf("encode idea %s: %w", i.ID, err)
		}
	}

	// Write specs.
	for _, sp := range specs {
		if err := enc.Encode(record{Type: "spec", Data: sp}); err != nil {
			return fmt.Errorf("encode spec %s: %w", sp.ID, err)
		}
	}

	// Write configs.
	for _, c := range configs {
		if err := enc.Encode(record{Type: "config", Data: c}); err != nil {
			return fmt.Errorf("encode config %s: %w", c.Key, err)
		}
	}

	return nil
}
