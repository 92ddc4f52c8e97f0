package model

import (
	"encoding/json"
	"time"
)

// IdeaStatus represents the current state of an idea.
type IdeaStatus string

const (
	StatusProposed   IdeaStatus = "proposed"
	StatusAccepted   IdeaStatus = "accepted"
	StatusInProgress IdeaStatus = "in_progress"
	StatusShipped    IdeaStatus = "shipped"
	StatusRejected   IdeaStatus = "rejected"
	StatusArchived   IdeaStatus = "archived"
)

// String returns the string representation of the status.
func (s IdeaStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s IdeaStatus) IsValid() bool {
	switch s {
	case StatusProposed, StatusAccepted, StatusInProgress, StatusShipped, StatusRejected, StatusArchived:
		return true
	}
	return false
}

// IsDecided reports whether the status is past the review stage.
func (s IdeaStatus) IsDecided() bool {
	return s != StatusProposed
}

// Idea is the core record of the workspace: a product or refactoring
// suggestion, either produced by a codebase scan or entered by hand.
type Idea struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Status    IdeaStatus      `json:"status"`
	Priority  int             `json:"priority"`
	Framework Framework       `json:"framework,omitempty"` // framework of origin when scan-generated
	ScanID    string          `json:"scan_id,omitempty"`   // originating scan, empty for manual ideas
	Effort    int             `json:"effort"`              // 0-5 rough implementation cost
	Impact    int             `json:"impact"`              // 0-5 expected payoff
	Author    string          `json:"author,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DecidedAt *time.Time      `json:"decided_at,omitempty"`
	DecidedBy string          `json:"decided_by,omitempty"`
	Fields    json.RawMessage `json:"fields,omitempty"` // open-ended extension data

	// Relational data -- populated by queries, not stored in the ideas table.
	Labels   []string   `json:"labels,omitempty"`
	Comments []*Comment `json:"comments,omitempty"`
}
