package events

import (
	"context"

	"github.com/alfredjeanlab/forge/internal/model"
)

// Event topic constants
const (
	TopicIdeaCreated = "forge.idea.created"
	TopicIdeaUpdated = "forge.idea.updated"
	TopicIdeaDecided = "forge.idea.decided"
	TopicIdeaDeleted = "forge.idea.deleted"

	TopicLabelAdded   = "forge.label.added"
	TopicLabelRemoved = "forge.label.removed"
	TopicCommentAdded = "forge.comment.added"

	// Scan queue lifecycle
	TopicScanEnqueued  = "forge.scan.enqueued"
	TopicScanStarted   = "forge.scan.started"
	TopicScanCompleted = "forge.scan.completed"
	TopicScanFailed    = "forge.scan.failed"
	TopicScanCanceled  = "forge.scan.canceled"

	// Refactor specs
	TopicSpecCreated = "forge.spec.created"
	TopicSpecUpdated = "forge.spec.updated"
	TopicSpecDeleted = "forge.spec.deleted"
)

// Event types

type IdeaCreated struct {
	Idea *model.Idea `json:"idea"`
}

type IdeaUpdated struct {
	Idea    *model.Idea    `json:"idea"`
	Changes map[string]any `json:"changes"` // field name -> new value
}

type IdeaDecided struct {
	Idea      *model.Idea      `json:"idea"`
	Status    model.IdeaStatus `json:"status"`
	DecidedBy string           `json:"decided_by,omitempty"`
}

type IdeaDeleted struct {
	IdeaID string `json:"idea_id"`
}

type LabelAdded struct {
	IdeaID string `json:"idea_id"`
	Label  string `json:"label"`
}

type LabelRemoved struct {
	IdeaID string `json:"idea_id"`
	Label  string `json:"label"`
}

type CommentAdded struct {
	Comment *model.Comment `json:"comment"`
}

// Scan events

type ScanEnqueued struct {
	Scan *model.ScanJob `json:"scan"`
}

type ScanStarted struct {
	Scan *model.ScanJob `json:"scan"`
}

type ScanCompleted struct {
	Scan *model.ScanJob `json:"scan"`
}

type ScanFailed struct {
	Scan  *model.ScanJob `json:"scan"`
	Error string         `json:"error"`
}

type ScanCanceled struct {
	ScanID string `json:"scan_id"`
}

// Spec events

type SpecCreated struct {
	Spec *model.RefactorSpec `json:"spec"`
}

type SpecUpdated struct {
	Spec *model.RefactorSpec `json:"spec"`
}

type SpecDeleted struct {
	SpecID string `json:"spec_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
