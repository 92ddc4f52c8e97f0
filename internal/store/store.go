package store

import (
	"context"
	"errors"

	"github.com/alfredjeanlab/forge/internal/model"
)

// ErrInvalidTransition is returned when a status change is not permitted
// from the record's current state (e.g. canceling a running scan).
var ErrInvalidTransition = errors.New("invalid status transition")

// Store defines the persistence interface for the workspace.
type Store interface {
	// Idea CRUD
	CreateIdea(ctx context.Context, idea *model.Idea) error
	GetIdea(ctx context.Context, id string) (*model.Idea, error)
	ListIdeas(ctx context.Context, filter model.IdeaFilter) ([]*model.Idea, int, error) // returns ideas, total count, error
	UpdateIdea(ctx context.Context, idea *model.Idea) error
	DecideIdea(ctx context.Context, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error)
	DeleteIdea(ctx context.Context, id string) error

	// Labels
	AddLabel(ctx context.Context, ideaID string, label string) error
	RemoveLabel(ctx context.Context, ideaID string, label string) error
	GetLabels(ctx context.Context, ideaID string) ([]string, error)

	// Comments
	AddComment(ctx context.Context, comment *model.Comment) error
	GetComments(ctx context.Context, ideaID string) ([]*model.Comment, error)

	// Scan queue
	CreateScan(ctx context.Context, job *model.ScanJob) error
	GetScan(ctx context.Context, id string) (*model.ScanJob, error)
	ListScans(ctx context.Context, filter model.ScanFilter) ([]*model.ScanJob, int, error)
	ClaimNextScan(ctx context.Context) (*model.ScanJob, error) // oldest pending -> running; sql.ErrNoRows when queue is empty
	CompleteScan(ctx context.Context, id string, findings, ideas int) (*model.ScanJob, error)
	FailScan(ctx context.Context, id string, errMsg string) (*model.ScanJob, error)
	CancelScan(ctx context.Context, id string) (*model.ScanJob, error) // pending only; ErrInvalidTransition otherwise

	// Findings
	AddFindings(ctx context.Context, scanID string, findings []*model.Finding) error
	GetFindings(ctx context.Context, scanID string) ([]*model.Finding, error)

	// Refactor specs
	CreateSpec(ctx context.Context, spec *model.RefactorSpec) error
	GetSpec(ctx context.Context, id string) (*model.RefactorSpec, error)
	ListSpecs(ctx context.Context, limit, offset int) ([]*model.RefactorSpec, int, error)
	UpdateSpec(ctx context.Context, spec *model.RefactorSpec) error
	DeleteSpec(ctx context.Context, id string) error

	// Events
	RecordEvent(ctx context.Context, event *model.Event) error
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Configs
	SetConfig(ctx context.Context, config *model.Config) error
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	ListAllConfigs(ctx context.Context) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Aggregates
	GetStats(ctx context.Context) (*model.WorkspaceStats, error)

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
