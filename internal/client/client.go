// Package client provides a transport-agnostic interface for the forge service
// and an HTTP/JSON implementation that talks to the forge REST API.
package client

import (
	"context"
	"encoding/json"

	"github.com/alfredjeanlab/forge/internal/model"
)

// ForgeClient is the interface that all forge CLI commands use to communicate
// with the forge server. It is implemented by HTTPClient (default) and can be
// backed by any transport.
type ForgeClient interface {
	// Idea CRUD
	CreateIdea(ctx context.Context, req *CreateIdeaRequest) (*model.Idea, error)
	GetIdea(ctx context.Context, id string) (*model.Idea, error)
	ListIdeas(ctx context.Context, req *ListIdeasRequest) (*ListIdeasResponse, error)
	UpdateIdea(ctx context.Context, id string, req *UpdateIdeaRequest) (*model.Idea, error)
	AcceptIdea(ctx context.Context, id string, decidedBy string) (*model.Idea, error)
	RejectIdea(ctx context.Context, id string, decidedBy string) (*model.Idea, error)
	DeleteIdea(ctx context.Context, id string) error

	// Labels
	AddLabel(ctx context.Context, ideaID, label string) (*model.Idea, error)
	RemoveLabel(ctx context.Context, ideaID, label string) error
	GetLabels(ctx context.Context, ideaID string) ([]string, error)

	// Comments
	AddComment(ctx context.Context, ideaID, author, text string) (*model.Comment, error)
	GetComments(ctx context.Context, ideaID string) ([]*model.Comment, error)

	// Scans
	EnqueueScan(ctx context.Context, req *EnqueueScanRequest) (*model.ScanJob, error)
	GetScan(ctx context.Context, id string) (*model.ScanJob, error)
	ListScans(ctx context.Context, req *ListScansRequest) (*ListScansResponse, error)
	CancelScan(ctx context.Context, id string) (*model.ScanJob, error)
	GetFindings(ctx context.Context, scanID string) ([]*model.Finding, error)

	// Refactor specs
	CreateSpec(ctx context.Context, spec *model.RefactorSpec) (*model.RefactorSpec, error)
	GetSpec(ctx context.Context, id string) (*model.RefactorSpec, error)
	ListSpecs(ctx context.Context, limit, offset int) (*ListSpecsResponse, error)
	UpdateSpec(ctx context.Context, id string, spec *model.RefactorSpec) (*model.RefactorSpec, error)
	DeleteSpec(ctx context.Context, id string) error
	ValidateSpec(ctx context.Context, spec *model.RefactorSpec) (*ValidateSpecResponse, error)

	// Events
	GetEvents(ctx context.Context, entityID string) ([]*model.Event, error)

	// Config
	SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error)
	GetConfig(ctx context.Context, key string) (*model.Config, error)
	ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error)
	DeleteConfig(ctx context.Context, key string) error

	// Aggregates
	GetStats(ctx context.Context) (*model.WorkspaceStats, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// CreateIdeaRequest holds parameters for creating an idea.
type CreateIdeaRequest struct {
	Title     string          `json:"title"`
	Summary   string          `json:"summary,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Priority  int             `json:"priority"`
	Framework string          `json:"framework,omitempty"`
	Effort    int             `json:"effort,omitempty"`
	Impact    int             `json:"impact,omitempty"`
	Author    string          `json:"author,omitempty"`
	Labels    []string        `json:"labels,omitempty"`
	Fields    json.RawMessage `json:"fields,omitempty"`
}

// ListIdeasRequest holds parameters for listing ideas.
type ListIdeasRequest struct {
	Status    []string `json:"status,omitempty"`
	Framework []string `json:"framework,omitempty"`
	ScanID    string   `json:"scan_id,omitempty"`
	Labels    []string `json:"labels,omitempty"`
	Search    string   `json:"search,omitempty"`
	Sort      string   `json:"sort,omitempty"`
	Priority  *int     `json:"priority,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

// ListIdeasResponse is the response from ListIdeas.
type ListIdeasResponse struct {
	Ideas []*model.Idea `json:"ideas"`
	Total int           `json:"total"`
}

// UpdateIdeaRequest holds optional parameters for updating an idea.
// Nil pointer fields mean "don't change".
type UpdateIdeaRequest struct {
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

// EnqueueScanRequest holds parameters for enqueueing a scan.
type EnqueueScanRequest struct {
	Type      string `json:"type"`
	Framework string `json:"framework,omitempty"` // empty = auto-detect
	Root      string `json:"root"`
	CreatedBy string `json:"created_by,omitempty"`
}

// ListScansRequest holds parameters for listing scans.
type ListScansRequest struct {
	Status    []string `json:"status,omitempty"`
	Type      []string `json:"type,omitempty"`
	Framework []string `json:"framework,omitempty"`
	Sort      string   `json:"sort,omitempty"`
	Limit     int      `json:"limit,omitempty"`
	Offset    int      `json:"offset,omitempty"`
}

// ListScansResponse is the response from ListScans.
type ListScansResponse struct {
	Scans []*model.ScanJob `json:"scans"`
	Total int              `json:"total"`
}

// ListSpecsResponse is the response from ListSpecs.
type ListSpecsResponse struct {
	Specs []*model.RefactorSpec `json:"specs"`
	Total int                   `json:"total"`
}

// ValidateSpecResponse is the response from ValidateSpec.
type ValidateSpecResponse struct {
	Valid  bool               `json:"valid"`
	Errors []model.FieldError `json:"errors,omitempty"`
}
