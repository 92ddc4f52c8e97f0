package sync

import (
	"context"
	"database/sql"
	"sort"
	"strings"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// mockStore is a minimal in-memory store for sync tests.
type mockStore struct {
	ideas    map[string]*model.Idea
	labels   map[string][]string
	comments map[string][]*model.Comment
	specs    map[string]*model.RefactorSpec
	configs  map[string]*model.Config
}

func newMockStore() *mockStore {
	return &mockStore{
		ideas:    make(map[string]*model.Idea),
		labels:   make(map[string][]string),
		comments: make(map[string][]*model.Comment),
		specs:    make(map[string]*model.RefactorSpec),
		configs:  make(map[string]*model.Config),
	}
}

func (m *mockStore) CreateIdea(_ context.Context, idea *model.Idea) error {
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockStore) GetIdea(_ context.Context, id string) (*model.Idea, error) {
	i, ok := m.ideas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return i, nil
}

func (m *mockStore) ListIdeas(_ context.Context, _ model.IdeaFilter) ([]*model.Idea, int, error) {
	var result []*model.Idea
	for _, i := range m.ideas {
		result = append(result, i)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateIdea(_ context.Context, idea *model.Idea) error {
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockStore) DecideIdea(_ context.Context, _ string, _ model.IdeaStatus, _ string) (*model.Idea, error) {
	return nil, nil
}

func (m *mockStore) DeleteIdea(_ context.Context, id string) error {
	delete(m.ideas, id)
	return nil
}

func (m *mockStore) AddLabel(_ context.Context, ideaID string, label string) error {
	m.labels[ideaID] = append(m.labels[ideaID], label)
	return nil
}

func (m *mockStore) RemoveLabel(_ context.Context, _ string, _ string) error {
	return nil
}

func (m *mockStore) GetLabels(_ context.Context, ideaID string) ([]string, error) {
	return m.labels[ideaID], nil
}

func (m *mockStore) AddComment(_ context.Context, comment *model.Comment) error {
	m.comments[comment.IdeaID] = append(m.comments[comment.IdeaID], comment)
	return nil
}

func (m *mockStore) GetComments(_ context.Context, ideaID string) ([]*model.Comment, error) {
	return m.comments[ideaID], nil
}

func (m *mockStore) CreateScan(_ context.Context, _ *model.ScanJob) error {
	return nil
}

func (m *mockStore) GetScan(_ context.Context, _ string) (*model.ScanJob, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListScans(_ context.Context, _ model.ScanFilter) ([]*model.ScanJob, int, error) {
	return nil, 0, nil
}

func (m *mockStore) ClaimNextScan(_ context.Context) (*model.ScanJob, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) CompleteScan(_ context.Context, _ string, _, _ int) (*model.ScanJob, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) FailScan(_ context.Context, _ string, _ string) (*model.ScanJob, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) CancelScan(_ context.Context, _ string) (*model.ScanJob, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) AddFindings(_ context.Context, _ string, _ []*model.Finding) error {
	return nil
}

func (m *mockStore) GetFindings(_ context.Context, _ string) ([]*model.Finding, error) {
	return nil, nil
}

func (m *mockStore) CreateSpec(_ context.Context, spec *model.RefactorSpec) error {
	m.specs[spec.ID] = spec
	return nil
}

func (m *mockStore) GetSpec(_ context.Context, id string) (*model.RefactorSpec, error) {
	s, ok := m.specs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) ListSpecs(_ context.Context, _, _ int) ([]*model.RefactorSpec, int, error) {
	var result []*model.RefactorSpec
	for _, s := range m.specs {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateSpec(_ context.Context, spec *model.RefactorSpec) error {
	m.specs[spec.ID] = spec
	return nil
}

func (m *mockStore) DeleteSpec(_ context.Context, id string) error {
	delete(m.specs, id)
	return nil
}

func (m *mockStore) RecordEvent(_ context.Context, _ *model.Event) error {
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, _ string) ([]*model.Event, error) {
	return nil, nil
}

func (m *mockStore) SetConfig(_ context.Context, config *model.Config) error {
	m.configs[config.Key] = config
	return nil
}

func (m *mockStore) GetConfig(_ context.Context, key string) (*model.Config, error) {
	c, ok := m.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockStore) ListConfigs(_ context.Context, namespace string) ([]*model.Config, error) {
	prefix := namespace + ":"
	var result []*model.Config
	for k, c := range m.configs {
		if strings.HasPrefix(k, prefix) {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockStore) ListAllConfigs(_ context.Context) ([]*model.Config, error) {
	var result []*model.Config
	for _, c := range m.configs {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func (m *mockStore) DeleteConfig(_ context.Context, key string) error {
	delete(m.configs, key)
	return nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.WorkspaceStats, error) {
	return &model.WorkspaceStats{}, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}
