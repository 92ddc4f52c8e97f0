package server

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// mockStore is an in-memory store for handler tests. A single mutex guards
// all state so tests can assert while SSE goroutines run.
type mockStore struct {
	mu       sync.Mutex
	ideas    map[string]*model.Idea
	labels   map[string][]string
	comments map[string][]*model.Comment
	scans    map[string]*model.ScanJob
	findings map[string][]*model.Finding
	specs    map[string]*model.RefactorSpec
	configs  map[string]*model.Config
	events   []*model.Event
	nextID   int64
}

func newMockStore() *mockStore {
	return &mockStore{
		ideas:    make(map[string]*model.Idea),
		labels:   make(map[string][]string),
		comments: make(map[string][]*model.Comment),
		scans:    make(map[string]*model.ScanJob),
		findings: make(map[string][]*model.Finding),
		specs:    make(map[string]*model.RefactorSpec),
		configs:  make(map[string]*model.Config),
	}
}

func (m *mockStore) CreateIdea(_ context.Context, idea *model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockStore) GetIdea(_ context.Context, id string) (*model.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.ideas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *i
	cp.Labels = append([]string(nil), m.labels[id]...)
	cp.Comments = append([]*model.Comment(nil), m.comments[id]...)
	return &cp, nil
}

func (m *mockStore) ListIdeas(_ context.Context, filter model.IdeaFilter) ([]*model.Idea, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Idea
	for _, i := range m.ideas {
		if len(filter.Status) > 0 && !containsStatus(filter.Status, i.Status) {
			continue
		}
		if filter.ScanID != "" && i.ScanID != filter.ScanID {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(i.Title), strings.ToLower(filter.Search)) {
			continue
		}
		result = append(result, i)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func containsStatus(haystack []model.IdeaStatus, needle model.IdeaStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (m *mockStore) UpdateIdea(_ context.Context, idea *model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[idea.ID]; !ok {
		return sql.ErrNoRows
	}
	m.ideas[idea.ID] = idea
	return nil
}

func (m *mockStore) DecideIdea(_ context.Context, id string, status model.IdeaStatus, decidedBy string) (*model.Idea, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i, ok := m.ideas[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if i.Status != model.StatusProposed {
		return nil, store.ErrInvalidTransition
	}
	now := time.Now().UTC()
	i.Status = status
	i.DecidedBy = decidedBy
	i.DecidedAt = &now
	i.UpdatedAt = now
	return i, nil
}

func (m *mockStore) DeleteIdea(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.ideas[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.ideas, id)
	delete(m.labels, id)
	delete(m.comments, id)
	return nil
}

func (m *mockStore) AddLabel(_ context.Context, ideaID string, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.labels[ideaID] {
		if l == label {
			return nil
		}
	}
	m.labels[ideaID] = append(m.labels[ideaID], label)
	return nil
}

func (m *mockStore) RemoveLabel(_ context.Context, ideaID string, label string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.labels[ideaID][:0]
	for _, l := range m.labels[ideaID] {
		if l != label {
			kept = append(kept, l)
		}
	}
	m.labels[ideaID] = kept
	return nil
}

func (m *mockStore) GetLabels(_ context.Context, ideaID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.labels[ideaID]...), nil
}

func (m *mockStore) AddComment(_ context.Context, comment *model.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	comment.ID = m.nextID
	m.comments[comment.IdeaID] = append(m.comments[comment.IdeaID], comment)
	return nil
}

func (m *mockStore) GetComments(_ context.Context, ideaID string) ([]*model.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Comment(nil), m.comments[ideaID]...), nil
}

func (m *mockStore) CreateScan(_ context.Context, job *model.ScanJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scans[job.ID] = job
	return nil
}

func (m *mockStore) GetScan(_ context.Context, id string) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) ListScans(_ context.Context, filter model.ScanFilter) ([]*model.ScanJob, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.ScanJob
	for _, s := range m.scans {
		if len(filter.Status) > 0 && !containsScanStatus(filter.Status, s.Status) {
			continue
		}
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, len(result), nil
}

func containsScanStatus(haystack []model.ScanStatus, needle model.ScanStatus) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func (m *mockStore) ClaimNextScan(_ context.Context) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var oldest *model.ScanJob
	for _, s := range m.scans {
		if s.Status != model.ScanPending {
			continue
		}
		if oldest == nil || s.CreatedAt.Before(oldest.CreatedAt) {
			oldest = s
		}
	}
	if oldest == nil {
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	oldest.Status = model.ScanRunning
	oldest.StartedAt = &now
	return oldest, nil
}

func (m *mockStore) CompleteScan(_ context.Context, id string, findings, ideas int) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	s.Status = model.ScanCompleted
	s.Findings = findings
	s.Ideas = ideas
	s.EndedAt = &now
	return s, nil
}

func (m *mockStore) FailScan(_ context.Context, id string, errMsg string) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	now := time.Now().UTC()
	s.Status = model.ScanFailed
	s.Error = errMsg
	s.EndedAt = &now
	return s, nil
}

func (m *mockStore) CancelScan(_ context.Context, id string) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if s.Status != model.ScanPending {
		return nil, store.ErrInvalidTransition
	}
	s.Status = model.ScanCanceled
	return s, nil
}

func (m *mockStore) AddFindings(_ context.Context, scanID string, findings []*model.Finding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.findings[scanID] = append(m.findings[scanID], findings...)
	return nil
}

func (m *mockStore) GetFindings(_ context.Context, scanID string) ([]*model.Finding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Finding(nil), m.findings[scanID]...), nil
}

func (m *mockStore) CreateSpec(_ context.Context, spec *model.RefactorSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.specs[spec.ID] = spec
	return nil
}

func (m *mockStore) GetSpec(_ context.Context, id string) (*model.RefactorSpec, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.specs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return s, nil
}

func (m *mockStore) ListSpecs(_ context.Context, limit, offset int) ([]*model.RefactorSpec, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.RefactorSpec
	for _, s := range m.specs {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	total := len(result)
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, total, nil
}

func (m *mockStore) UpdateSpec(_ context.Context, spec *model.RefactorSpec) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.specs[spec.ID]; !ok {
		return sql.ErrNoRows
	}
	m.specs[spec.ID] = spec
	return nil
}

func (m *mockStore) DeleteSpec(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.specs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.specs, id)
	return nil
}

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	event.ID = m.nextID
	m.events = append(m.events, event)
	return nil
}

func (m *mockStore) GetEvents(_ context.Context, entityID string) ([]*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Event
	for _, e := range m.events {
		if e.EntityID == entityID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (m *mockStore) SetConfig(_ context.Context, config *model.Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs[config.Key] = config
	return nil
}

func (m *mockStore) GetConfig(_ context.Context, key string) (*model.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.configs[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (m *mockStore) ListConfigs(_ context.Context, namespace string) ([]*model.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Config
	for _, c := range m.configs {
		if strings.HasPrefix(c.Key, namespace+":") {
			result = append(result, c)
		}
	}
	return result, nil
}

func (m *mockStore) ListAllConfigs(_ context.Context) ([]*model.Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Config
	for _, c := range m.configs {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (m *mockStore) DeleteConfig(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.configs[key]; !ok {
		return sql.ErrNoRows
	}
	delete(m.configs, key)
	return nil
}

func (m *mockStore) GetStats(_ context.Context) (*model.WorkspaceStats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &model.WorkspaceStats{}
	for _, i := range m.ideas {
		switch i.Status {
		case model.StatusProposed:
			stats.IdeasProposed++
		case model.StatusAccepted:
			stats.IdeasAccepted++
		case model.StatusInProgress:
			stats.IdeasInProgress++
		case model.StatusShipped:
			stats.IdeasShipped++
		case model.StatusRejected:
			stats.IdeasRejected++
		}
	}
	for _, s := range m.scans {
		switch s.Status {
		case model.ScanPending:
			stats.ScansPending++
		case model.ScanRunning:
			stats.ScansRunning++
		case model.ScanCompleted:
			stats.ScansCompleted++
		case model.ScanFailed:
			stats.ScansFailed++
		}
	}
	return stats, nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

// eventTopics returns the topics recorded for an entity, in order.
func (m *mockStore) eventTopics(entityID string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var topics []string
	for _, e := range m.events {
		if e.EntityID == entityID {
			topics = append(topics, e.Topic)
		}
	}
	return topics
}
