package queue

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

// mockStore is a minimal in-memory store for queue tests. A single mutex
// guards all state so tests can poll while the worker goroutine runs.
type mockStore struct {
	mu       sync.Mutex
	ideas    map[string]*model.Idea
	scans    map[string]*model.ScanJob
	findings map[string][]*model.Finding
	events   []*model.Event

	createIdeaErr error
	claimErr      error
}

func newMockStore() *mockStore {
	return &mockStore{
		ideas:    make(map[string]*model.Idea),
		scans:    make(map[string]*model.ScanJob),
		findings: make(map[string][]*model.Finding),
	}
}

func (m *mockStore) CreateIdea(_ context.Context, idea *model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createIdeaErr != nil {
		return m.createIdeaErr
	}
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
	return i, nil
}

func (m *mockStore) ListIdeas(_ context.Context, filter model.IdeaFilter) ([]*model.Idea, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.Idea
	for _, i := range m.ideas {
		if filter.ScanID != "" && i.ScanID != filter.ScanID {
			continue
		}
		result = append(result, i)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, len(result), nil
}

func (m *mockStore) UpdateIdea(_ context.Context, idea *model.Idea) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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
	i.Status = status
	i.DecidedBy = decidedBy
	return i, nil
}

func (m *mockStore) DeleteIdea(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.ideas, id)
	return nil
}

func (m *mockStore) AddLabel(_ context.Context, _ string, _ string) error { return nil }

func (m *mockStore) RemoveLabel(_ context.Context, _ string, _ string) error { return nil }

func (m *mockStore) GetLabels(_ context.Context, _ string) ([]string, error) { return nil, nil }

func (m *mockStore) AddComment(_ context.Context, _ *model.Comment) error { return nil }

func (m *mockStore) GetComments(_ context.Context, _ string) ([]*model.Comment, error) {
	return nil, nil
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

func (m *mockStore) ListScans(_ context.Context, _ model.ScanFilter) ([]*model.ScanJob, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var result []*model.ScanJob
	for _, s := range m.scans {
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, len(result), nil
}

func (m *mockStore) ClaimNextScan(_ context.Context) (*model.ScanJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.claimErr != nil {
		return nil, m.claimErr
	}
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

func (m *mockStore) CompleteScan(ctx context.Context, id string, findings, ideas int) (*model.ScanJob, error) {
	// A real driver refuses writes on a canceled context.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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

func (m *mockStore) FailScan(ctx context.Context, id string, errMsg string) (*model.ScanJob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
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
	return m.findings[scanID], nil
}

func (m *mockStore) CreateSpec(_ context.Context, _ *model.RefactorSpec) error { return nil }

func (m *mockStore) GetSpec(_ context.Context, _ string) (*model.RefactorSpec, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListSpecs(_ context.Context, _, _ int) ([]*model.RefactorSpec, int, error) {
	return nil, 0, nil
}

func (m *mockStore) UpdateSpec(_ context.Context, _ *model.RefactorSpec) error { return nil }

func (m *mockStore) DeleteSpec(_ context.Context, _ string) error { return nil }

func (m *mockStore) RecordEvent(_ context.Context, event *model.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
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

func (m *mockStore) SetConfig(_ context.Context, _ *model.Config) error { return nil }

func (m *mockStore) GetConfig(_ context.Context, _ string) (*model.Config, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) ListConfigs(_ context.Context, _ string) ([]*model.Config, error) {
	return nil, nil
}

func (m *mockStore) ListAllConfigs(_ context.Context) ([]*model.Config, error) { return nil, nil }

func (m *mockStore) DeleteConfig(_ context.Context, _ string) error { return nil }

func (m *mockStore) GetStats(_ context.Context) (*model.WorkspaceStats, error) {
	return &model.WorkspaceStats{}, nil
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

// ideaTitles returns the lowercased titles of all stored ideas.
func (m *mockStore) ideaTitles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var titles []string
	for _, i := range m.ideas {
		titles = append(titles, strings.ToLower(i.Title))
	}
	sort.Strings(titles)
	return titles
}

// scanStatus reads a scan's status under the lock.
func (m *mockStore) scanStatus(id string) model.ScanStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.scans[id]
	if !ok {
		return ""
	}
	return s.Status
}
