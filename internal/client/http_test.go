package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/forge/internal/fault"
	"github.com/alfredjeanlab/forge/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	query       string
	body        string
	contentType string
	authHeader  string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.query = r.URL.RawQuery
	h.contentType = r.Header.Get("Content-Type")
	h.authHeader = r.Header.Get("Authorization")
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(h http.Handler) (*HTTPClient, *httptest.Server) {
	srv := httptest.NewServer(h)
	c := NewHTTPClient(srv.URL, "")
	return c, srv
}

// --- CreateIdea ---

func TestHTTPClient_CreateIdea(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"id": "id-abc123",
			"title": "Split the billing module",
			"summary": "billing.py is over 2000 lines",
			"status": "proposed",
			"priority": 2,
			"framework": "django",
			"effort": 3,
			"impact": 4,
			"author": "alice",
			"created_at": "2026-01-15T10:00:00Z",
			"updated_at": "2026-01-15T10:00:00Z",
			"labels": ["tech-debt", "backend"]
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	req := &CreateIdeaRequest{
		Title:     "Split the billing module",
		Summary:   "billing.py is over 2000 lines",
		Priority:  2,
		Framework: "django",
		Effort:    3,
		Impact:    4,
		Author:    "alice",
		Labels:    []string{"tech-debt", "backend"},
	}

	idea, err := c.CreateIdea(context.Background(), req)
	if err != nil {
		t.Fatalf("CreateIdea() error = %v", err)
	}

	// Verify request
	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/ideas" {
		t.Errorf("path = %q, want /v1/ideas", h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("content-type = %q, want application/json", h.contentType)
	}

	// Verify request body contains expected fields
	var reqBody map[string]interface{}
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["title"] != "Split the billing module" {
		t.Errorf("request body title = %v", reqBody["title"])
	}
	if reqBody["framework"] != "django" {
		t.Errorf("request body framework = %v, want 'django'", reqBody["framework"])
	}

	// Verify response parsing
	if idea.ID != "id-abc123" {
		t.Errorf("idea.ID = %q, want 'id-abc123'", idea.ID)
	}
	if idea.Status != model.StatusProposed {
		t.Errorf("idea.Status = %q, want 'proposed'", idea.Status)
	}
	if idea.Framework != model.FrameworkDjango {
		t.Errorf("idea.Framework = %q, want 'django'", idea.Framework)
	}
	if idea.Effort != 3 || idea.Impact != 4 {
		t.Errorf("idea effort/impact = %d/%d, want 3/4", idea.Effort, idea.Impact)
	}
	if len(idea.Labels) != 2 {
		t.Errorf("len(idea.Labels) = %d, want 2", len(idea.Labels))
	}
}

// --- GetIdea ---

func TestHTTPClient_GetIdea(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "id-abc123", "title": "Split the billing module", "status": "proposed"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	idea, err := c.GetIdea(context.Background(), "id-abc123")
	if err != nil {
		t.Fatalf("GetIdea() error = %v", err)
	}

	if h.method != http.MethodGet {
		t.Errorf("method = %q, want GET", h.method)
	}
	if h.path != "/v1/ideas/id-abc123" {
		t.Errorf("path = %q, want /v1/ideas/id-abc123", h.path)
	}
	if idea.ID != "id-abc123" {
		t.Errorf("idea.ID = %q", idea.ID)
	}
}

func TestHTTPClient_GetIdea_NotFound(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusNotFound,
		responseBody: `{"error": "idea not found"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.GetIdea(context.Background(), "id-missing")
	if err == nil {
		t.Fatal("GetIdea() error = nil, want error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if apiErr.Message != "idea not found" {
		t.Errorf("Message = %q, want 'idea not found'", apiErr.Message)
	}
	if fault.CategoryOf(err) != fault.CategoryNotFound {
		t.Errorf("category = %q, want not_found", fault.CategoryOf(err))
	}
	if fault.Retryable(err) {
		t.Error("not-found error should not be retryable")
	}
}

// --- ListIdeas ---

func TestHTTPClient_ListIdeas(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"ideas": [
				{"id": "id-one", "title": "First", "status": "proposed"},
				{"id": "id-two", "title": "Second", "status": "accepted"}
			],
			"total": 7
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	priority := 1
	resp, err := c.ListIdeas(context.Background(), &ListIdeasRequest{
		Status:    []string{"proposed", "accepted"},
		Framework: []string{"django"},
		Labels:    []string{"tech-debt"},
		Search:    "billing",
		Sort:      "priority",
		Priority:  &priority,
		Limit:     10,
		Offset:    20,
	})
	if err != nil {
		t.Fatalf("ListIdeas() error = %v", err)
	}

	if h.path != "/v1/ideas" {
		t.Errorf("path = %q, want /v1/ideas", h.path)
	}
	for _, want := range []string{
		"status=proposed%2Caccepted",
		"framework=django",
		"labels=tech-debt",
		"search=billing",
		"sort=priority",
		"priority=1",
		"limit=10",
		"offset=20",
	} {
		if !containsParam(h.query, want) {
			t.Errorf("query %q missing %q", h.query, want)
		}
	}

	if len(resp.Ideas) != 2 {
		t.Fatalf("len(Ideas) = %d, want 2", len(resp.Ideas))
	}
	if resp.Total != 7 {
		t.Errorf("Total = %d, want 7", resp.Total)
	}
	if resp.Ideas[1].Status != model.StatusAccepted {
		t.Errorf("Ideas[1].Status = %q, want 'accepted'", resp.Ideas[1].Status)
	}
}

func containsParam(query, param string) bool {
	for _, part := range splitQuery(query) {
		if part == param {
			return true
		}
	}
	return false
}

func splitQuery(query string) []string {
	var parts []string
	start := 0
	for i := 0; i <= len(query); i++ {
		if i == len(query) || query[i] == '&' {
			parts = append(parts, query[start:i])
			start = i + 1
		}
	}
	return parts
}

// --- UpdateIdea ---

func TestHTTPClient_UpdateIdea(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "id-abc123", "title": "New title", "priority": 1}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	title := "New title"
	priority := 1
	idea, err := c.UpdateIdea(context.Background(), "id-abc123", &UpdateIdeaRequest{
		Title:    &title,
		Priority: &priority,
	})
	if err != nil {
		t.Fatalf("UpdateIdea() error = %v", err)
	}

	if h.method != http.MethodPatch {
		t.Errorf("method = %q, want PATCH", h.method)
	}
	if h.path != "/v1/ideas/id-abc123" {
		t.Errorf("path = %q", h.path)
	}

	var reqBody map[string]interface{}
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["title"] != "New title" {
		t.Errorf("request body title = %v", reqBody["title"])
	}
	if _, present := reqBody["summary"]; present {
		t.Error("request body should omit unset summary")
	}

	if idea.Priority != 1 {
		t.Errorf("idea.Priority = %d, want 1", idea.Priority)
	}
}

// --- Accept / Reject ---

func TestHTTPClient_AcceptIdea(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "id-abc123", "status": "accepted", "decided_by": "bob"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	idea, err := c.AcceptIdea(context.Background(), "id-abc123", "bob")
	if err != nil {
		t.Fatalf("AcceptIdea() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/ideas/id-abc123/accept" {
		t.Errorf("path = %q, want /v1/ideas/id-abc123/accept", h.path)
	}
	var reqBody map[string]string
	if err := json.Unmarshal([]byte(h.body), &reqBody); err != nil {
		t.Fatalf("unmarshaling request body: %v", err)
	}
	if reqBody["decided_by"] != "bob" {
		t.Errorf("request body decided_by = %q, want 'bob'", reqBody["decided_by"])
	}
	if idea.Status != model.StatusAccepted {
		t.Errorf("idea.Status = %q, want 'accepted'", idea.Status)
	}
}

func TestHTTPClient_RejectIdea(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "id-abc123", "status": "rejected"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	idea, err := c.RejectIdea(context.Background(), "id-abc123", "")
	if err != nil {
		t.Fatalf("RejectIdea() error = %v", err)
	}
	if h.path != "/v1/ideas/id-abc123/reject" {
		t.Errorf("path = %q, want /v1/ideas/id-abc123/reject", h.path)
	}
	if idea.Status != model.StatusRejected {
		t.Errorf("idea.Status = %q, want 'rejected'", idea.Status)
	}
}

// --- DeleteIdea ---

func TestHTTPClient_DeleteIdea(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.DeleteIdea(context.Background(), "id-abc123"); err != nil {
		t.Fatalf("DeleteIdea() error = %v", err)
	}
	if h.method != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", h.method)
	}
	if h.path != "/v1/ideas/id-abc123" {
		t.Errorf("path = %q", h.path)
	}
}

// --- Labels ---

func TestHTTPClient_AddLabel(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "id-abc123", "labels": ["tech-debt"]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	idea, err := c.AddLabel(context.Background(), "id-abc123", "tech-debt")
	if err != nil {
		t.Fatalf("AddLabel() error = %v", err)
	}
	if h.path != "/v1/ideas/id-abc123/labels" {
		t.Errorf("path = %q", h.path)
	}
	if h.body != `{"label":"tech-debt"}` {
		t.Errorf("body = %q", h.body)
	}
	if len(idea.Labels) != 1 || idea.Labels[0] != "tech-debt" {
		t.Errorf("idea.Labels = %v", idea.Labels)
	}
}

func TestHTTPClient_RemoveLabel(t *testing.T) {
	h := &testHandler{statusCode: http.StatusNoContent}
	c, srv := newTestClient(h)
	defer srv.Close()

	if err := c.RemoveLabel(context.Background(), "id-abc123", "tech-debt"); err != nil {
		t.Fatalf("RemoveLabel() error = %v", err)
	}
	if h.method != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", h.method)
	}
	if h.path != "/v1/ideas/id-abc123/labels/tech-debt" {
		t.Errorf("path = %q", h.path)
	}
}

func TestHTTPClient_GetLabels(t *testing.T) {
	h := &testHandler{
		responseBody: `{"labels": ["tech-debt", "backend"]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	labels, err := c.GetLabels(context.Background(), "id-abc123")
	if err != nil {
		t.Fatalf("GetLabels() error = %v", err)
	}
	if len(labels) != 2 {
		t.Errorf("len(labels) = %d, want 2", len(labels))
	}
}

// --- Comments ---

func TestHTTPClient_AddComment(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": 5, "idea_id": "id-abc123", "author": "alice", "text": "looks good"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	comment, err := c.AddComment(context.Background(), "id-abc123", "alice", "looks good")
	if err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if h.path != "/v1/ideas/id-abc123/comments" {
		t.Errorf("path = %q", h.path)
	}
	if comment.ID != 5 || comment.Author != "alice" {
		t.Errorf("comment = %+v", comment)
	}
}

// --- Scans ---

func TestHTTPClient_EnqueueScan(t *testing.T) {
	h := &testHandler{
		statusCode: http.StatusCreated,
		responseBody: `{
			"id": "sc-xyz789",
			"type": "todo",
			"framework": "express",
			"root": "/srv/app",
			"status": "pending",
			"created_by": "alice"
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	job, err := c.EnqueueScan(context.Background(), &EnqueueScanRequest{
		Type:      "todo",
		Framework: "express",
		Root:      "/srv/app",
		CreatedBy: "alice",
	})
	if err != nil {
		t.Fatalf("EnqueueScan() error = %v", err)
	}

	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/scans" {
		t.Errorf("path = %q, want /v1/scans", h.path)
	}
	if job.ID != "sc-xyz789" {
		t.Errorf("job.ID = %q", job.ID)
	}
	if job.Status != model.ScanPending {
		t.Errorf("job.Status = %q, want 'pending'", job.Status)
	}
	if job.Type != model.ScanTodo {
		t.Errorf("job.Type = %q, want 'todo'", job.Type)
	}
}

func TestHTTPClient_ListScans(t *testing.T) {
	h := &testHandler{
		responseBody: `{"scans": [{"id": "sc-one", "status": "completed"}], "total": 1}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ListScans(context.Background(), &ListScansRequest{
		Status: []string{"completed"},
		Type:   []string{"todo"},
		Limit:  5,
	})
	if err != nil {
		t.Fatalf("ListScans() error = %v", err)
	}
	for _, want := range []string{"status=completed", "type=todo", "limit=5"} {
		if !containsParam(h.query, want) {
			t.Errorf("query %q missing %q", h.query, want)
		}
	}
	if resp.Total != 1 || len(resp.Scans) != 1 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHTTPClient_CancelScan(t *testing.T) {
	h := &testHandler{
		responseBody: `{"id": "sc-xyz789", "status": "canceled"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	job, err := c.CancelScan(context.Background(), "sc-xyz789")
	if err != nil {
		t.Fatalf("CancelScan() error = %v", err)
	}
	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/scans/sc-xyz789/cancel" {
		t.Errorf("path = %q", h.path)
	}
	if job.Status != model.ScanCanceled {
		t.Errorf("job.Status = %q, want 'canceled'", job.Status)
	}
}

func TestHTTPClient_CancelScan_Conflict(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusConflict,
		responseBody: `{"error": "scan is not pending"}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.CancelScan(context.Background(), "sc-xyz789")
	if err == nil {
		t.Fatal("CancelScan() error = nil, want error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("StatusCode = %d, want 409", apiErr.StatusCode)
	}
	if fault.CategoryOf(err) != fault.CategoryValidation {
		t.Errorf("category = %q, want validation", fault.CategoryOf(err))
	}
}

func TestHTTPClient_GetFindings(t *testing.T) {
	h := &testHandler{
		responseBody: `{"findings": [
			{"id": 1, "scan_id": "sc-xyz789", "adapter": "generic", "kind": "todo", "file": "main.py", "line": 42},
			{"id": 2, "scan_id": "sc-xyz789", "adapter": "generic", "kind": "todo", "file": "util.py", "line": 7}
		]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	findings, err := c.GetFindings(context.Background(), "sc-xyz789")
	if err != nil {
		t.Fatalf("GetFindings() error = %v", err)
	}
	if h.path != "/v1/scans/sc-xyz789/findings" {
		t.Errorf("path = %q", h.path)
	}
	if len(findings) != 2 {
		t.Fatalf("len(findings) = %d, want 2", len(findings))
	}
	if findings[0].File != "main.py" || findings[0].Line != 42 {
		t.Errorf("findings[0] = %+v", findings[0])
	}
}

// --- Specs ---

func TestHTTPClient_CreateSpec(t *testing.T) {
	h := &testHandler{
		statusCode: http.StatusCreated,
		responseBody: `{
			"id": "rs-spec01",
			"name": "extract-billing-helpers",
			"version": "1",
			"target": {"path": "billing.py", "symbol": "process", "kind": "function"},
			"operations": [{"kind": "extract_function", "args": {"name": "validate_input"}}]
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	spec := &model.RefactorSpec{
		Name:    "extract-billing-helpers",
		Version: model.SpecVersion,
		Target:  model.Selector{Path: "billing.py", Symbol: "process", Kind: model.SymbolFunction},
		Operations: []model.Operation{
			{Kind: model.OpExtractFunction, Args: map[string]string{"name": "validate_input"}},
		},
	}
	created, err := c.CreateSpec(context.Background(), spec)
	if err != nil {
		t.Fatalf("CreateSpec() error = %v", err)
	}
	if h.path != "/v1/specs" {
		t.Errorf("path = %q", h.path)
	}
	if created.ID != "rs-spec01" {
		t.Errorf("created.ID = %q", created.ID)
	}
	if created.Target.Kind != model.SymbolFunction {
		t.Errorf("created.Target.Kind = %q", created.Target.Kind)
	}
	if len(created.Operations) != 1 || created.Operations[0].Kind != model.OpExtractFunction {
		t.Errorf("created.Operations = %+v", created.Operations)
	}
}

func TestHTTPClient_ValidateSpec(t *testing.T) {
	h := &testHandler{
		responseBody: `{
			"valid": false,
			"errors": [{"field": "target.path", "message": "path is required"}]
		}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ValidateSpec(context.Background(), &model.RefactorSpec{Name: "x"})
	if err != nil {
		t.Fatalf("ValidateSpec() error = %v", err)
	}
	if h.method != http.MethodPost {
		t.Errorf("method = %q, want POST", h.method)
	}
	if h.path != "/v1/specs/validate" {
		t.Errorf("path = %q", h.path)
	}
	if resp.Valid {
		t.Error("resp.Valid = true, want false")
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Field != "target.path" {
		t.Errorf("resp.Errors = %+v", resp.Errors)
	}
}

func TestHTTPClient_ListSpecs(t *testing.T) {
	h := &testHandler{
		responseBody: `{"specs": [{"id": "rs-spec01"}], "total": 3}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	resp, err := c.ListSpecs(context.Background(), 10, 20)
	if err != nil {
		t.Fatalf("ListSpecs() error = %v", err)
	}
	for _, want := range []string{"limit=10", "offset=20"} {
		if !containsParam(h.query, want) {
			t.Errorf("query %q missing %q", h.query, want)
		}
	}
	if resp.Total != 3 {
		t.Errorf("Total = %d, want 3", resp.Total)
	}
}

// --- Events ---

func TestHTTPClient_GetEvents(t *testing.T) {
	h := &testHandler{
		responseBody: `{"events": [
			{"id": 1, "topic": "forge.idea.created", "entity_id": "id-abc123"},
			{"id": 2, "topic": "forge.idea.decided", "entity_id": "id-abc123"}
		]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	events, err := c.GetEvents(context.Background(), "id-abc123")
	if err != nil {
		t.Fatalf("GetEvents() error = %v", err)
	}
	if h.path != "/v1/events" {
		t.Errorf("path = %q", h.path)
	}
	if !containsParam(h.query, "entity_id=id-abc123") {
		t.Errorf("query = %q", h.query)
	}
	if len(events) != 2 {
		t.Fatalf("len(events) = %d, want 2", len(events))
	}
	if events[0].Topic != "forge.idea.created" {
		t.Errorf("events[0].Topic = %q", events[0].Topic)
	}
}

// --- Configs ---

func TestHTTPClient_SetConfig(t *testing.T) {
	h := &testHandler{
		responseBody: `{"key": "scan:max_depth", "value": 12}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	cfg, err := c.SetConfig(context.Background(), "scan:max_depth", json.RawMessage(`12`))
	if err != nil {
		t.Fatalf("SetConfig() error = %v", err)
	}
	if h.method != http.MethodPut {
		t.Errorf("method = %q, want PUT", h.method)
	}
	if h.path != "/v1/configs/scan:max_depth" {
		t.Errorf("path = %q", h.path)
	}
	if h.body != `{"value":12}` {
		t.Errorf("body = %q", h.body)
	}
	if cfg.Key != "scan:max_depth" {
		t.Errorf("cfg.Key = %q", cfg.Key)
	}
}

func TestHTTPClient_GetConfig_EscapesKey(t *testing.T) {
	h := &testHandler{
		responseBody: `{"key": "view/team?beta", "value": {}}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.GetConfig(context.Background(), "view/team?beta"); err != nil {
		t.Fatalf("GetConfig() error = %v", err)
	}
	// Slashes separate key segments and stay literal; characters that would
	// cut the URL short (like "?") must travel escaped inside the path.
	if h.path != "/v1/configs/view/team?beta" {
		t.Errorf("path = %q, want the full key decoded into the path", h.path)
	}
	if h.query != "" {
		t.Errorf("query = %q, want empty", h.query)
	}
}

func TestHTTPClient_ListConfigs(t *testing.T) {
	h := &testHandler{
		responseBody: `{"configs": [{"key": "scan:max_depth", "value": 12}]}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	configs, err := c.ListConfigs(context.Background(), "scan")
	if err != nil {
		t.Fatalf("ListConfigs() error = %v", err)
	}
	if !containsParam(h.query, "namespace=scan") {
		t.Errorf("query = %q", h.query)
	}
	if len(configs) != 1 {
		t.Errorf("len(configs) = %d, want 1", len(configs))
	}
}

// --- Stats / Health ---

func TestHTTPClient_GetStats(t *testing.T) {
	h := &testHandler{
		responseBody: `{"ideas_proposed": 4, "ideas_accepted": 2, "scans_completed": 9}`,
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	stats, err := c.GetStats(context.Background())
	if err != nil {
		t.Fatalf("GetStats() error = %v", err)
	}
	if stats.IdeasProposed != 4 || stats.IdeasAccepted != 2 || stats.ScansCompleted != 9 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestHTTPClient_Health(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	status, err := c.Health(context.Background())
	if err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q, want 'ok'", status)
	}
}

// --- Auth header ---

func TestHTTPClient_AuthToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	srv := httptest.NewServer(h)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token")
	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.authHeader != "Bearer secret-token" {
		t.Errorf("Authorization = %q, want 'Bearer secret-token'", h.authHeader)
	}
}

func TestHTTPClient_NoAuthToken(t *testing.T) {
	h := &testHandler{responseBody: `{"status": "ok"}`}
	c, srv := newTestClient(h)
	defer srv.Close()

	if _, err := c.Health(context.Background()); err != nil {
		t.Fatalf("Health() error = %v", err)
	}
	if h.authHeader != "" {
		t.Errorf("Authorization = %q, want empty", h.authHeader)
	}
}

// --- Retry behavior ---

// TestHTTPClient_RetriesGetOnServerError verifies that GET requests are retried
// on 5xx responses and eventually succeed.
func TestHTTPClient_RetriesGetOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"error": "boom"}`))
			return
		}
		_, _ = w.Write([]byte(`{"id": "id-abc123", "title": "ok"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	c.retry = fault.RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

	idea, err := c.GetIdea(context.Background(), "id-abc123")
	if err != nil {
		t.Fatalf("GetIdea() error = %v", err)
	}
	if idea.ID != "id-abc123" {
		t.Errorf("idea.ID = %q", idea.ID)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

// TestHTTPClient_DoesNotRetryMutations verifies that POST requests are issued
// exactly once even when the server returns a retryable status.
func TestHTTPClient_DoesNotRetryMutations(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "boom"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	c.retry = fault.RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond}

	_, err := c.CreateIdea(context.Background(), &CreateIdeaRequest{Title: "x"})
	if err == nil {
		t.Fatal("CreateIdea() error = nil, want error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

// TestHTTPClient_DoesNotRetryValidationErrors verifies that a 400 response
// stops a GET retry loop immediately.
func TestHTTPClient_DoesNotRetryValidationErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "bad sort column"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	c.retry = fault.RetryConfig{MaxRetries: 3, InitialBackoff: time.Millisecond}

	_, err := c.ListIdeas(context.Background(), &ListIdeasRequest{Sort: "nope"})
	if err == nil {
		t.Fatal("ListIdeas() error = nil, want error")
	}
	if fault.CategoryOf(err) != fault.CategoryValidation {
		t.Errorf("category = %q, want validation", fault.CategoryOf(err))
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

// TestHTTPClient_NetworkErrorCategory verifies that transport failures carry
// the network category.
func TestHTTPClient_NetworkErrorCategory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // closed before use, connection refused

	c := NewHTTPClient(srv.URL, "")
	c.retry = fault.RetryConfig{MaxRetries: 1, InitialBackoff: time.Millisecond}

	_, err := c.CreateIdea(context.Background(), &CreateIdeaRequest{Title: "x"})
	if err == nil {
		t.Fatal("CreateIdea() error = nil, want error")
	}
	if fault.CategoryOf(err) != fault.CategoryNetwork {
		t.Errorf("category = %q, want network", fault.CategoryOf(err))
	}
}

// TestHTTPClient_PlainTextError verifies that non-JSON error bodies become the
// APIError message verbatim.
func TestHTTPClient_PlainTextError(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusBadGateway,
		responseBody: "upstream unavailable",
	}
	c, srv := newTestClient(h)
	defer srv.Close()

	_, err := c.EnqueueScan(context.Background(), &EnqueueScanRequest{Type: "todo", Root: "/srv/app"})
	if err == nil {
		t.Fatal("EnqueueScan() error = nil, want error")
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error is not *APIError: %v", err)
	}
	if apiErr.Message != "upstream unavailable" {
		t.Errorf("Message = %q", apiErr.Message)
	}
}
