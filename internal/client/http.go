package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/alfredjeanlab/forge/internal/fault"
	"github.com/alfredjeanlab/forge/internal/model"
)

// HTTPClient implements ForgeClient using the forge HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	retry      fault.RetryConfig
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
		retry:      fault.DefaultRetryConfig(),
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Idea CRUD ---

func (c *HTTPClient) CreateIdea(ctx context.Context, req *CreateIdeaRequest) (*model.Idea, error) {
	var idea model.Idea
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ideas", req, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *HTTPClient) GetIdea(ctx context.Context, id string) (*model.Idea, error) {
	var idea model.Idea
	if err := c.doJSON(ctx, http.MethodGet, "/v1/ideas/"+url.PathEscape(id), nil, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *HTTPClient) ListIdeas(ctx context.Context, req *ListIdeasRequest) (*ListIdeasResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Framework) > 0 {
		q.Set("framework", strings.Join(req.Framework, ","))
	}
	if req.ScanID != "" {
		q.Set("scan_id", req.ScanID)
	}
	if len(req.Labels) > 0 {
		q.Set("labels", strings.Join(req.Labels, ","))
	}
	if req.Search != "" {
		q.Set("search", req.Search)
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Priority != nil {
		q.Set("priority", fmt.Sprintf("%d", *req.Priority))
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/ideas"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListIdeasResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateIdea(ctx context.Context, id string, req *UpdateIdeaRequest) (*model.Idea, error) {
	var idea model.Idea
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/ideas/"+url.PathEscape(id), req, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *HTTPClient) AcceptIdea(ctx context.Context, id string, decidedBy string) (*model.Idea, error) {
	return c.decideIdea(ctx, id, "accept", decidedBy)
}

func (c *HTTPClient) RejectIdea(ctx context.Context, id string, decidedBy string) (*model.Idea, error) {
	return c.decideIdea(ctx, id, "reject", decidedBy)
}

func (c *HTTPClient) decideIdea(ctx context.Context, id, verb, decidedBy string) (*model.Idea, error) {
	body := map[string]string{}
	if decidedBy != "" {
		body["decided_by"] = decidedBy
	}
	var idea model.Idea
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ideas/"+url.PathEscape(id)+"/"+verb, body, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *HTTPClient) DeleteIdea(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/ideas/"+url.PathEscape(id), nil, nil)
}

// --- Labels ---

func (c *HTTPClient) AddLabel(ctx context.Context, ideaID, label string) (*model.Idea, error) {
	body := map[string]string{"label": label}
	var idea model.Idea
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ideas/"+url.PathEscape(ideaID)+"/labels", body, &idea); err != nil {
		return nil, err
	}
	return &idea, nil
}

func (c *HTTPClient) RemoveLabel(ctx context.Context, ideaID, label string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/ideas/"+url.PathEscape(ideaID)+"/labels/"+url.PathEscape(label), nil, nil)
}

func (c *HTTPClient) GetLabels(ctx context.Context, ideaID string) ([]string, error) {
	var resp struct {
		Labels []string `json:"labels"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/ideas/"+url.PathEscape(ideaID)+"/labels", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Labels, nil
}

// --- Comments ---

func (c *HTTPClient) AddComment(ctx context.Context, ideaID, author, text string) (*model.Comment, error) {
	body := map[string]string{"author": author, "text": text}
	var comment model.Comment
	if err := c.doJSON(ctx, http.MethodPost, "/v1/ideas/"+url.PathEscape(ideaID)+"/comments", body, &comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *HTTPClient) GetComments(ctx context.Context, ideaID string) ([]*model.Comment, error) {
	var resp struct {
		Comments []*model.Comment `json:"comments"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/ideas/"+url.PathEscape(ideaID)+"/comments", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

// --- Scans ---

func (c *HTTPClient) EnqueueScan(ctx context.Context, req *EnqueueScanRequest) (*model.ScanJob, error) {
	var job model.ScanJob
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scans", req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *HTTPClient) GetScan(ctx context.Context, id string) (*model.ScanJob, error) {
	var job model.ScanJob
	if err := c.doJSON(ctx, http.MethodGet, "/v1/scans/"+url.PathEscape(id), nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *HTTPClient) ListScans(ctx context.Context, req *ListScansRequest) (*ListScansResponse, error) {
	q := url.Values{}
	if len(req.Status) > 0 {
		q.Set("status", strings.Join(req.Status, ","))
	}
	if len(req.Type) > 0 {
		q.Set("type", strings.Join(req.Type, ","))
	}
	if len(req.Framework) > 0 {
		q.Set("framework", strings.Join(req.Framework, ","))
	}
	if req.Sort != "" {
		q.Set("sort", req.Sort)
	}
	if req.Limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", req.Limit))
	}
	if req.Offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", req.Offset))
	}

	path := "/v1/scans"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListScansResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) CancelScan(ctx context.Context, id string) (*model.ScanJob, error) {
	var job model.ScanJob
	if err := c.doJSON(ctx, http.MethodPost, "/v1/scans/"+url.PathEscape(id)+"/cancel", nil, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *HTTPClient) GetFindings(ctx context.Context, scanID string) ([]*model.Finding, error) {
	var resp struct {
		Findings []*model.Finding `json:"findings"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/scans/"+url.PathEscape(scanID)+"/findings", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Findings, nil
}

// --- Refactor specs ---

func (c *HTTPClient) CreateSpec(ctx context.Context, spec *model.RefactorSpec) (*model.RefactorSpec, error) {
	var created model.RefactorSpec
	if err := c.doJSON(ctx, http.MethodPost, "/v1/specs", spec, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *HTTPClient) GetSpec(ctx context.Context, id string) (*model.RefactorSpec, error) {
	var spec model.RefactorSpec
	if err := c.doJSON(ctx, http.MethodGet, "/v1/specs/"+url.PathEscape(id), nil, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (c *HTTPClient) ListSpecs(ctx context.Context, limit, offset int) (*ListSpecsResponse, error) {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	if offset > 0 {
		q.Set("offset", fmt.Sprintf("%d", offset))
	}
	path := "/v1/specs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListSpecsResponse
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) UpdateSpec(ctx context.Context, id string, spec *model.RefactorSpec) (*model.RefactorSpec, error) {
	var updated model.RefactorSpec
	if err := c.doJSON(ctx, http.MethodPut, "/v1/specs/"+url.PathEscape(id), spec, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *HTTPClient) DeleteSpec(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/specs/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) ValidateSpec(ctx context.Context, spec *model.RefactorSpec) (*ValidateSpecResponse, error) {
	var resp ValidateSpecResponse
	if err := c.doJSON(ctx, http.MethodPost, "/v1/specs/validate", spec, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// --- Events ---

func (c *HTTPClient) GetEvents(ctx context.Context, entityID string) ([]*model.Event, error) {
	var resp struct {
		Events []*model.Event `json:"events"`
	}
	path := "/v1/events?entity_id=" + url.QueryEscape(entityID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Events, nil
}

// --- Config ---

// configPath escapes a config key into a /v1/configs path. Keys are
// namespaced with slashes (e.g. "view/inbox"), which the route's {key...}
// wildcard accepts, so each segment is escaped on its own.
func configPath(key string) string {
	segments := strings.Split(key, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return "/v1/configs/" + strings.Join(segments, "/")
}

func (c *HTTPClient) SetConfig(ctx context.Context, key string, value json.RawMessage) (*model.Config, error) {
	body := map[string]json.RawMessage{"value": value}
	var config model.Config
	if err := c.doJSON(ctx, http.MethodPut, configPath(key), body, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) GetConfig(ctx context.Context, key string) (*model.Config, error) {
	var config model.Config
	if err := c.doJSON(ctx, http.MethodGet, configPath(key), nil, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *HTTPClient) ListConfigs(ctx context.Context, namespace string) ([]*model.Config, error) {
	var resp struct {
		Configs []*model.Config `json:"configs"`
	}
	path := "/v1/configs?namespace=" + url.QueryEscape(namespace)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Configs, nil
}

func (c *HTTPClient) DeleteConfig(ctx context.Context, key string) error {
	return c.doJSON(ctx, http.MethodDelete, configPath(key), nil, nil)
}

// --- Aggregates ---

func (c *HTTPClient) GetStats(ctx context.Context) (*model.WorkspaceStats, error) {
	var stats model.WorkspaceStats
	if err := c.doJSON(ctx, http.MethodGet, "/v1/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the
// JSON response. If result is nil, the response body is discarded (for
// DELETE/204 responses). GET requests are retried on transient failures;
// mutating requests are issued exactly once.
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var data []byte
	if body != nil {
		var err error
		data, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
	}

	if method != http.MethodGet {
		return c.doJSONOnce(ctx, method, path, data, result)
	}
	return fault.Retry(ctx, c.retry, func() error {
		return c.doJSONOnce(ctx, method, path, data, result)
	})
}

func (c *HTTPClient) doJSONOnce(ctx context.Context, method, path string, data []byte, result any) error {
	var bodyReader io.Reader
	if data != nil {
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fault.New(fault.CategoryNetwork, "request "+path, err)
	}
	defer resp.Body.Close()

	// 204 No Content, success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return fault.New(fault.FromStatus(resp.StatusCode), "request "+path, apiErr)
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
