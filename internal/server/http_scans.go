package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/forge/internal/events"
	"github.com/alfredjeanlab/forge/internal/idgen"
	"github.com/alfredjeanlab/forge/internal/model"
	"github.com/alfredjeanlab/forge/internal/store"
)

// enqueueScanInput holds parameters for enqueueing a scan.
type enqueueScanInput struct {
	Type      string `json:"type"`
	Framework string `json:"framework"` // empty = auto-detect
	Root      string `json:"root"`
	CreatedBy string `json:"created_by"`
}

// handleEnqueueScan handles POST /v1/scans.
func (s *ForgeServer) handleEnqueueScan(w http.ResponseWriter, r *http.Request) {
	var in enqueueScanInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, err := idgen.GenerateWithPrefix(idgen.ScanPrefix)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate ID")
		return
	}

	now := time.Now().UTC()
	job := &model.ScanJob{
		ID:        id,
		Type:      model.ScanType(in.Type),
		Framework: model.Framework(in.Framework),
		Root:      filepath.Clean(in.Root),
		Status:    model.ScanPending,
		CreatedBy: in.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := model.ValidateScanJob(job); err != nil {
		writeError(w, http.StatusBadRequest, "invalid scan: "+err.Error())
		return
	}
	if !s.rootAllowed(job.Root) {
		writeError(w, http.StatusBadRequest, "root is outside the allowed scan roots")
		return
	}

	if err := s.store.CreateScan(r.Context(), job); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to enqueue scan")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicScanEnqueued, job.ID, job.CreatedBy, events.ScanEnqueued{Scan: job})

	writeJSON(w, http.StatusCreated, job)
}

// rootAllowed reports whether root falls under one of the configured scan
// roots. An empty allowlist accepts any root.
func (s *ForgeServer) rootAllowed(root string) bool {
	if len(s.AllowedScanRoots) == 0 {
		return true
	}
	for _, allowed := range s.AllowedScanRoots {
		allowed = filepath.Clean(allowed)
		if root == allowed || strings.HasPrefix(root, allowed+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// handleListScans handles GET /v1/scans.
func (s *ForgeServer) handleListScans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := model.ScanFilter{
		Sort: q.Get("sort"),
	}

	if v := q.Get("status"); v != "" {
		for _, st := range strings.Split(v, ",") {
			filter.Status = append(filter.Status, model.ScanStatus(st))
		}
	}
	if v := q.Get("type"); v != "" {
		for _, t := range strings.Split(v, ",") {
			filter.Type = append(filter.Type, model.ScanType(t))
		}
	}
	if v := q.Get("framework"); v != "" {
		for _, f := range strings.Split(v, ",") {
			filter.Framework = append(filter.Framework, model.Framework(f))
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Limit = n
		}
	}
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			filter.Offset = n
		}
	}

	scans, total, err := s.store.ListScans(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list scans")
		return
	}

	if scans == nil {
		scans = []*model.ScanJob{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"scans": scans,
		"total": total,
	})
}

// handleGetScan handles GET /v1/scans/{id}.
func (s *ForgeServer) handleGetScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.GetScan(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get scan")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleCancelScan handles POST /v1/scans/{id}/cancel.
// Only pending scans can be canceled; anything else is a conflict.
func (s *ForgeServer) handleCancelScan(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	job, err := s.store.CancelScan(r.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "scan not found")
		return
	}
	if errors.Is(err, store.ErrInvalidTransition) {
		writeError(w, http.StatusConflict, "scan is not pending")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to cancel scan")
		return
	}

	s.recordAndPublish(r.Context(), events.TopicScanCanceled, job.ID, "", events.ScanCanceled{ScanID: job.ID})

	writeJSON(w, http.StatusOK, job)
}

// handleGetFindings handles GET /v1/scans/{id}/findings.
func (s *ForgeServer) handleGetFindings(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	findings, err := s.store.GetFindings(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get findings")
		return
	}
	if findings == nil {
		findings = []*model.Finding{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"findings": findings})
}
