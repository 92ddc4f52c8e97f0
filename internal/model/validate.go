package model

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// ValidateIdea checks an Idea for constraint violations.
// It returns a *ValidationError if any rules fail, or nil if the idea is valid.
// All failing fields are reported at once; validation never stops at the first error.
func ValidateIdea(i *Idea) error {
	var ve ValidationError

	// Title: required and at most 500 characters.
	title := strings.TrimSpace(i.Title)
	if title == "" {
		ve.add("title", "is required")
	} else if len([]rune(title)) > 500 {
		ve.add("title", "must be 500 characters or fewer")
	}

	// Priority: must be 0-4.
	if i.Priority < 0 || i.Priority > 4 {
		ve.add("priority", fmt.Sprintf("must be between 0 and 4, got %d", i.Priority))
	}

	// Effort / impact: must be 0-5.
	if i.Effort < 0 || i.Effort > 5 {
		ve.add("effort", fmt.Sprintf("must be between 0 and 5, got %d", i.Effort))
	}
	if i.Impact < 0 || i.Impact > 5 {
		ve.add("impact", fmt.Sprintf("must be between 0 and 5, got %d", i.Impact))
	}

	// Status: must be a valid enum value (closed set).
	if !i.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", i.Status))
	}

	// Framework: empty is allowed for manual ideas.
	if !i.Framework.IsValid() {
		ve.add("framework", fmt.Sprintf("invalid value %q", i.Framework))
	}

	// DecidedAt consistency with Status.
	if i.Status.IsValid() {
		if i.Status.IsDecided() && i.DecidedAt == nil {
			ve.add("decided_at", fmt.Sprintf("is required when status is %s", i.Status))
		}
		if !i.Status.IsDecided() && i.DecidedAt != nil {
			ve.add("decided_at", "must be nil when status is proposed")
		}
	}

	// Fields: must be valid JSON if present.
	if len(i.Fields) > 0 && !json.Valid(i.Fields) {
		ve.add("fields", "contains invalid JSON")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}

// ValidateScanJob checks a ScanJob for constraint violations.
func ValidateScanJob(j *ScanJob) error {
	var ve ValidationError

	if !j.Type.IsValid() {
		ve.add("type", fmt.Sprintf("invalid value %q", j.Type))
	}
	if !j.Framework.IsValid() {
		ve.add("framework", fmt.Sprintf("invalid value %q", j.Framework))
	}
	if strings.TrimSpace(j.Root) == "" {
		ve.add("root", "is required")
	} else if !filepath.IsAbs(j.Root) {
		// Relative roots would resolve against the server's working
		// directory, not the caller's.
		ve.add("root", "must be an absolute path")
	}
	if !j.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", j.Status))
	}
	if j.Status == ScanFailed && strings.TrimSpace(j.Error) == "" {
		ve.add("error", "is required when status is failed")
	}
	if j.Status != ScanFailed && j.Error != "" {
		ve.add("error", "must be empty unless status is failed")
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
