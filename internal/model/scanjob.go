package model

import "time"

// Framework identifies the backend framework an adapter targets.
type Framework string

const (
	FrameworkDjango  Framework = "django"
	FrameworkExpress Framework = "express"
	FrameworkFastAPI Framework = "fastapi"
	FrameworkGeneric Framework = "generic"
)

// String returns the string representation of the framework.
func (f Framework) String() string {
	return string(f)
}

// IsValid checks whether the framework is a known value.
// The empty string is also valid and means auto-detect.
func (f Framework) IsValid() bool {
	switch f {
	case "", FrameworkDjango, FrameworkExpress, FrameworkFastAPI, FrameworkGeneric:
		return true
	}
	return false
}

// ScanType selects what a scan looks for.
type ScanType string

const (
	ScanRoutes ScanType = "routes" // HTTP route registrations
	ScanModels ScanType = "models" // data model definitions
	ScanDeps   ScanType = "deps"   // declared dependencies
	ScanTodo   ScanType = "todo"   // TODO/FIXME inventory
	ScanCensus ScanType = "census" // file-extension census
)

// String returns the string representation of the scan type.
func (t ScanType) String() string {
	return string(t)
}

// IsValid checks whether the scan type is a known value.
func (t ScanType) IsValid() bool {
	switch t {
	case ScanRoutes, ScanModels, ScanDeps, ScanTodo, ScanCensus:
		return true
	}
	return false
}

// ScanStatus represents the lifecycle state of a scan job.
type ScanStatus string

const (
	ScanPending   ScanStatus = "pending"
	ScanRunning   ScanStatus = "running"
	ScanCompleted ScanStatus = "completed"
	ScanFailed    ScanStatus = "failed"
	ScanCanceled  ScanStatus = "canceled"
)

// String returns the string representation of the status.
func (s ScanStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s ScanStatus) IsValid() bool {
	switch s {
	case ScanPending, ScanRunning, ScanCompleted, ScanFailed, ScanCanceled:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ScanStatus) IsTerminal() bool {
	return s == ScanCompleted || s == ScanFailed || s == ScanCanceled
}

// CanTransitionTo reports whether the transition from s to next is permitted.
// The only legal paths are pending->running->completed|failed and
// pending->canceled.
func (s ScanStatus) CanTransitionTo(next ScanStatus) bool {
	switch s {
	case ScanPending:
		return next == ScanRunning || next == ScanCanceled
	case ScanRunning:
		return next == ScanCompleted || next == ScanFailed
	}
	return false
}

// ScanJob is a queued request to scan a source tree.
type ScanJob struct {
	ID        string     `json:"id"`
	Type      ScanType   `json:"type"`
	Framework Framework  `json:"framework,omitempty"` // empty = auto-detect
	Root      string     `json:"root"`                // source tree to scan
	Status    ScanStatus `json:"status"`
	Error     string     `json:"error,omitempty"` // set when status is failed
	CreatedBy string     `json:"created_by,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	StartedAt *time.Time `json:"started_at,omitempty"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Findings  int        `json:"findings"` // findings persisted by the run
	Ideas     int        `json:"ideas"`    // ideas generated by the run
}

// Finding is a single observation produced by a scan adapter.
type Finding struct {
	ID        int64     `json:"id"`
	ScanID    string    `json:"scan_id"`
	Adapter   Framework `json:"adapter"`
	Kind      string    `json:"kind"` // e.g. "route", "model", "dependency", "todo"
	File      string    `json:"file,omitempty"`
	Line      int       `json:"line,omitempty"`
	Symbol    string    `json:"symbol,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
