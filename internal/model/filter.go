package model

// IdeaFilter holds criteria for querying ideas.
type IdeaFilter struct {
	Status    []IdeaStatus      `json:"status,omitempty"`
	Framework []Framework       `json:"framework,omitempty"`
	ScanID    string            `json:"scan_id,omitempty"`
	Priority  *int              `json:"priority,omitempty"`
	Labels    []string          `json:"labels,omitempty"`
	Search    string            `json:"search,omitempty"` // full-text search on title/summary
	Fields    map[string]string `json:"fields,omitempty"` // custom field key=value filters (JSONB)
	Sort      string            `json:"sort,omitempty"`   // e.g. "-priority", "created_at"; prefix "-" = descending
	Limit     int               `json:"limit,omitempty"`
	Offset    int               `json:"offset,omitempty"`
}

// ScanFilter holds criteria for querying scan jobs.
type ScanFilter struct {
	Status    []ScanStatus `json:"status,omitempty"`
	Type      []ScanType   `json:"type,omitempty"`
	Framework []Framework  `json:"framework,omitempty"`
	Sort      string       `json:"sort,omitempty"`
	Limit     int          `json:"limit,omitempty"`
	Offset    int          `json:"offset,omitempty"`
}
