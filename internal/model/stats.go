package model

// WorkspaceStats holds aggregate idea and scan counts by status.
type WorkspaceStats struct {
	IdeasProposed   int `json:"ideas_proposed"`
	IdeasAccepted   int `json:"ideas_accepted"`
	IdeasInProgress int `json:"ideas_in_progress"`
	IdeasShipped    int `json:"ideas_shipped"`
	IdeasRejected   int `json:"ideas_rejected"`
	ScansPending    int `json:"scans_pending"`
	ScansRunning    int `json:"scans_running"`
	ScansCompleted  int `json:"scans_completed"`
	ScansFailed     int `json:"scans_failed"`
}
