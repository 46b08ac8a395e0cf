package admin

import "time"

// PendingRecordResponse is one queued registration as the review
// surface presents it: the record plus how long it has waited.
type PendingRecordResponse struct {
	RecordID    string    `json:"record_id"`
	TagID       string    `json:"tag_id"`
	OwnerID     string    `json:"owner_id"`
	Region      string    `json:"region"`
	SubmittedAt time.Time `json:"submitted_at"`
	PendingFor  string    `json:"pending_for"`
	Overdue     bool      `json:"overdue"`
}

// PendingListResponse wraps a region's review queue.
type PendingListResponse struct {
	Region  string                  `json:"region"`
	Records []PendingRecordResponse `json:"records"`
	Total   int                     `json:"total"`
}

// OverdueListResponse lists pending records past the approval window
// across all regions. Advisory: nothing here changes record state.
type OverdueListResponse struct {
	Records []PendingRecordResponse `json:"records"`
	Total   int                     `json:"total"`
}

// StatsResponse summarizes the registry by lifecycle status.
type StatsResponse struct {
	ByStatus map[string]int `json:"by_status"`
	Total    int            `json:"total"`
}

// RegionResponse is one directory entry.
type RegionResponse struct {
	Region  string `json:"region"`
	AdminID string `json:"admin_id,omitempty"`
}

// RegionsListResponse wraps the region directory.
type RegionsListResponse struct {
	Regions []RegionResponse `json:"regions"`
}
