package dto

// SyncRequest is the body of POST /api/sync and POST /api/sync/jobs.
type SyncRequest struct {
	Platform    string `json:"platform"` // "zomato", "swiggy"
	Incremental bool   `json:"incremental"`
	MaxPages    int    `json:"max_pages"` // 0 keeps the platform ceiling
}

// SyncResponse is the reply to a blocking sync trigger. Success carries
// count and platform, failure carries code and message.
type SyncResponse struct {
	Status   string `json:"status"` // "success" or "error"
	Count    int    `json:"count"`
	Platform string `json:"platform,omitempty"`
	Added    int    `json:"added"`
	Total    int    `json:"total"`
	Code     string `json:"code,omitempty"` // one of the ErrCode values
	Message  string `json:"message,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// Sync trigger status values.
const (
	SyncStatusSuccess = "success"
	SyncStatusError   = "error"
)

// StartSyncResponse is returned when a sync job is started.
type StartSyncResponse struct {
	JobID    string `json:"job_id"`
	Platform string `json:"platform"`
	Status   string `json:"status"`
}

// SyncJobResponse represents a sync job's status.
type SyncJobResponse struct {
	JobID       string               `json:"job_id"`
	Platform    string               `json:"platform"`
	Status      string               `json:"status"`
	Incremental bool                 `json:"incremental"`
	StartedAt   string               `json:"started_at"`
	CompletedAt *string              `json:"completed_at,omitempty"`
	Progress    SyncProgressResponse `json:"progress"`
	Result      *SyncResultResponse  `json:"result,omitempty"`
	Error       *string              `json:"error,omitempty"`
}

// SyncProgressResponse represents real-time progress.
type SyncProgressResponse struct {
	Phase      string `json:"phase"`
	Message    string `json:"message,omitempty"`
	Page       int    `json:"page"`
	Count      int    `json:"count"`
	Percent    int    `json:"percent"`
	LastUpdate string `json:"last_update"`
}

// SyncResultResponse represents the final result.
type SyncResultResponse struct {
	Count int    `json:"count"`
	Added int    `json:"added"`
	Total int    `json:"total"`
	Pages int    `json:"pages"`
	State string `json:"state"`
}

// SyncJobsResponse lists sync jobs.
type SyncJobsResponse struct {
	Jobs  []SyncJobResponse `json:"jobs"`
	Count int               `json:"count"`
}

// MessageResponse is a generic message response.
type MessageResponse struct {
	Message string `json:"message"`
}
