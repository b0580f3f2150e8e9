package storage

import "time"

// Partition names the keys that hold one platform's data.
type Partition struct {
	Platform      string
	DataKey       string
	LastSyncKey   string
	LegacyDataKey string // read once when DataKey is empty, then migrated
	LegacySyncKey string
}

// SyncRun is one entry of a platform's sync history.
type SyncRun struct {
	ID          string     `json:"id"`
	Platform    string     `json:"platform"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	State       string     `json:"state"`
	Pages       int        `json:"pages"`
	Fetched     int        `json:"fetched"`
	Added       int        `json:"added"`
	Total       int        `json:"total"`
	Error       string     `json:"error,omitempty"`
}

// MaxSyncRuns is how many history entries are kept per platform.
const MaxSyncRuns = 50
