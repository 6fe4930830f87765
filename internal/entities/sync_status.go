package entities

// SyncStatus is returned by the external calendar sync action. A failed sync
// reports connected=false with a zero count; booking continues without
// external blocking.
type SyncStatus struct {
	Connected        bool   `json:"connected"`
	BlockedDateCount int    `json:"blocked_date_count"`
	SyncedAt         string `json:"synced_at,omitempty"`
}
