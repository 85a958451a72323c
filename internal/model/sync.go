package model

import "time"

// SyncStatus is the externally visible state of a working directory's
// sync controller.
type SyncStatus string

const (
	SyncIdle    SyncStatus = "idle"
	SyncSyncing SyncStatus = "syncing"
	SyncError   SyncStatus = "error"
)

// String returns the string representation of the sync status.
func (s SyncStatus) String() string {
	return string(s)
}

// SyncState is a point-in-time snapshot of a controller. One instance per
// working directory; mutated only by that directory's controller.
type SyncState struct {
	Status    SyncStatus `json:"status"`
	LastSync  *time.Time `json:"last_sync,omitempty"`
	LastError string     `json:"last_error,omitempty"`
	Pending   bool       `json:"pending"`
}
