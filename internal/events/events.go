package events

import (
	"context"
	"time"

	"github.com/groblegark/beadviz/internal/model"
)

// Event topic constants
const (
	TopicIssueCreated      = "beadviz.issue.created"
	TopicIssueUpdated      = "beadviz.issue.updated"
	TopicIssueClosed       = "beadviz.issue.closed"
	TopicDependencyAdded   = "beadviz.dependency.added"
	TopicDependencyRemoved = "beadviz.dependency.removed"

	// Sync lifecycle events (emitted by the per-directory controller).
	TopicSyncStatusChanged = "beadviz.sync.status_changed"
	TopicSyncCompleted     = "beadviz.sync.completed"
	TopicSyncFailed        = "beadviz.sync.failed"

	// Emitted when the tracker's on-disk storage changes outside this
	// process and rendered graphs should be refreshed.
	TopicGraphUpdated = "beadviz.graph.updated"
)

// Event types

type IssueCreated struct {
	Issue *model.Issue `json:"issue"`
}

type IssueUpdated struct {
	Issue *model.Issue `json:"issue"`
}

type IssueClosed struct {
	Issue  *model.Issue `json:"issue"`
	Reason string       `json:"reason,omitempty"`
}

type DependencyAdded struct {
	IssueID     string `json:"issue_id"`
	DependsOnID string `json:"depends_on_id"`
}

type DependencyRemoved struct {
	IssueID     string `json:"issue_id"`
	DependsOnID string `json:"depends_on_id"`
}

type SyncStatusChanged struct {
	Dir    string           `json:"dir"`
	Status model.SyncStatus `json:"status"`
}

type SyncCompleted struct {
	Dir         string    `json:"dir"`
	Message     string    `json:"message,omitempty"`
	CompletedAt time.Time `json:"completed_at"`
}

type SyncFailed struct {
	Dir   string `json:"dir"`
	Error string `json:"error"`
}

type GraphUpdated struct {
	Dir string `json:"dir"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
