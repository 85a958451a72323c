package model

import "time"

// IssueType categorizes the kind of work an issue represents.
type IssueType string

const (
	TypeTask    IssueType = "task"
	TypeBug     IssueType = "bug"
	TypeFeature IssueType = "feature"
)

// String returns the string representation of the issue type.
func (t IssueType) String() string {
	return string(t)
}

// IsValid checks whether the issue type is a known value.
func (t IssueType) IsValid() bool {
	switch t {
	case TypeTask, TypeBug, TypeFeature:
		return true
	}
	return false
}

// Status represents the current state of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusClosed     Status = "closed"
)

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}

// IsValid checks whether the status is a known value.
func (s Status) IsValid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusClosed:
		return true
	}
	return false
}

// Issue is a transient copy of a work item owned by the external tracker.
// IDs are opaque and externally assigned; this process never invents them.
type Issue struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Status      Status    `json:"status"`
	Type        IssueType `json:"issue_type"`
	Priority    int       `json:"priority"`
	Assignee    string    `json:"assignee,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Dependencies lists the issues blocking this one. The tracker emits
	// either bare blocker IDs or full relationship records; DependencyList
	// normalizes both forms on decode.
	Dependencies DependencyList `json:"dependencies,omitempty"`

	// Derived counts reported by the tracker, when available.
	DependencyCount int `json:"dependency_count,omitempty"`
	DependentCount  int `json:"dependent_count,omitempty"`
}
