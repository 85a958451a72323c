package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/groblegark/beadviz/internal/events"
	"github.com/groblegark/beadviz/internal/model"
	"github.com/groblegark/beadviz/internal/tracker"
)

// createIssueInput is the JSON body for POST /v1/issues.
type createIssueInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"issue_type"`
	Priority    *int   `json:"priority"`
}

// updateIssueInput is the JSON body for PATCH /v1/issues/{id}.
// Absent fields are left untouched.
type updateIssueInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Assignee    *string `json:"assignee"`
	Priority    *int    `json:"priority"`
}

// handleCreateIssue handles POST /v1/issues.
func (s *VizServer) handleCreateIssue(w http.ResponseWriter, r *http.Request) {
	var in createIssueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	issue, err := s.tracker.CreateIssue(r.Context(), tracker.CreateInput{
		Title:       in.Title,
		Description: in.Description,
		Type:        model.IssueType(in.Type),
		Priority:    in.Priority,
	})
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	s.publishAndBroadcast(r.Context(), events.TopicIssueCreated, events.IssueCreated{Issue: issue})
	s.controller.Enqueue(fmt.Sprintf("create %s: %s", issue.ID, issue.Title))

	writeJSON(w, http.StatusCreated, issue)
}

// handleListIssues handles GET /v1/issues.
func (s *VizServer) handleListIssues(w http.ResponseWriter, r *http.Request) {
	issues, err := s.tracker.ListIssues(r.Context())
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	if issues == nil {
		issues = []*model.Issue{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"issues": issues,
		"total":  len(issues),
	})
}

// handleGetIssue handles GET /v1/issues/{id}.
func (s *VizServer) handleGetIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	issue, err := s.tracker.GetIssue(r.Context(), id)
	if err != nil {
		writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

// handleUpdateIssue handles PATCH /v1/issues/{id}.
func (s *VizServer) handleUpdateIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var in updateIssueInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	patch := tracker.UpdatePatch{
		Title:       in.Title,
		Description: in.Description,
		Assignee:    in.Assignee,
		Priority:    in.Priority,
	}
	if in.Status != nil {
		st := model.Status(*in.Status)
		if !st.IsValid() {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid status %q", *in.Status))
			return
		}
		patch.Status = &st
	}

	issue, err := s.tracker.UpdateIssue(r.Context(), id, patch)
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	s.publishAndBroadcast(r.Context(), events.TopicIssueUpdated, events.IssueUpdated{Issue: issue})
	s.controller.Enqueue(fmt.Sprintf("update %s", issue.ID))

	writeJSON(w, http.StatusOK, issue)
}

// handleCloseIssue handles POST /v1/issues/{id}/close.
// Accepts an optional JSON body with a "reason".
func (s *VizServer) handleCloseIssue(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Reason string `json:"reason"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	issue, err := s.tracker.CloseIssue(r.Context(), id, body.Reason)
	if err != nil {
		writeTrackerError(w, err)
		return
	}

	s.publishAndBroadcast(r.Context(), events.TopicIssueClosed, events.IssueClosed{Issue: issue, Reason: body.Reason})
	s.controller.Enqueue(fmt.Sprintf("close %s", issue.ID))

	writeJSON(w, http.StatusOK, issue)
}

// handleAddDependency handles POST /v1/issues/{id}/dependencies.
// The issue in the path is blocked by the issue in the body.
func (s *VizServer) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		DependsOnID string `json:"depends_on_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.DependsOnID == "" {
		writeError(w, http.StatusBadRequest, "depends_on_id is required")
		return
	}

	if err := s.tracker.AddDependency(r.Context(), id, body.DependsOnID); err != nil {
		writeTrackerError(w, err)
		return
	}

	s.publishAndBroadcast(r.Context(), events.TopicDependencyAdded, events.DependencyAdded{
		IssueID:     id,
		DependsOnID: body.DependsOnID,
	})
	s.controller.Enqueue(fmt.Sprintf("dep add %s -> %s", id, body.DependsOnID))

	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveDependency handles DELETE /v1/issues/{id}/dependencies/{depends_on_id}.
func (s *VizServer) handleRemoveDependency(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	dependsOnID := r.PathValue("depends_on_id")

	if err := s.tracker.RemoveDependency(r.Context(), id, dependsOnID); err != nil {
		writeTrackerError(w, err)
		return
	}

	s.publishAndBroadcast(r.Context(), events.TopicDependencyRemoved, events.DependencyRemoved{
		IssueID:     id,
		DependsOnID: dependsOnID,
	})
	s.controller.Enqueue(fmt.Sprintf("dep remove %s -> %s", id, dependsOnID))

	w.WriteHeader(http.StatusNoContent)
}
