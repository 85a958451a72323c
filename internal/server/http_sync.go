package server

import (
	"net/http"
	"strconv"

	"github.com/groblegark/beadviz/internal/history"
)

// handleSyncStatus handles GET /v1/sync/status.
func (s *VizServer) handleSyncStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"dir":   s.controller.Dir(),
		"state": s.controller.State(),
	})
}

// handleSyncNow handles POST /v1/sync. It enqueues a sync when nothing is
// pending yet and flushes immediately, skipping the debounce window.
func (s *VizServer) handleSyncNow(w http.ResponseWriter, r *http.Request) {
	if !s.controller.State().Pending {
		s.controller.Enqueue("")
	}
	if err := s.controller.Flush(); err != nil {
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"error": err.Error(),
			"state": s.controller.State(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"dir":   s.controller.Dir(),
		"state": s.controller.State(),
	})
}

// handleSyncHistory handles GET /v1/sync/history.
func (s *VizServer) handleSyncHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "sync history is not configured")
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := s.history.List(r.Context(), s.controller.Dir(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sync history")
		return
	}
	if records == nil {
		records = []*history.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"attempts": records,
		"total":    len(records),
	})
}
