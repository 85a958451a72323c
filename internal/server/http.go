package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/groblegark/beadviz/internal/tracker"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *VizServer) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/issues", s.handleCreateIssue)
	mux.HandleFunc("GET /v1/issues", s.handleListIssues)
	mux.HandleFunc("GET /v1/issues/{id}", s.handleGetIssue)
	mux.HandleFunc("PATCH /v1/issues/{id}", s.handleUpdateIssue)
	mux.HandleFunc("POST /v1/issues/{id}/close", s.handleCloseIssue)
	mux.HandleFunc("POST /v1/issues/{id}/dependencies", s.handleAddDependency)
	mux.HandleFunc("DELETE /v1/issues/{id}/dependencies/{depends_on_id}", s.handleRemoveDependency)
	mux.HandleFunc("GET /v1/graph", s.handleGetGraph)
	mux.HandleFunc("GET /v1/sync/status", s.handleSyncStatus)
	mux.HandleFunc("POST /v1/sync", s.handleSyncNow)
	mux.HandleFunc("GET /v1/sync/history", s.handleSyncHistory)
	mux.HandleFunc("GET /v1/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *VizServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeTrackerError maps a normalized tracker failure onto an HTTP status
// and writes it. Non-tracker errors come out as 502: the failure happened in
// the subprocess this server fronts for.
func writeTrackerError(w http.ResponseWriter, err error) {
	status := http.StatusBadGateway
	var te *tracker.Error
	if errors.As(err, &te) {
		switch te.Kind {
		case tracker.KindNotFound:
			status = http.StatusNotFound
		case tracker.KindCycle, tracker.KindDuplicate:
			status = http.StatusConflict
		case tracker.KindValidation:
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(tracker.KindOf(err)),
	})
}
