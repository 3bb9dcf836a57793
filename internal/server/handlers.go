package server

import (
	"context"
	"net/http"
	"time"

	"github.com/jonathan/career-services/internal/server/middleware"
	"github.com/jonathan/career-services/internal/types"
)

// StatusEntry is one row of the status projection table.
type StatusEntry struct {
	Status types.ApplicationStatus `json:"status"`
	Final  bool                    `json:"final"`
	types.StatusProjection
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.workflow.Repository().Store().(Pinger); ok {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			s.logger.Error("health check failed", "error", err)
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatuses returns the display projection of every application status
func (s *Server) handleStatuses(w http.ResponseWriter, _ *http.Request) {
	entries := make([]StatusEntry, 0, len(types.ApplicationStatuses))
	for _, status := range types.ApplicationStatuses {
		entries = append(entries, StatusEntry{
			Status:           status,
			Final:            status.IsFinal(),
			StatusProjection: status.Project(),
		})
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"statuses": entries})
}

// handleDashboard returns the dashboard for the caller's role
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	identity, err := middleware.GetIdentity(r)
	if err != nil {
		s.errorResponse(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	view, err := s.dashboards.For(r.Context(), identity)
	if err != nil {
		s.actionError(w, r, "load dashboard", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

// handleReconcileCascade replays the remaining steps of a stopped cascade
func (s *Server) handleReconcileCascade(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Cascade ID is required")
		return
	}

	cascade, err := s.workflow.Reconcile(r.Context(), id)
	if err != nil {
		s.actionError(w, r, "reconcile cascade", err)
		return
	}
	s.logger.Info("cascade reconciled", "cascade_id", cascade.ID, "kind", cascade.Kind, "status", cascade.Status)
	s.jsonResponse(w, http.StatusOK, cascade)
}
