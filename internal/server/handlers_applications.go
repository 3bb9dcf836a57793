package server

import (
	"net/http"

	"github.com/jonathan/career-services/internal/dashboard"
	"github.com/jonathan/career-services/internal/server/middleware"
	"github.com/jonathan/career-services/internal/types"
)

// ListApplicationsResponse represents the response for listing applications
type ListApplicationsResponse struct {
	Applications []dashboard.ApplicationView `json:"applications"`
	Count        int                         `json:"count"`
}

func applicationView(app *types.ApplicationRecord) dashboard.ApplicationView {
	return dashboard.ApplicationView{ApplicationRecord: *app, Display: app.Status.Project()}
}

// handleSubmitApplication applies the calling student to a job
func (s *Server) handleSubmitApplication(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	jobID := r.PathValue("id")
	if jobID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	var req types.SubmitApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		s.actionError(w, r, "submit application", err)
		return
	}

	// Required fields are checked by the workflow so the messages match the form.
	app, err := s.workflow.SubmitApplication(r.Context(), jobID, identity.UserID, req)
	if err != nil {
		s.actionError(w, r, "submit application", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, applicationView(app))
}

// handleListApplications lists the caller's applications: a student's own,
// or those received by an employer
func (s *Server) handleListApplications(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)

	var (
		apps []types.ApplicationRecord
		err  error
	)
	if identity.Is(types.RoleEmployer) {
		apps, err = s.workflow.ListApplicationsByEmployer(r.Context(), identity.UserID)
	} else {
		apps, err = s.workflow.ListApplicationsByStudent(r.Context(), identity.UserID)
	}
	if err != nil {
		s.actionError(w, r, "list applications", err)
		return
	}

	var filter types.ApplicationStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		filter, err = types.ParseApplicationStatus(raw)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid status")
			return
		}
	}

	views := make([]dashboard.ApplicationView, 0, len(apps))
	for i := range apps {
		if filter != "" && apps[i].Status != filter {
			continue
		}
		views = append(views, applicationView(&apps[i]))
	}
	s.jsonResponse(w, http.StatusOK, ListApplicationsResponse{Applications: views, Count: len(views)})
}

// handleUpdateApplicationStatus applies an employer review decision
func (s *Server) handleUpdateApplicationStatus(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Application ID is required")
		return
	}

	var req types.UpdateApplicationStatusRequest
	if err := decodeRequest(r, &req); err != nil {
		s.actionError(w, r, "update application status", err)
		return
	}

	app, err := s.workflow.UpdateApplicationStatus(r.Context(), id, identity.UserID, req.Status)
	if err != nil {
		s.actionError(w, r, "update application status", err)
		return
	}
	s.jsonResponse(w, http.StatusOK, applicationView(app))
}
