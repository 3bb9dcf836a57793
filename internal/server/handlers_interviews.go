package server

import (
	"context"
	"net/http"

	"github.com/jonathan/career-services/internal/dashboard"
	"github.com/jonathan/career-services/internal/server/middleware"
	"github.com/jonathan/career-services/internal/types"
	"github.com/jonathan/career-services/internal/workflow"
)

// ProposeInterviewResponse carries the id of the created interview
type ProposeInterviewResponse struct {
	ID string `json:"id"`
}

// RespondInterviewResponse is the outcome of a response together with the
// refreshed student dashboard. The dashboard is sent whether or not the
// response succeeded.
type RespondInterviewResponse struct {
	Interview *dashboard.InterviewView    `json:"interview,omitempty"`
	Error     string                      `json:"error,omitempty"`
	Dashboard *dashboard.StudentDashboard `json:"dashboard,omitempty"`
}

// handleProposeInterview creates an interview proposal for an application
// received by the calling employer
func (s *Server) handleProposeInterview(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	applicationID := r.PathValue("id")
	if applicationID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Application ID is required")
		return
	}

	var req types.ProposeInterviewRequest
	if err := decodeJSON(r, &req); err != nil {
		s.actionError(w, r, "propose interview", err)
		return
	}
	if len(req.ProposedTimes) == 0 {
		s.actionError(w, r, "propose interview",
			&workflow.ValidationError{Field: "proposedTimes", Message: "at least one proposed time is required"})
		return
	}
	if err := req.Validate(); err != nil {
		s.actionError(w, r, "propose interview", &ErrBadRequest{Message: err.Error()})
		return
	}

	app, err := s.workflow.GetApplication(r.Context(), applicationID)
	if err != nil {
		s.actionError(w, r, "propose interview", err)
		return
	}
	if app.EmployerID != identity.UserID {
		s.actionError(w, r, "propose interview", &workflow.ForbiddenError{Message: "application belongs to another employer"})
		return
	}

	interviewID, err := s.workflow.ProposeInterview(r.Context(), app.ID, app.JobID, identity.UserID, app.UserID,
		req.ProposedTimes, req.Metadata())
	if err != nil {
		s.actionError(w, r, "propose interview", err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, ProposeInterviewResponse{ID: interviewID})
}

// handleRespondInterview applies the calling student's answer to an
// interview and returns the refreshed dashboard
func (s *Server) handleRespondInterview(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	interviewID := r.PathValue("id")

	err := s.respondToInterview(r, identity, interviewID)

	resp := RespondInterviewResponse{Dashboard: s.refreshStudentDashboard(r.Context(), identity.UserID)}
	if err != nil {
		status := HTTPStatus(err)
		s.logActionError(r, "respond to interview", err, status)
		resp.Error = ErrorMessage(err)
		s.jsonResponse(w, status, resp)
		return
	}

	if iv, getErr := s.workflow.GetInterview(r.Context(), interviewID); getErr == nil {
		view := dashboard.InterviewView{InterviewRecord: *iv, Display: iv.Status.Project()}
		resp.Interview = &view
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) respondToInterview(r *http.Request, identity types.Identity, interviewID string) error {
	if interviewID == "" {
		return &ErrBadRequest{Message: "Interview ID is required"}
	}

	var req types.RespondInterviewRequest
	if err := decodeRequest(r, &req); err != nil {
		return err
	}

	iv, err := s.workflow.GetInterview(r.Context(), interviewID)
	if err != nil {
		return err
	}
	if iv.StudentID != identity.UserID {
		return &workflow.ForbiddenError{Message: "interview belongs to another student"}
	}

	return s.workflow.RespondToInterview(r.Context(), interviewID, req.Action, req.SelectedTime)
}

// refreshStudentDashboard reloads the student's dashboard. A failed refresh
// is logged and leaves the response without a dashboard.
func (s *Server) refreshStudentDashboard(ctx context.Context, studentID string) *dashboard.StudentDashboard {
	view, err := s.dashboards.Student(ctx, studentID)
	if err != nil {
		s.logger.Error("dashboard refresh failed", "user_id", studentID, "error", err)
		return nil
	}
	return view
}

// handleGetInterview retrieves an interview visible to the caller
func (s *Server) handleGetInterview(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetIdentity(r)
	id := r.PathValue("id")
	if id == "" {
		s.errorResponse(w, http.StatusBadRequest, "Interview ID is required")
		return
	}

	iv, err := s.workflow.GetInterview(r.Context(), id)
	if err != nil {
		s.actionError(w, r, "get interview", err)
		return
	}
	if !identity.Is(types.RoleAdmin) && iv.StudentID != identity.UserID && iv.EmployerID != identity.UserID {
		s.actionError(w, r, "get interview", &workflow.ForbiddenError{Message: "interview belongs to another user"})
		return
	}
	s.jsonResponse(w, http.StatusOK, dashboard.InterviewView{InterviewRecord: *iv, Display: iv.Status.Project()})
}
