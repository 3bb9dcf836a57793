package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/types"
)

// ProposeInterview creates a pending interview with the proposed slots and
// links it to the application. It returns the new interview id.
func (s *Service) ProposeInterview(ctx context.Context, applicationID, jobID, employerID, studentID string,
	proposedTimes []time.Time, meta types.InterviewMetadata) (string, error) {
	if len(proposedTimes) == 0 {
		return "", &ValidationError{Field: "proposedTimes", Message: "at least one proposed time is required"}
	}
	slots := make([]time.Time, len(proposedTimes))
	for i, t := range proposedTimes {
		if t.IsZero() {
			return "", &ValidationError{Field: "proposedTimes", Message: "proposed times must be set"}
		}
		slots[i] = t.UTC()
	}
	for _, ref := range []struct{ field, value string }{
		{"applicationId", applicationID},
		{"jobId", jobID},
		{"employerId", employerID},
		{"studentId", studentID},
	} {
		if ref.value == "" {
			return "", &ValidationError{Field: ref.field, Message: "is required"}
		}
	}

	app, err := s.repo.GetApplication(ctx, applicationID)
	if err != nil {
		return "", err
	}
	for _, ref := range []struct{ field, got, want string }{
		{"jobId", jobID, app.JobID},
		{"employerId", employerID, app.EmployerID},
		{"studentId", studentID, app.UserID},
	} {
		if ref.got != ref.want {
			return "", &ValidationError{Field: ref.field, Message: "does not match application " + applicationID}
		}
	}
	if app.Status.IsFinal() {
		return "", &TransitionError{Entity: "application", ID: applicationID, From: app.Status.String(), Action: "propose interview for"}
	}
	pending, err := s.pendingInterview(ctx, app)
	if err != nil {
		return "", err
	}
	if pending != "" {
		return "", &ConflictError{Message: fmt.Sprintf("application %s already has pending interview %s", applicationID, pending)}
	}

	if meta.Duration <= 0 {
		meta.Duration = defaultInterviewDuration
	}
	if meta.CompanyName == "" {
		meta.CompanyName = app.CompanyName
	}
	if meta.Position == "" {
		meta.Position = app.JobTitle
	}

	interviewID := s.newID()
	c := &types.CascadeRecord{
		Kind:          types.CascadePropose,
		ActorID:       employerID,
		ApplicationID: applicationID,
		JobID:         jobID,
		InterviewID:   interviewID,
		Interview: &types.InterviewRecord{
			ApplicationID: applicationID,
			JobID:         jobID,
			EmployerID:    employerID,
			StudentID:     studentID,
			CompanyName:   meta.CompanyName,
			Position:      meta.Position,
			ProposedTimes: slots,
			Duration:      meta.Duration,
			Location:      meta.Location,
			Notes:         meta.Notes,
			Status:        types.InterviewPending,
		},
	}
	if err := s.start(ctx, c); err != nil {
		return "", err
	}
	return interviewID, nil
}

// RespondToInterview applies the student's answer to a pending interview and
// cascades the result to the application and the job mirror. Accepting
// requires selectedTime; it is not checked against the proposed slots.
func (s *Service) RespondToInterview(ctx context.Context, interviewID string, action types.InterviewAction, selectedTime *time.Time) error {
	if _, err := types.ParseInterviewAction(string(action)); err != nil {
		return &ValidationError{Field: "action", Message: "must be accept or decline"}
	}
	if action == types.ActionAccept && (selectedTime == nil || selectedTime.IsZero()) {
		return &ValidationError{Field: "selectedTime", Message: "a time slot must be selected to accept"}
	}

	iv, err := s.repo.GetInterview(ctx, interviewID)
	if err != nil {
		return err
	}
	if iv.Status.IsTerminal() {
		return &TransitionError{Entity: "interview", ID: interviewID, From: iv.Status.String(), Action: string(action)}
	}
	app, err := s.repo.GetApplication(ctx, iv.ApplicationID)
	if err != nil {
		return err
	}
	if app.Status.IsFinal() {
		return &TransitionError{Entity: "application", ID: app.ID, From: app.Status.String(), Action: string(action) + " interview for"}
	}
	if app.InterviewID != interviewID {
		return &ConflictError{Message: fmt.Sprintf("interview %s is not the current interview of application %s", interviewID, app.ID)}
	}

	c := &types.CascadeRecord{
		ActorID:       iv.StudentID,
		ApplicationID: iv.ApplicationID,
		JobID:         iv.JobID,
		InterviewID:   interviewID,
	}
	if action == types.ActionAccept {
		t := selectedTime.UTC()
		c.Kind = types.CascadeAccept
		c.SelectedTime = &t
	} else {
		c.Kind = types.CascadeDecline
	}
	return s.start(ctx, c)
}

// pendingInterview returns the id of the application's linked interview if it
// is still waiting for an answer.
func (s *Service) pendingInterview(ctx context.Context, app *types.ApplicationRecord) (string, error) {
	if app.InterviewID == "" {
		return "", nil
	}
	iv, err := s.repo.GetInterview(ctx, app.InterviewID)
	if errors.Is(err, db.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if iv.Status != types.InterviewPending {
		return "", nil
	}
	return app.InterviewID, nil
}

// GetInterview retrieves an interview.
func (s *Service) GetInterview(ctx context.Context, id string) (*types.InterviewRecord, error) {
	return s.repo.GetInterview(ctx, id)
}

// ListInterviewsByStudent returns the student's interviews with the given
// status, or all of them when status is empty.
func (s *Service) ListInterviewsByStudent(ctx context.Context, studentID string, status types.InterviewStatus) ([]types.InterviewRecord, error) {
	return s.repo.ListInterviews(ctx, records.InterviewFilter{StudentID: studentID, Status: status})
}
