package types

import "fmt"

// ApplicationStatus is the lifecycle state of an application. The same values
// are mirrored onto the job document for employer listings.
type ApplicationStatus string

// Application statuses
const (
	ApplicationPending            ApplicationStatus = "pending"
	ApplicationReviewing          ApplicationStatus = "reviewing"
	ApplicationInterviewRequested ApplicationStatus = "interview_requested"
	ApplicationInterviewConfirmed ApplicationStatus = "interview_confirmed"
	ApplicationInterviewDeclined  ApplicationStatus = "interview_declined"
	ApplicationAccepted           ApplicationStatus = "accepted"
	ApplicationRejected           ApplicationStatus = "rejected"
)

// ApplicationStatuses lists every defined application status in lifecycle order.
var ApplicationStatuses = []ApplicationStatus{
	ApplicationPending,
	ApplicationReviewing,
	ApplicationInterviewRequested,
	ApplicationInterviewConfirmed,
	ApplicationInterviewDeclined,
	ApplicationAccepted,
	ApplicationRejected,
}

// ParseApplicationStatus converts a raw string into a defined status.
func ParseApplicationStatus(s string) (ApplicationStatus, error) {
	status := ApplicationStatus(s)
	if !status.IsValid() {
		return "", fmt.Errorf("unknown application status: %q", s)
	}
	return status, nil
}

// IsValid reports whether s is one of the defined statuses.
func (s ApplicationStatus) IsValid() bool {
	switch s {
	case ApplicationPending, ApplicationReviewing, ApplicationInterviewRequested,
		ApplicationInterviewConfirmed, ApplicationInterviewDeclined,
		ApplicationAccepted, ApplicationRejected:
		return true
	default:
		return false
	}
}

// IsFinal reports whether the employer has closed the application.
func (s ApplicationStatus) IsFinal() bool {
	return s == ApplicationAccepted || s == ApplicationRejected
}

func (s ApplicationStatus) String() string {
	return string(s)
}

// InterviewStatus is the state of an interview proposal.
type InterviewStatus string

// Interview statuses
const (
	InterviewPending   InterviewStatus = "pending"
	InterviewConfirmed InterviewStatus = "confirmed"
	InterviewDeclined  InterviewStatus = "declined"
)

// IsValid reports whether s is one of the defined interview statuses.
func (s InterviewStatus) IsValid() bool {
	switch s {
	case InterviewPending, InterviewConfirmed, InterviewDeclined:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the interview has been answered. Terminal
// interviews never change state again.
func (s InterviewStatus) IsTerminal() bool {
	return s == InterviewConfirmed || s == InterviewDeclined
}

func (s InterviewStatus) String() string {
	return string(s)
}

// InterviewAction is the student's answer to an interview proposal.
type InterviewAction string

// Interview actions
const (
	ActionAccept  InterviewAction = "accept"
	ActionDecline InterviewAction = "decline"
)

// ParseInterviewAction converts a raw string into an action.
func ParseInterviewAction(s string) (InterviewAction, error) {
	switch a := InterviewAction(s); a {
	case ActionAccept, ActionDecline:
		return a, nil
	default:
		return "", fmt.Errorf("unknown interview action: %q", s)
	}
}

// JobStatus is the listing state of a job posting.
type JobStatus string

// Job statuses
const (
	JobActive JobStatus = "active"
	JobClosed JobStatus = "closed"
)
