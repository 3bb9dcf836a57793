package types

import "time"

// CascadeKind names the user action that started a cascade.
type CascadeKind string

// Cascade kinds
const (
	CascadePropose CascadeKind = "propose"
	CascadeAccept  CascadeKind = "accept"
	CascadeDecline CascadeKind = "decline"
	CascadeSubmit  CascadeKind = "submit"
	CascadeReview  CascadeKind = "review"
)

// CascadeStatus is the overall progress of a cascade.
type CascadeStatus string

// Cascade statuses
const (
	CascadeRunning   CascadeStatus = "running"
	CascadeCompleted CascadeStatus = "completed"
	CascadePartial   CascadeStatus = "partial"
	CascadeFailed    CascadeStatus = "failed"
)

// StepStatus is the progress of one write inside a cascade.
type StepStatus string

// Step statuses
const (
	StepPending   StepStatus = "pending"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
)

// CascadeStep records one write of a cascade.
type CascadeStep struct {
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	Error       string     `json:"error,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
}

// CascadeRecord is the persisted log of a multi-document write sequence.
// It holds enough input to replay any step that did not complete.
type CascadeRecord struct {
	ID            string            `json:"id,omitempty"`
	Kind          CascadeKind       `json:"kind"`
	Status        CascadeStatus     `json:"status"`
	ActorID       string            `json:"actorId,omitempty"`
	ApplicationID string            `json:"applicationId"`
	JobID         string            `json:"jobId,omitempty"`
	InterviewID   string            `json:"interviewId,omitempty"`
	SelectedTime  *time.Time        `json:"selectedTime,omitempty"`
	TargetStatus  ApplicationStatus `json:"targetStatus,omitempty"`

	Interview   *InterviewRecord   `json:"interview,omitempty"`
	Application *ApplicationRecord `json:"application,omitempty"`

	Steps       []CascadeStep `json:"steps"`
	Attempts    int           `json:"attempts"`
	CreatedAt   *time.Time    `json:"createdAt,omitempty"`
	LastUpdated *time.Time    `json:"lastUpdated,omitempty"`
}

// CompletedSteps returns the names of steps that finished.
func (c *CascadeRecord) CompletedSteps() []string {
	var names []string
	for _, step := range c.Steps {
		if step.Status == StepCompleted {
			names = append(names, step.Name)
		}
	}
	return names
}

// NewCascadeSteps returns pending steps with the given names.
func NewCascadeSteps(names ...string) []CascadeStep {
	steps := make([]CascadeStep, len(names))
	for i, name := range names {
		steps[i] = CascadeStep{Name: name, Status: StepPending}
	}
	return steps
}
