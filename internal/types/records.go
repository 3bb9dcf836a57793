package types

import "time"

// ApplicationRecord is a student's application to a job posting.
type ApplicationRecord struct {
	ID          string            `json:"id,omitempty"`
	JobID       string            `json:"jobId"`
	JobTitle    string            `json:"jobTitle,omitempty"`
	UserID      string            `json:"userId"`
	UserName    string            `json:"userName,omitempty"`
	EmployerID  string            `json:"employerId,omitempty"`
	CompanyName string            `json:"companyName,omitempty"`
	CoverLetter string            `json:"coverLetter"`
	CVID        string            `json:"cvId"`
	Status      ApplicationStatus `json:"status"`

	// Interview linkage
	HasInterviewRequest    bool       `json:"hasInterviewRequest,omitempty"`
	InterviewID            string     `json:"interviewId,omitempty"`
	ConfirmedInterviewTime *time.Time `json:"confirmedInterviewTime,omitempty"`
	InterviewConfirmedAt   *time.Time `json:"interviewConfirmedAt,omitempty"`
	InterviewDeclinedAt    *time.Time `json:"interviewDeclinedAt,omitempty"`

	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// InterviewRecord is an employer's interview proposal for one application.
type InterviewRecord struct {
	ID            string          `json:"id,omitempty"`
	ApplicationID string          `json:"applicationId"`
	JobID         string          `json:"jobId"`
	EmployerID    string          `json:"employerId"`
	StudentID     string          `json:"studentId"`
	CompanyName   string          `json:"companyName,omitempty"`
	Position      string          `json:"position,omitempty"`
	ProposedTimes []time.Time     `json:"proposedTimes"`
	Duration      int             `json:"duration"` // minutes
	Location      string          `json:"location,omitempty"`
	Notes         string          `json:"notes,omitempty"`
	Status        InterviewStatus `json:"status"`

	SelectedTime  *time.Time `json:"selectedTime,omitempty"`
	ConfirmedTime *time.Time `json:"confirmedTime,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmedAt,omitempty"`
	DeclinedAt    *time.Time `json:"declinedAt,omitempty"`

	CreatedAt   *time.Time `json:"createdAt,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

// InterviewMetadata carries the display fields of a proposal.
type InterviewMetadata struct {
	Position    string `json:"position,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Duration    int    `json:"duration,omitempty"`
	Location    string `json:"location,omitempty"`
	Notes       string `json:"notes,omitempty"`
}

// JobRecord is a job posting. ApplicationStatuses is a denormalized copy of
// each application's status, keyed by application id.
type JobRecord struct {
	ID                  string                       `json:"id,omitempty"`
	EmployerID          string                       `json:"employerId"`
	Title               string                       `json:"title"`
	CompanyName         string                       `json:"companyName"`
	Department          string                       `json:"department,omitempty"`
	Description         string                       `json:"description,omitempty"`
	Requirements        string                       `json:"requirements,omitempty"`
	Skills              []string                     `json:"skills,omitempty"`
	Location            string                       `json:"location,omitempty"`
	Type                string                       `json:"employmentType,omitempty"`
	Deadline            *time.Time                   `json:"deadline,omitempty"`
	Status              JobStatus                    `json:"status"`
	Applications        []string                     `json:"applications"`
	ApplicationStatuses map[string]ApplicationStatus `json:"applicationStatuses,omitempty"`
	CreatedAt           *time.Time                   `json:"createdAt,omitempty"`
}

// MirroredStatus returns the job-side copy of an application's status.
func (j *JobRecord) MirroredStatus(applicationID string) (ApplicationStatus, bool) {
	status, ok := j.ApplicationStatuses[applicationID]
	return status, ok
}
