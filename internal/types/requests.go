package types

import (
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ProposeInterviewRequest is the employer's interview proposal for an application.
type ProposeInterviewRequest struct {
	ProposedTimes []time.Time `json:"proposedTimes" validate:"required,min=1"`
	Position      string      `json:"position,omitempty" validate:"max=200"`
	CompanyName   string      `json:"companyName,omitempty" validate:"max=200"`
	Duration      int         `json:"duration,omitempty" validate:"omitempty,min=5,max=480"`
	Location      string      `json:"location,omitempty" validate:"max=500"`
	Notes         string      `json:"notes,omitempty" validate:"max=2000"`
}

// Metadata returns the display fields of the proposal.
func (r *ProposeInterviewRequest) Metadata() InterviewMetadata {
	return InterviewMetadata{
		Position:    r.Position,
		CompanyName: r.CompanyName,
		Duration:    r.Duration,
		Location:    r.Location,
		Notes:       r.Notes,
	}
}

// RespondInterviewRequest is the student's answer to a proposal.
type RespondInterviewRequest struct {
	Action       InterviewAction `json:"action" validate:"required,oneof=accept decline"`
	SelectedTime *time.Time      `json:"selectedTime,omitempty"`
}

// SubmitApplicationRequest is a student's application to a job.
type SubmitApplicationRequest struct {
	CoverLetter string `json:"coverLetter" validate:"required,max=10000"`
	CVID        string `json:"cvId" validate:"required"`
	UserName    string `json:"userName,omitempty"`
}

// CreateJobRequest is an employer's new job posting. The deadline must not
// be in the past; that is checked against the service clock.
type CreateJobRequest struct {
	Title        string    `json:"title" validate:"required,min=3,max=200"`
	CompanyName  string    `json:"companyName" validate:"required,max=200"`
	Department   string    `json:"department,omitempty" validate:"max=100"`
	Location     string    `json:"location,omitempty" validate:"max=200"`
	Type         string    `json:"employmentType,omitempty" validate:"omitempty,oneof=full-time part-time internship contract"`
	Description  string    `json:"description" validate:"required,min=50,max=10000"`
	Requirements string    `json:"requirements" validate:"required,min=50,max=10000"`
	Skills       []string  `json:"skills" validate:"required,min=1,dive,required,max=50"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

// Normalize trims the text fields and drops blank skills.
func (r *CreateJobRequest) Normalize() {
	for _, f := range []*string{&r.Title, &r.CompanyName, &r.Department, &r.Location, &r.Description, &r.Requirements} {
		*f = strings.TrimSpace(*f)
	}
	skills := r.Skills[:0]
	for _, skill := range r.Skills {
		if skill = strings.TrimSpace(skill); skill != "" {
			skills = append(skills, skill)
		}
	}
	r.Skills = skills
}

// UpdateApplicationStatusRequest is an employer review decision.
type UpdateApplicationStatusRequest struct {
	Status ApplicationStatus `json:"status" validate:"required,oneof=reviewing accepted rejected"`
}

// Validate validates the ProposeInterviewRequest using the validator.
func (r *ProposeInterviewRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the RespondInterviewRequest using the validator.
func (r *RespondInterviewRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the SubmitApplicationRequest using the validator.
func (r *SubmitApplicationRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the CreateJobRequest using the validator.
func (r *CreateJobRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdateApplicationStatusRequest using the validator.
func (r *UpdateApplicationStatusRequest) Validate() error {
	return validate.Struct(r)
}
