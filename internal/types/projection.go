package types

// StatusProjection is the display form of a status: a label, a style class
// for badges and a one-line description.
type StatusProjection struct {
	Label       string `json:"label"`
	Style       string `json:"style"`
	Description string `json:"description"`
}

// unknownProjection is returned for values outside the defined set so that
// dashboards can always render a badge.
var unknownProjection = StatusProjection{
	Label:       "Pending",
	Style:       "bg-gray-100 text-gray-800",
	Description: "Status is not available yet.",
}

// Project maps the status to its display triple. It is defined for every
// value, including unknown ones.
func (s ApplicationStatus) Project() StatusProjection {
	switch s {
	case ApplicationPending:
		return StatusProjection{
			Label:       "Pending Review",
			Style:       "bg-yellow-100 text-yellow-800",
			Description: "Your application has been submitted and is waiting for review.",
		}
	case ApplicationReviewing:
		return StatusProjection{
			Label:       "Under Review",
			Style:       "bg-blue-100 text-blue-800",
			Description: "The employer is reviewing your application.",
		}
	case ApplicationInterviewRequested:
		return StatusProjection{
			Label:       "Interview Requested",
			Style:       "bg-purple-100 text-purple-800",
			Description: "The employer proposed interview times. Pick one to confirm.",
		}
	case ApplicationInterviewConfirmed:
		return StatusProjection{
			Label:       "Interview Confirmed",
			Style:       "bg-indigo-100 text-indigo-800",
			Description: "Your interview time is confirmed.",
		}
	case ApplicationInterviewDeclined:
		return StatusProjection{
			Label:       "Interview Declined",
			Style:       "bg-orange-100 text-orange-800",
			Description: "You declined the interview invitation.",
		}
	case ApplicationAccepted:
		return StatusProjection{
			Label:       "Accepted",
			Style:       "bg-green-100 text-green-800",
			Description: "Congratulations! The employer accepted your application.",
		}
	case ApplicationRejected:
		return StatusProjection{
			Label:       "Not Selected",
			Style:       "bg-red-100 text-red-800",
			Description: "The employer decided not to move forward with your application.",
		}
	default:
		return unknownProjection
	}
}

// ProjectApplicationStatus projects a raw stored status string.
func ProjectApplicationStatus(status string) StatusProjection {
	return ApplicationStatus(status).Project()
}

// Project maps an interview status to its display triple.
func (s InterviewStatus) Project() StatusProjection {
	switch s {
	case InterviewPending:
		return StatusProjection{
			Label:       "Awaiting Response",
			Style:       "bg-yellow-100 text-yellow-800",
			Description: "Waiting for the student to pick a time.",
		}
	case InterviewConfirmed:
		return StatusProjection{
			Label:       "Confirmed",
			Style:       "bg-green-100 text-green-800",
			Description: "The interview time is confirmed.",
		}
	case InterviewDeclined:
		return StatusProjection{
			Label:       "Declined",
			Style:       "bg-red-100 text-red-800",
			Description: "The student declined the interview.",
		}
	default:
		return unknownProjection
	}
}
