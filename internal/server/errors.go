package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/schemas"
	"github.com/jonathan/career-services/internal/workflow"
)

// ErrBadRequest indicates a request that could not be decoded
type ErrBadRequest struct {
	Message string
}

func (e *ErrBadRequest) Error() string {
	return e.Message
}

// genericFailure is shown when a workflow action failed partway or for an
// unexpected reason. The caller may retry the action.
const genericFailure = "Something went wrong. Please try again."

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		partial    *workflow.PartialCascadeError
		validation *workflow.ValidationError
		schema     *schemas.ValidationError
		badRequest *ErrBadRequest
		transition *workflow.TransitionError
		conflict   *workflow.ConflictError
		forbidden  *workflow.ForbiddenError
	)

	// A partial cascade wraps its cause; it is reported as a failure
	// regardless of what the cause was.
	switch {
	case errors.As(err, &partial):
		return http.StatusInternalServerError
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.As(err, &schema), errors.As(err, &badRequest):
		return http.StatusBadRequest
	case errors.As(err, &transition), errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// ErrorMessage returns the one-line message shown to the caller for err.
func ErrorMessage(err error) string {
	switch status := HTTPStatus(err); status {
	case http.StatusInternalServerError:
		return genericFailure
	case http.StatusNotFound:
		return "Record not found"
	default:
		return err.Error()
	}
}
