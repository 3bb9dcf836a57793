package workflow

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError reports caller input that was rejected before any write.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// invalidRequest turns the first failed validator rule into a ValidationError.
func invalidRequest(err error) error {
	var fields validator.ValidationErrors
	if !errors.As(err, &fields) || len(fields) == 0 {
		return err
	}
	fe := fields[0]
	field := fe.Namespace()
	if _, rest, ok := strings.Cut(field, "."); ok {
		field = rest
	}
	msg := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must be at least " + fe.Param() + " characters"
		if fe.Kind() == reflect.Slice {
			msg = "needs at least " + fe.Param() + " entry"
		}
	case "max":
		msg = "must be at most " + fe.Param() + " characters"
	case "oneof":
		msg = "must be one of " + fe.Param()
	}
	return &ValidationError{Field: field, Message: msg}
}

// TransitionError reports an action that is not allowed from the current state.
type TransitionError struct {
	Entity string
	ID     string
	From   string
	Action string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s %s %s in state %s", e.Action, e.Entity, e.ID, e.From)
}

// ConflictError reports a request that clashes with existing records.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// ForbiddenError reports an actor acting on a record it does not own.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// PartialCascadeError reports a cascade that stopped after some of its writes
// were applied. The completed writes are not rolled back; Reconcile replays
// the rest.
type PartialCascadeError struct {
	CascadeID string
	Completed []string
	Failed    string
	Err       error
}

func (e *PartialCascadeError) Error() string {
	return fmt.Sprintf("cascade %s stopped at %s after [%s]: %v",
		e.CascadeID, e.Failed, strings.Join(e.Completed, ", "), e.Err)
}

func (e *PartialCascadeError) Unwrap() error {
	return e.Err
}
