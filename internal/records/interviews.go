package records

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/types"
)

// InterviewFilter selects interviews. Empty fields are ignored.
type InterviewFilter struct {
	StudentID     string
	EmployerID    string
	ApplicationID string
	Status        types.InterviewStatus
}

// GetInterview retrieves an interview by id.
func (r *Repository) GetInterview(ctx context.Context, id string) (*types.InterviewRecord, error) {
	var iv types.InterviewRecord
	if err := r.get(ctx, db.CollectionInterviews, id, &iv); err != nil {
		return nil, fmt.Errorf("failed to get interview %s: %w", id, err)
	}
	iv.ID = id
	return &iv, nil
}

// CreateInterview writes a new interview proposal under id.
func (r *Repository) CreateInterview(ctx context.Context, id string, iv *types.InterviewRecord) error {
	if err := r.put(ctx, db.CollectionInterviews, id, iv); err != nil {
		return fmt.Errorf("failed to create interview %s: %w", id, err)
	}
	return nil
}

// ConfirmInterview moves the interview to confirmed at selectedTime.
func (r *Repository) ConfirmInterview(ctx context.Context, id string, selectedTime time.Time) error {
	t := selectedTime.UTC()
	err := r.update(ctx, db.CollectionInterviews, id, map[string]any{
		"status":        types.InterviewConfirmed,
		"selectedTime":  t,
		"confirmedTime": t,
		"confirmedAt":   db.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to confirm interview %s: %w", id, err)
	}
	return nil
}

// DeclineInterview moves the interview to declined.
func (r *Repository) DeclineInterview(ctx context.Context, id string) error {
	err := r.update(ctx, db.CollectionInterviews, id, map[string]any{
		"status":     types.InterviewDeclined,
		"declinedAt": db.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to decline interview %s: %w", id, err)
	}
	return nil
}

// ListInterviews returns matching interviews, newest first.
func (r *Repository) ListInterviews(ctx context.Context, filter InterviewFilter) ([]types.InterviewRecord, error) {
	var where []db.Predicate
	if filter.StudentID != "" {
		where = append(where, db.Eq("studentId", filter.StudentID))
	}
	if filter.EmployerID != "" {
		where = append(where, db.Eq("employerId", filter.EmployerID))
	}
	if filter.ApplicationID != "" {
		where = append(where, db.Eq("applicationId", filter.ApplicationID))
	}
	if filter.Status != "" {
		where = append(where, db.Eq("status", filter.Status))
	}

	ivs, err := query(ctx, r.store, db.CollectionInterviews, db.QueryOptions{
		Where:   where,
		OrderBy: "createdAt",
		Desc:    true,
	}, func(iv *types.InterviewRecord, id string) { iv.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list interviews: %w", err)
	}
	return ivs, nil
}
