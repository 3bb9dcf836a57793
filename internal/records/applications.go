package records

import (
	"context"
	"fmt"
	"time"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/types"
)

// ApplicationFilter selects applications. Empty fields are ignored.
type ApplicationFilter struct {
	UserID     string
	EmployerID string
	JobID      string
	Status     types.ApplicationStatus
	Limit      int
}

// GetApplication retrieves an application by id.
func (r *Repository) GetApplication(ctx context.Context, id string) (*types.ApplicationRecord, error) {
	var app types.ApplicationRecord
	if err := r.get(ctx, db.CollectionApplications, id, &app); err != nil {
		return nil, fmt.Errorf("failed to get application %s: %w", id, err)
	}
	app.ID = id
	return &app, nil
}

// CreateApplication writes a new application under id.
func (r *Repository) CreateApplication(ctx context.Context, id string, app *types.ApplicationRecord) error {
	if err := r.put(ctx, db.CollectionApplications, id, app); err != nil {
		return fmt.Errorf("failed to create application %s: %w", id, err)
	}
	return nil
}

// MarkInterviewRequested links the application to a new interview proposal.
func (r *Repository) MarkInterviewRequested(ctx context.Context, id, interviewID string) error {
	err := r.update(ctx, db.CollectionApplications, id, map[string]any{
		"status":              types.ApplicationInterviewRequested,
		"hasInterviewRequest": true,
		"interviewId":         interviewID,
	})
	if err != nil {
		return fmt.Errorf("failed to mark interview requested on application %s: %w", id, err)
	}
	return nil
}

// ConfirmApplicationInterview records the accepted interview time.
func (r *Repository) ConfirmApplicationInterview(ctx context.Context, id string, confirmedTime time.Time) error {
	err := r.update(ctx, db.CollectionApplications, id, map[string]any{
		"status":                 types.ApplicationInterviewConfirmed,
		"interviewConfirmedAt":   db.ServerTimestamp,
		"confirmedInterviewTime": confirmedTime.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to confirm interview on application %s: %w", id, err)
	}
	return nil
}

// DeclineApplicationInterview records that the student declined.
func (r *Repository) DeclineApplicationInterview(ctx context.Context, id string) error {
	err := r.update(ctx, db.CollectionApplications, id, map[string]any{
		"status":              types.ApplicationInterviewDeclined,
		"interviewDeclinedAt": db.ServerTimestamp,
	})
	if err != nil {
		return fmt.Errorf("failed to decline interview on application %s: %w", id, err)
	}
	return nil
}

// SetApplicationStatus sets the status of an application.
func (r *Repository) SetApplicationStatus(ctx context.Context, id string, status types.ApplicationStatus) error {
	err := r.update(ctx, db.CollectionApplications, id, map[string]any{"status": status})
	if err != nil {
		return fmt.Errorf("failed to set status of application %s: %w", id, err)
	}
	return nil
}

// FindApplication returns the application of userID to jobID, or
// db.ErrNotFound if the user has not applied.
func (r *Repository) FindApplication(ctx context.Context, jobID, userID string) (*types.ApplicationRecord, error) {
	apps, err := r.ListApplications(ctx, ApplicationFilter{JobID: jobID, UserID: userID, Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, fmt.Errorf("application of %s to job %s: %w", userID, jobID, db.ErrNotFound)
	}
	return &apps[0], nil
}

// ListApplications returns matching applications, most recently updated first.
func (r *Repository) ListApplications(ctx context.Context, filter ApplicationFilter) ([]types.ApplicationRecord, error) {
	var where []db.Predicate
	if filter.UserID != "" {
		where = append(where, db.Eq("userId", filter.UserID))
	}
	if filter.EmployerID != "" {
		where = append(where, db.Eq("employerId", filter.EmployerID))
	}
	if filter.JobID != "" {
		where = append(where, db.Eq("jobId", filter.JobID))
	}
	if filter.Status != "" {
		where = append(where, db.Eq("status", filter.Status))
	}

	apps, err := query(ctx, r.store, db.CollectionApplications, db.QueryOptions{
		Where:   where,
		OrderBy: "lastUpdated",
		Desc:    true,
		Limit:   filter.Limit,
	}, func(a *types.ApplicationRecord, id string) { a.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}
