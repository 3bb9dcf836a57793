package records

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/career-services/internal/db"
	"github.com/jonathan/career-services/internal/schemas"
	"github.com/jonathan/career-services/internal/types"
)

// JobFilter selects jobs. Empty fields are ignored. Search matches the
// title, description or company name, ignoring case.
type JobFilter struct {
	EmployerID string
	Status     types.JobStatus
	Department string
	Type       string
	Search     string
}

func (f JobFilter) matches(job *types.JobRecord) bool {
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	for _, field := range []string{job.Title, job.Description, job.CompanyName} {
		if strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// CreateJob stores a new job and returns its id.
func (r *Repository) CreateJob(ctx context.Context, job *types.JobRecord) (string, error) {
	if job.Applications == nil {
		job.Applications = []string{}
	}
	if job.ApplicationStatuses == nil {
		job.ApplicationStatuses = map[string]types.ApplicationStatus{}
	}
	doc, err := toDocument(job)
	if err != nil {
		return "", err
	}
	if err := schemas.ValidateDocument(db.CollectionJobs, doc); err != nil {
		return "", err
	}
	doc["createdAt"] = db.ServerTimestamp

	id, err := r.store.Create(ctx, db.CollectionJobs, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create job: %w", err)
	}
	return id, nil
}

// GetJob retrieves a job by id.
func (r *Repository) GetJob(ctx context.Context, id string) (*types.JobRecord, error) {
	var job types.JobRecord
	if err := r.get(ctx, db.CollectionJobs, id, &job); err != nil {
		return nil, fmt.Errorf("failed to get job %s: %w", id, err)
	}
	job.ID = id
	return &job, nil
}

// ListJobs returns matching jobs, newest first.
func (r *Repository) ListJobs(ctx context.Context, filter JobFilter) ([]types.JobRecord, error) {
	var where []db.Predicate
	if filter.EmployerID != "" {
		where = append(where, db.Eq("employerId", filter.EmployerID))
	}
	if filter.Status != "" {
		where = append(where, db.Eq("status", filter.Status))
	}
	if filter.Department != "" {
		where = append(where, db.Eq("department", filter.Department))
	}
	if filter.Type != "" {
		where = append(where, db.Eq("employmentType", filter.Type))
	}

	jobs, err := query(ctx, r.store, db.CollectionJobs, db.QueryOptions{
		Where:   where,
		OrderBy: "createdAt",
		Desc:    true,
	}, func(j *types.JobRecord, id string) { j.ID = id })
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}

	matched := jobs[:0]
	for i := range jobs {
		if filter.matches(&jobs[i]) {
			matched = append(matched, jobs[i])
		}
	}
	return matched, nil
}

// MirrorApplicationStatus sets the job's copy of an application's status.
func (r *Repository) MirrorApplicationStatus(ctx context.Context, jobID, applicationID string, status types.ApplicationStatus) error {
	err := r.store.Update(ctx, db.CollectionJobs, jobID, map[string]any{
		"applicationStatuses." + applicationID: status,
	})
	if err != nil {
		return fmt.Errorf("failed to mirror status of application %s on job %s: %w", applicationID, jobID, err)
	}
	return nil
}

// AddApplication appends the application id to the job. Repeated calls
// leave a single entry.
func (r *Repository) AddApplication(ctx context.Context, jobID, applicationID string) error {
	err := r.store.Update(ctx, db.CollectionJobs, jobID, map[string]any{
		"applications": db.ArrayUnion(applicationID),
	})
	if err != nil {
		return fmt.Errorf("failed to add application %s to job %s: %w", applicationID, jobID, err)
	}
	return nil
}
