// Package dashboard assembles the student, employer and admin views shown
// after each workflow action. Every listed application carries its status
// projection.
package dashboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/jonathan/career-services/internal/records"
	"github.com/jonathan/career-services/internal/types"
	"golang.org/x/sync/errgroup"
)

// RecentLimit is the number of applications in a recent-activity list.
const RecentLimit = 5

// ApplicationView is an application with its display projection.
type ApplicationView struct {
	types.ApplicationRecord
	Display types.StatusProjection `json:"display"`
}

// InterviewView is an interview with its display projection.
type InterviewView struct {
	types.InterviewRecord
	Display types.StatusProjection `json:"display"`
}

// StudentStats are the counters on the student dashboard.
type StudentStats struct {
	TotalApplications   int `json:"totalApplications"`
	InterviewsScheduled int `json:"interviewsScheduled"`
	Offers              int `json:"offers"`
}

// StudentDashboard is the student's view of their applications and interviews.
type StudentDashboard struct {
	PendingInterviews   []InterviewView   `json:"pendingInterviews"`
	ConfirmedInterviews []InterviewView   `json:"confirmedInterviews"`
	RecentActivity      []ApplicationView `json:"recentActivity"`
	Stats               StudentStats      `json:"stats"`
}

// JobSummary is a job with per-status application counts.
type JobSummary struct {
	types.JobRecord
	ApplicationCount int                             `json:"applicationCount"`
	StatusCounts     map[types.ApplicationStatus]int `json:"statusCounts"`
}

// EmployerStats are the counters on the employer dashboard.
type EmployerStats struct {
	ActiveJobs          int `json:"activeJobs"`
	TotalApplications   int `json:"totalApplications"`
	ScheduledInterviews int `json:"scheduledInterviews"`
}

// EmployerDashboard is the employer's view of their postings.
type EmployerDashboard struct {
	Jobs               []JobSummary      `json:"jobs"`
	RecentApplications []ApplicationView `json:"recentApplications"`
	Stats              EmployerStats     `json:"stats"`
}

// AdminDashboard lists cascades that need attention.
type AdminDashboard struct {
	Partial []types.CascadeRecord `json:"partial"`
	Running []types.CascadeRecord `json:"running"`
	Failed  int                   `json:"failed"`
}

// Loader reads dashboard data from the records repository.
type Loader struct {
	repo *records.Repository
}

// NewLoader creates a Loader.
func NewLoader(repo *records.Repository) *Loader {
	return &Loader{repo: repo}
}

// For returns the dashboard matching the identity's role.
func (l *Loader) For(ctx context.Context, id types.Identity) (any, error) {
	switch id.Role {
	case types.RoleStudent:
		return l.Student(ctx, id.UserID)
	case types.RoleEmployer:
		return l.Employer(ctx, id.UserID)
	case types.RoleAdmin:
		return l.Admin(ctx)
	default:
		return nil, fmt.Errorf("no dashboard for role %q", id.Role)
	}
}

// Student loads the pending interviews, confirmed interviews and
// applications of a student concurrently.
func (l *Loader) Student(ctx context.Context, studentID string) (*StudentDashboard, error) {
	var pending, confirmed []types.InterviewRecord
	var apps []types.ApplicationRecord

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pending, err = l.repo.ListInterviews(gCtx, records.InterviewFilter{StudentID: studentID, Status: types.InterviewPending})
		return err
	})
	g.Go(func() error {
		var err error
		confirmed, err = l.repo.ListInterviews(gCtx, records.InterviewFilter{StudentID: studentID, Status: types.InterviewConfirmed})
		return err
	})
	g.Go(func() error {
		var err error
		apps, err = l.repo.ListApplications(gCtx, records.ApplicationFilter{UserID: studentID})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load student dashboard: %w", err)
	}

	d := &StudentDashboard{
		PendingInterviews:   interviewViews(pending),
		ConfirmedInterviews: interviewViews(confirmed),
		RecentActivity:      applicationViews(apps, RecentLimit),
	}
	d.Stats.TotalApplications = len(apps)
	d.Stats.InterviewsScheduled = len(confirmed)
	for _, app := range apps {
		if app.Status == types.ApplicationAccepted {
			d.Stats.Offers++
		}
	}
	return d, nil
}

// Employer loads the jobs, recent applications and confirmed interviews of
// an employer concurrently.
func (l *Loader) Employer(ctx context.Context, employerID string) (*EmployerDashboard, error) {
	var jobs []types.JobRecord
	var recent []types.ApplicationRecord
	var confirmed []types.InterviewRecord

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		jobs, err = l.repo.ListJobs(gCtx, records.JobFilter{EmployerID: employerID})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = l.repo.ListApplications(gCtx, records.ApplicationFilter{EmployerID: employerID, Limit: RecentLimit})
		return err
	})
	g.Go(func() error {
		var err error
		confirmed, err = l.repo.ListInterviews(gCtx, records.InterviewFilter{EmployerID: employerID, Status: types.InterviewConfirmed})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load employer dashboard: %w", err)
	}

	d := &EmployerDashboard{
		Jobs:               make([]JobSummary, 0, len(jobs)),
		RecentApplications: applicationViews(recent, RecentLimit),
	}
	for _, job := range jobs {
		summary := JobSummary{
			JobRecord:        job,
			ApplicationCount: len(job.Applications),
			StatusCounts:     make(map[types.ApplicationStatus]int),
		}
		for _, status := range job.ApplicationStatuses {
			summary.StatusCounts[status]++
		}
		d.Jobs = append(d.Jobs, summary)

		if job.Status == types.JobActive {
			d.Stats.ActiveJobs++
		}
		d.Stats.TotalApplications += len(job.Applications)
	}
	d.Stats.ScheduledInterviews = len(confirmed)
	return d, nil
}

// Admin loads the cascades that have not completed.
func (l *Loader) Admin(ctx context.Context) (*AdminDashboard, error) {
	d := &AdminDashboard{}
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for _, status := range []types.CascadeStatus{types.CascadePartial, types.CascadeRunning, types.CascadeFailed} {
		g.Go(func() error {
			cascades, err := l.repo.ListCascades(gCtx, status)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch status {
			case types.CascadePartial:
				d.Partial = cascades
			case types.CascadeRunning:
				d.Running = cascades
			case types.CascadeFailed:
				d.Failed = len(cascades)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load admin dashboard: %w", err)
	}
	return d, nil
}

func applicationViews(apps []types.ApplicationRecord, limit int) []ApplicationView {
	if limit > 0 && len(apps) > limit {
		apps = apps[:limit]
	}
	views := make([]ApplicationView, len(apps))
	for i, app := range apps {
		views[i] = ApplicationView{ApplicationRecord: app, Display: app.Status.Project()}
	}
	return views
}

func interviewViews(ivs []types.InterviewRecord) []InterviewView {
	views := make([]InterviewView, len(ivs))
	for i, iv := range ivs {
		views[i] = InterviewView{InterviewRecord: iv, Display: iv.Status.Project()}
	}
	return views
}
