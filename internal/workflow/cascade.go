package workflow

import (
	"context"
	"fmt"

	"github.com/jonathan/career-services/internal/types"
)

// Step names
const (
	stepCreateInterview    = "create_interview"
	stepMarkApplication    = "mark_application"
	stepConfirmInterview   = "confirm_interview"
	stepConfirmApplication = "confirm_application"
	stepDeclineInterview   = "decline_interview"
	stepDeclineApplication = "decline_application"
	stepCreateApplication  = "create_application"
	stepAddToJob           = "add_to_job"
	stepSetStatus          = "set_status"
	stepMirrorJob          = "mirror_job"
)

type cascadeStep struct {
	name string
	run  func(ctx context.Context) error
}

// stepsFor rebuilds the ordered steps of a cascade from its log. Every step
// checks the current document first, so replaying a completed step is a no-op.
func (s *Service) stepsFor(c *types.CascadeRecord) ([]cascadeStep, error) {
	mirror := cascadeStep{stepMirrorJob, func(ctx context.Context) error {
		return s.syncMirror(ctx, c.JobID, c.ApplicationID)
	}}

	switch c.Kind {
	case types.CascadePropose:
		if c.Interview == nil {
			return nil, fmt.Errorf("cascade %s: propose without interview", c.ID)
		}
		return []cascadeStep{
			{stepCreateInterview, func(ctx context.Context) error {
				return s.createInterviewOnce(ctx, c.InterviewID, c.Interview)
			}},
			{stepMarkApplication, func(ctx context.Context) error {
				return s.markApplication(ctx, c.ApplicationID, c.InterviewID)
			}},
			mirror,
		}, nil
	case types.CascadeAccept:
		if c.SelectedTime == nil {
			return nil, fmt.Errorf("cascade %s: accept without selected time", c.ID)
		}
		return []cascadeStep{
			{stepConfirmInterview, func(ctx context.Context) error {
				return s.confirmInterview(ctx, c.InterviewID, *c.SelectedTime)
			}},
			{stepConfirmApplication, func(ctx context.Context) error {
				return s.confirmApplication(ctx, c.ApplicationID, c.InterviewID, *c.SelectedTime)
			}},
			mirror,
		}, nil
	case types.CascadeDecline:
		return []cascadeStep{
			{stepDeclineInterview, func(ctx context.Context) error {
				return s.declineInterview(ctx, c.InterviewID)
			}},
			{stepDeclineApplication, func(ctx context.Context) error {
				return s.declineApplication(ctx, c.ApplicationID, c.InterviewID)
			}},
			mirror,
		}, nil
	case types.CascadeSubmit:
		if c.Application == nil {
			return nil, fmt.Errorf("cascade %s: submit without application", c.ID)
		}
		return []cascadeStep{
			{stepCreateApplication, func(ctx context.Context) error {
				return s.createApplicationOnce(ctx, c.ApplicationID, c.Application)
			}},
			{stepAddToJob, func(ctx context.Context) error {
				return s.repo.AddApplication(ctx, c.JobID, c.ApplicationID)
			}},
			mirror,
		}, nil
	case types.CascadeReview:
		return []cascadeStep{
			{stepSetStatus, func(ctx context.Context) error {
				return s.setStatus(ctx, c.ApplicationID, c.TargetStatus)
			}},
			mirror,
		}, nil
	default:
		return nil, fmt.Errorf("cascade %s: unknown kind %q", c.ID, c.Kind)
	}
}

// start logs a new cascade and runs it. If the log cannot be written nothing
// else is attempted.
func (s *Service) start(ctx context.Context, c *types.CascadeRecord) error {
	c.ID = s.newID()
	steps, err := s.stepsFor(c)
	if err != nil {
		return err
	}
	c.Status = types.CascadeRunning
	c.Steps = make([]types.CascadeStep, len(steps))
	for i, st := range steps {
		c.Steps[i] = types.CascadeStep{Name: st.name, Status: types.StepPending}
	}
	if err := s.repo.CreateCascade(ctx, c); err != nil {
		s.logger.Error("cascade not started", "kind", c.Kind, "application_id", c.ApplicationID, "error", err)
		return err
	}
	return s.run(ctx, c, steps)
}

// run executes the steps that have not completed, in order, stopping at the
// first failure. Once started the writes are not cancelled with ctx.
func (s *Service) run(ctx context.Context, c *types.CascadeRecord, steps []cascadeStep) error {
	ctx = context.WithoutCancel(ctx)
	c.Attempts++
	log := s.logger.With("cascade_id", c.ID, "kind", c.Kind, "attempt", c.Attempts)

	for i, st := range steps {
		if c.Steps[i].Status == types.StepCompleted {
			continue
		}
		if err := st.run(ctx); err != nil {
			c.Steps[i].Status = types.StepFailed
			c.Steps[i].Error = err.Error()
			completed := c.CompletedSteps()
			if len(completed) == 0 {
				c.Status = types.CascadeFailed
			} else {
				c.Status = types.CascadePartial
			}
			s.saveProgress(ctx, c)
			log.Error("cascade step failed", "step", st.name, "status", c.Status, "error", err)

			if c.Status == types.CascadeFailed {
				return err
			}
			return &PartialCascadeError{
				CascadeID: c.ID,
				Completed: completed,
				Failed:    st.name,
				Err:       err,
			}
		}

		now := s.now().UTC()
		c.Steps[i].Status = types.StepCompleted
		c.Steps[i].Error = ""
		c.Steps[i].CompletedAt = &now
		if i < len(steps)-1 {
			s.saveProgress(ctx, c)
		}
		log.Debug("cascade step completed", "step", st.name)
	}

	c.Status = types.CascadeCompleted
	s.saveProgress(ctx, c)
	log.Info("cascade completed", "application_id", c.ApplicationID)
	return nil
}

// saveProgress writes the cascade log. A failed log write does not stop the
// cascade; reconciliation works from whatever was last saved.
func (s *Service) saveProgress(ctx context.Context, c *types.CascadeRecord) {
	if err := s.repo.SaveCascadeProgress(ctx, c); err != nil {
		s.logger.Warn("cascade log not saved", "cascade_id", c.ID, "status", c.Status, "error", err)
	}
}
