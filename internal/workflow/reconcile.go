package workflow

import (
	"context"
	"time"

	"github.com/jonathan/career-services/internal/types"
)

// ReconcileReport summarizes a reconciliation pass.
type ReconcileReport struct {
	Examined  int      `json:"examined"`
	Completed []string `json:"completed"`
	Failed    []string `json:"failed"`
}

// Reconcile replays the steps of a cascade that did not complete. Completed
// cascades are returned unchanged. Cascades that failed before any write are
// not replayed; the user retries the action instead.
func (s *Service) Reconcile(ctx context.Context, cascadeID string) (*types.CascadeRecord, error) {
	c, err := s.repo.GetCascade(ctx, cascadeID)
	if err != nil {
		return nil, err
	}
	switch c.Status {
	case types.CascadeCompleted:
		return c, nil
	case types.CascadeFailed:
		return c, &TransitionError{Entity: "cascade", ID: cascadeID, From: string(c.Status), Action: "reconcile"}
	}

	steps, err := s.stepsFor(c)
	if err != nil {
		return c, err
	}
	if len(steps) != len(c.Steps) {
		// Logged by an older step layout; replay everything, all steps are idempotent.
		c.Steps = make([]types.CascadeStep, len(steps))
		for i, st := range steps {
			c.Steps[i] = types.CascadeStep{Name: st.name, Status: types.StepPending}
		}
	}

	s.logger.Info("reconciling cascade", "cascade_id", c.ID, "kind", c.Kind, "completed", c.CompletedSteps())
	return c, s.run(ctx, c, steps)
}

// ReconcileAll replays every partial cascade and every running cascade not
// updated within staleAfter.
func (s *Service) ReconcileAll(ctx context.Context, staleAfter time.Duration) (*ReconcileReport, error) {
	partial, err := s.repo.ListCascades(ctx, types.CascadePartial)
	if err != nil {
		return nil, err
	}
	running, err := s.repo.ListCascades(ctx, types.CascadeRunning)
	if err != nil {
		return nil, err
	}

	cutoff := s.now().Add(-staleAfter)
	candidates := partial
	for _, c := range running {
		if c.LastUpdated == nil || c.LastUpdated.Before(cutoff) {
			candidates = append(candidates, c)
		}
	}

	report := &ReconcileReport{Completed: []string{}, Failed: []string{}}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Examined++
		if _, err := s.Reconcile(ctx, c.ID); err != nil {
			s.logger.Warn("cascade still incomplete", "cascade_id", c.ID, "error", err)
			report.Failed = append(report.Failed, c.ID)
			continue
		}
		report.Completed = append(report.Completed, c.ID)
	}
	s.logger.Info("reconciliation finished",
		"examined", report.Examined, "completed", len(report.Completed), "failed", len(report.Failed))
	return report, nil
}
