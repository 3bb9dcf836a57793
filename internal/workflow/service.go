// Package workflow implements the interview-scheduling and application-status
// workflow. Each user action is a cascade of single-document writes across the
// interview, application and job records, logged so that a cascade stopped
// part way can be reconciled.
package workflow

import (
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-services/internal/records"
)

// defaultInterviewDuration is used when a proposal does not give a duration.
const defaultInterviewDuration = 30

// Service runs workflow actions against a records repository.
type Service struct {
	repo   *records.Repository
	logger *slog.Logger
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for cascade progress.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock sets the clock used for step completion times and staleness.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithIDGenerator sets the generator for new interview, application and
// cascade ids.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

// New creates a workflow service.
func New(repo *records.Repository, opts ...Option) *Service {
	s := &Service{
		repo:   repo,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Repository returns the records repository used by the service.
func (s *Service) Repository() *records.Repository {
	return s.repo
}
