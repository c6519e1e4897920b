package spacedrep

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/revise/internal/mastery"
)

// Options configures a combined Schedule call.
type Options struct {
	Limit       int
	HorizonDays int
}

// Schedule is the combined review view of one student in one course. All
// three parts are derived from the same record snapshot at GeneratedAt.
type Schedule struct {
	GeneratedAt     time.Time             `json:"generated_at"`
	Recommendations []RecommendationItem  `json:"recommendations"`
	Stats           ReviewStats           `json:"stats"`
	Upcoming        []UpcomingReviewEntry `json:"upcoming"`
}

// Scheduler is the entry point for review scheduling. It holds only
// read-only configuration and is safe for concurrent use.
type Scheduler struct {
	params Params
	now    func() time.Time
	log    *zap.Logger
}

// Option customises a Scheduler.
type Option func(*Scheduler)

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLogger sets the logger used to report invariant violations.
func WithLogger(log *zap.Logger) Option {
	return func(s *Scheduler) { s.log = log }
}

// NewScheduler validates params and returns a Scheduler.
func NewScheduler(params Params, opts ...Option) (*Scheduler, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	s := &Scheduler{
		params: params,
		now:    time.Now,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.Named("spacedrep")
	return s, nil
}

// Params returns the scheduler's tuning.
func (s *Scheduler) Params() Params {
	return s.params
}

// Schedule reads the records once and returns recommendations, stats and the
// upcoming calendar computed over that single snapshot.
func (s *Scheduler) Schedule(ctx context.Context, repo mastery.Repository, studentID, courseID string, opts Options) (*Schedule, error) {
	if err := validateLimit(opts.Limit); err != nil {
		return nil, err
	}
	if err := validateHorizon(opts.HorizonDays); err != nil {
		return nil, err
	}

	decayed, now, err := s.load(ctx, repo, studentID, courseID)
	if err != nil {
		return nil, err
	}

	out := &Schedule{GeneratedAt: now}
	var g errgroup.Group
	g.Go(func() error {
		out.Recommendations = rank(decayed, opts.Limit, s.params)
		return nil
	})
	g.Go(func() error {
		stats, err := aggregate(decayed, s.params)
		if err != nil {
			return err
		}
		out.Stats = stats
		return nil
	})
	g.Go(func() error {
		out.Upcoming = bucket(decayed, now, opts.HorizonDays, s.params)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.reportComputation(err, studentID, courseID)
		return nil, err
	}

	s.log.Debug("schedule computed",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.Int("outcomes", len(decayed)),
		zap.Int("recommended", len(out.Recommendations)),
		zap.Int("upcoming_days", len(out.Upcoming)),
	)
	return out, nil
}

// Recommendations returns up to limit review candidates, most urgent first.
func (s *Scheduler) Recommendations(ctx context.Context, repo mastery.Repository, studentID, courseID string, limit int) ([]RecommendationItem, error) {
	if err := validateLimit(limit); err != nil {
		return nil, err
	}
	decayed, _, err := s.load(ctx, repo, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return rank(decayed, limit, s.params), nil
}

// Stats returns the summary counts for a student's course.
func (s *Scheduler) Stats(ctx context.Context, repo mastery.Repository, studentID, courseID string) (ReviewStats, error) {
	decayed, _, err := s.load(ctx, repo, studentID, courseID)
	if err != nil {
		return ReviewStats{}, err
	}
	stats, err := aggregate(decayed, s.params)
	if err != nil {
		s.reportComputation(err, studentID, courseID)
		return ReviewStats{}, err
	}
	return stats, nil
}

// Upcoming returns the sparse per-day calendar of reviews due within the
// next horizonDays.
func (s *Scheduler) Upcoming(ctx context.Context, repo mastery.Repository, studentID, courseID string, horizonDays int) ([]UpcomingReviewEntry, error) {
	if err := validateHorizon(horizonDays); err != nil {
		return nil, err
	}
	decayed, now, err := s.load(ctx, repo, studentID, courseID)
	if err != nil {
		return nil, err
	}
	return bucket(decayed, now, horizonDays, s.params), nil
}

// load performs the single repository read of a call and decays the result.
// now is taken after the read so that records written just before the call
// are never in the future.
func (s *Scheduler) load(ctx context.Context, repo mastery.Repository, studentID, courseID string) ([]DecayedOutcome, time.Time, error) {
	switch {
	case repo == nil:
		return nil, time.Time{}, invalid("repository", nil, "must not be nil")
	case studentID == "":
		return nil, time.Time{}, invalid("student_id", studentID, "must not be empty")
	case courseID == "":
		return nil, time.Time{}, invalid("course_id", courseID, "must not be empty")
	}

	records, err := repo.Records(ctx, studentID, courseID)
	if err != nil {
		var repoErr *RepositoryError
		if errors.As(err, &repoErr) {
			return nil, time.Time{}, err
		}
		return nil, time.Time{}, &RepositoryError{StudentID: studentID, CourseID: courseID, Err: err}
	}

	now := s.now()
	decayed, err := decaySnapshot(records, now, s.params)
	if err != nil {
		s.reportComputation(err, studentID, courseID)
		return nil, time.Time{}, err
	}
	return decayed, now, nil
}

func (s *Scheduler) reportComputation(err error, studentID, courseID string) {
	if !errors.Is(err, ErrComputation) {
		return
	}
	s.log.Error("decay model invariant violated",
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
		zap.Error(err),
	)
}
