// Package schedule runs regular-season shows on a cron schedule.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/logging"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/season"
)

// SeasonLister lists every season.
type SeasonLister interface {
	ListSeasons(ctx context.Context) ([]model.Season, error)
}

// ShowRunner scores a regular show.
type ShowRunner interface {
	RunRegularShow(ctx context.Context, seasonID string) (season.Outcome, error)
}

// Config controls the scheduler.
type Config struct {
	// Spec is a standard five-field cron expression or descriptor such
	// as "@daily".  Empty disables scheduling.
	Spec     string
	Location *time.Location
	// Timeout bounds one tick across all seasons.
	Timeout time.Duration
}

// Scheduler triggers RunRegularShow for every season whose regular stage
// is in progress.
type Scheduler struct {
	cfg     Config
	seasons SeasonLister
	runner  ShowRunner
	log     zerolog.Logger
	now     func() time.Time

	mu sync.Mutex
	c  *cron.Cron
}

// New returns a stopped Scheduler.
func New(cfg Config, seasons SeasonLister, runner ShowRunner, log zerolog.Logger) *Scheduler {
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	return &Scheduler{
		cfg:     cfg,
		seasons: seasons,
		runner:  runner,
		log:     logging.Component(log, "schedule"),
		now:     time.Now,
	}
}

// Start registers the tick and starts the cron loop.  ctx is the parent of
// every tick's context.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.Spec == "" || s.c != nil {
		return nil
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(s.cfg.Location))
	if _, err := c.AddFunc(s.cfg.Spec, func() {
		tctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		s.RunDue(tctx)
	}); err != nil {
		return fmt.Errorf("schedule %q: %w", s.cfg.Spec, err)
	}
	c.Start()
	s.c = c
	s.log.Info().Str("spec", s.cfg.Spec).Str("tz", s.cfg.Location.String()).Msg("show scheduler started")
	return nil
}

// Stop halts the cron loop and waits for a running tick to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c == nil {
		return
	}
	<-s.c.Stop().Done()
	s.c = nil
	s.log.Info().Msg("show scheduler stopped")
}

// Due reports whether season should get a regular show at now.
func Due(s model.Season, now time.Time) bool {
	if s.ChampionshipStage != model.StageRegular || s.Status == model.SeasonComplete {
		return false
	}
	if now.Before(s.StartDate) {
		return false
	}
	return s.EndDate.IsZero() || !now.After(s.EndDate)
}

// RunDue runs one regular show for each due season and returns how many
// were scored.  Failures are logged and do not stop the tick.
func (s *Scheduler) RunDue(ctx context.Context) int {
	list, err := s.seasons.ListSeasons(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("list seasons failed")
		return 0
	}
	now := s.now()
	ran := 0
	for _, ss := range list {
		if !Due(ss, now) {
			continue
		}
		out, err := s.runner.RunRegularShow(ctx, ss.ID)
		var ie *season.InvalidStageError
		switch {
		case err == nil:
			ran++
			s.log.Info().Str(logging.FieldSeason, ss.ID).Str(logging.FieldResult, out.ResultID).Msg("scheduled show scored")
		case errors.Is(err, lock.ErrBusy), errors.As(err, &ie):
			s.log.Debug().Err(err).Str(logging.FieldSeason, ss.ID).Msg("scheduled show skipped")
		default:
			s.log.Error().Err(err).Str(logging.FieldSeason, ss.ID).Msg("scheduled show failed")
		}
	}
	return ran
}
