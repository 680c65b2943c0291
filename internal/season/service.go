// Package season drives a season through its championship stages.  Every
// stage operation holds the season's lock, checks the current stage and
// prerequisites, scores, and commits the result and stage change in one
// store call.  A failed run leaves no trace.
package season

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/logging"
	"github.com/iliyamo/fantasy-corps/internal/metrics"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/queue"
	"github.com/iliyamo/fantasy-corps/internal/scoring"
	"github.com/iliyamo/fantasy-corps/internal/service"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// Elimination cutoffs.
const (
	SemifinalsSize = 25
	FinalsSize     = 12
)

// Operation names, as exposed over the admin API.
const (
	OpRunRegularShow     = "run-regular-show"
	OpStartChampionships = "start-championships"
	OpRunPrelims         = "run-prelims"
	OpRunSemifinals      = "run-semifinals"
	OpRunFinals          = "run-finals"
)

const publishTimeout = 5 * time.Second

// Outcome acknowledges a successful stage operation.
type Outcome struct {
	SeasonID string             `json:"season_id"`
	Stage    model.Stage        `json:"stage"`
	Status   model.SeasonStatus `json:"status"`
	ResultID string             `json:"result_id,omitempty"`
}

// Service runs stage operations.
type Service struct {
	store   store.Store
	engine  *scoring.Engine
	locker  lock.Locker
	pub     service.Publisher
	metrics *metrics.Recorder
	log     zerolog.Logger
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLocker replaces the in-process locker, e.g. with lock.Redis.
func WithLocker(l lock.Locker) Option { return func(s *Service) { s.locker = l } }

// WithPublisher sets where ShowScoredEvents go.
func WithPublisher(p service.Publisher) Option { return func(s *Service) { s.pub = p } }

func WithMetrics(r *metrics.Recorder) Option { return func(s *Service) { s.metrics = r } }

func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = logging.Component(l, "season") }
}

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// NewService constructs a Service.  st and eng must be non-nil.
func NewService(st store.Store, eng *scoring.Engine, opts ...Option) *Service {
	if st == nil || eng == nil {
		panic("nil dependency passed to season.NewService")
	}
	s := &Service{
		store:  st,
		engine: eng,
		locker: lock.NewLocal(),
		pub:    service.NopPublisher{},
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// stageRun describes one scored stage operation.
type stageRun struct {
	op   string
	want model.Stage
	to   model.Stage
	// prereq is the result the pool is drawn from; advance is how many
	// competitive entries of it move on.
	prereq  string
	advance int
	id      func(time.Time) string
}

func fixedID(id string) func(time.Time) string {
	return func(time.Time) string { return id }
}

// RunRegularShow scores every participant and appends a new show result.
// The first show moves a pending season to active.  It can be repeated for
// as long as the season is in the regular stage.
func (s *Service) RunRegularShow(ctx context.Context, seasonID string) (Outcome, error) {
	return s.run(ctx, seasonID, stageRun{
		op: OpRunRegularShow, want: model.StageRegular, to: model.StageRegular,
		id: model.RegularShowID,
	})
}

// RunPrelims scores every participant and advances to semifinals.
func (s *Service) RunPrelims(ctx context.Context, seasonID string) (Outcome, error) {
	return s.run(ctx, seasonID, stageRun{
		op: OpRunPrelims, want: model.StagePrelims, to: model.StageSemifinals,
		id: fixedID(string(model.StagePrelims)),
	})
}

// RunSemifinals scores the top 25 competitive entries of prelims.
func (s *Service) RunSemifinals(ctx context.Context, seasonID string) (Outcome, error) {
	return s.run(ctx, seasonID, stageRun{
		op: OpRunSemifinals, want: model.StageSemifinals, to: model.StageFinals,
		prereq: string(model.StagePrelims), advance: SemifinalsSize,
		id: fixedID(string(model.StageSemifinals)),
	})
}

// RunFinals scores the top 12 of semifinals and completes the season.
func (s *Service) RunFinals(ctx context.Context, seasonID string) (Outcome, error) {
	return s.run(ctx, seasonID, stageRun{
		op: OpRunFinals, want: model.StageFinals, to: model.StageComplete,
		prereq: string(model.StageSemifinals), advance: FinalsSize,
		id: fixedID(string(model.StageFinals)),
	})
}

// StartChampionships moves a season from the regular stage to prelims.
// Nothing is scored.
func (s *Service) StartChampionships(ctx context.Context, seasonID string) (Outcome, error) {
	out, err := s.startChampionships(ctx, seasonID)
	s.observe(OpStartChampionships, model.StageRegular, seasonID, err)
	return out, err
}

func (s *Service) startChampionships(ctx context.Context, seasonID string) (Outcome, error) {
	release, err := s.locker.TryLock(ctx, seasonID)
	if err != nil {
		return Outcome{}, err
	}
	defer release()

	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return Outcome{}, fmt.Errorf("load season: %w", err)
	}
	if !model.CanAdvance(season.ChampionshipStage, model.StagePrelims) {
		return Outcome{}, &InvalidStageError{Op: OpStartChampionships, Want: model.StageRegular, Have: season.ChampionshipStage}
	}
	if err := s.store.UpdateSeasonStage(ctx, seasonID, model.StageRegular, model.StagePrelims); err != nil {
		return Outcome{}, fmt.Errorf("advance stage: %w", err)
	}
	return Outcome{SeasonID: seasonID, Stage: model.StagePrelims, Status: season.Status}, nil
}

func (s *Service) run(ctx context.Context, seasonID string, r stageRun) (Outcome, error) {
	start := s.now()
	out, n, err := s.runLocked(ctx, seasonID, r)
	s.observe(r.op, r.want, seasonID, err)
	if err == nil {
		s.metrics.ShowScored(string(r.want), s.now().Sub(start), n)
	}
	return out, err
}

func (s *Service) runLocked(ctx context.Context, seasonID string, r stageRun) (Outcome, int, error) {
	release, err := s.locker.TryLock(ctx, seasonID)
	if err != nil {
		return Outcome{}, 0, err
	}
	defer release()

	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return Outcome{}, 0, fmt.Errorf("load season: %w", err)
	}
	if season.ChampionshipStage != r.want {
		return Outcome{}, 0, &InvalidStageError{Op: r.op, Want: r.want, Have: season.ChampionshipStage}
	}
	if r.want != r.to && !model.CanAdvance(r.want, r.to) {
		return Outcome{}, 0, fmt.Errorf("illegal transition %s -> %s", r.want, r.to)
	}

	entries, err := s.store.ListParticipants(ctx, seasonID)
	if err != nil {
		return Outcome{}, 0, fmt.Errorf("list participants: %w", err)
	}
	if r.prereq != "" {
		prev, err := s.store.GetShowResult(ctx, seasonID, r.prereq)
		if errors.Is(err, store.ErrNotFound) {
			return Outcome{}, 0, &StagePrerequisiteError{Stage: r.want, Missing: r.prereq}
		}
		if err != nil {
			return Outcome{}, 0, fmt.Errorf("load %s result: %w", r.prereq, err)
		}
		entries = filterEntries(entries, Advancing(prev, r.advance))
	}

	pool, err := s.store.ListEntities(ctx, season.PoolYear())
	if err != nil {
		return Outcome{}, 0, fmt.Errorf("load pool: %w", err)
	}
	scores, err := s.engine.ScoreShow(ctx, season, entries, pool)
	if err != nil {
		return Outcome{}, 0, fmt.Errorf("score show: %w", err)
	}
	scoring.Apply(scores)

	now := s.now().UTC()
	result := model.ShowResult{
		ID:        r.id(now),
		SeasonID:  seasonID,
		Stage:     r.want,
		Scores:    scores,
		CreatedAt: now,
	}
	status := season.Status
	switch {
	case r.to == model.StageComplete:
		status = model.SeasonComplete
	case status == model.SeasonPending:
		status = model.SeasonActive
	}
	commit := store.StageCommit{SeasonID: seasonID, From: r.want, To: r.to, Status: status, Result: result}
	if err := s.store.CommitShowResult(ctx, commit); err != nil {
		return Outcome{}, 0, fmt.Errorf("commit %s result: %w", result.ID, err)
	}

	s.log.Info().Str(logging.FieldSeason, seasonID).Str(logging.FieldStage, string(r.want)).
		Str(logging.FieldResult, result.ID).Int("participants", len(scores)).Msg("show scored")
	s.publish(ctx, result, r.to, status)
	return Outcome{SeasonID: seasonID, Stage: r.to, Status: status, ResultID: result.ID}, len(scores), nil
}

func filterEntries(entries []model.Entry, keep []string) []model.Entry {
	set := make(map[string]struct{}, len(keep))
	for _, id := range keep {
		set[id] = struct{}{}
	}
	out := entries[:0:0]
	for _, e := range entries {
		if _, ok := set[e.UserID]; ok {
			out = append(out, e)
		}
	}
	return out
}

func (s *Service) publish(ctx context.Context, r model.ShowResult, next model.Stage, status model.SeasonStatus) {
	ev := queue.ShowScoredEvent{
		SeasonID:     r.SeasonID,
		ResultID:     r.ID,
		Stage:        string(r.Stage),
		NextStage:    string(next),
		SeasonStatus: string(status),
		Participants: len(r.Scores),
		ScoredAt:     r.CreatedAt.Format(time.RFC3339),
	}
	for _, p := range Standings(r) {
		if p.Rank == 0 || p.Rank > 3 {
			break
		}
		ev.Leaders = append(ev.Leaders, queue.Standing{UserID: p.UserID, Total: p.Total})
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.pub.PublishShowScored(pctx, ev); err != nil {
		s.log.Warn().Err(err).Str(logging.FieldSeason, r.SeasonID).Str(logging.FieldResult, r.ID).
			Msg("publish show_scored failed")
	}
}

func (s *Service) observe(op string, stage model.Stage, seasonID string, err error) {
	outcome := metrics.OutcomeOK
	var (
		invalid *InvalidStageError
		prereq  *StagePrerequisiteError
	)
	switch {
	case err == nil:
	case errors.As(err, &invalid), errors.As(err, &prereq),
		errors.Is(err, lock.ErrBusy), errors.Is(err, store.ErrStageConflict):
		outcome = metrics.OutcomeRejected
	default:
		outcome = metrics.OutcomeError
	}
	s.metrics.StageRun(string(stage), outcome)
	if err != nil {
		s.log.Warn().Err(err).Str(logging.FieldSeason, seasonID).Str("op", op).Msg("stage operation failed")
	}
}

// Season returns the season aggregate.
func (s *Service) Season(ctx context.Context, seasonID string) (model.Season, error) {
	return s.store.GetSeason(ctx, seasonID)
}

// Results lists a season's show results in creation order.
func (s *Service) Results(ctx context.Context, seasonID string) ([]model.ShowResult, error) {
	if _, err := s.store.GetSeason(ctx, seasonID); err != nil {
		return nil, err
	}
	return s.store.ListShowResults(ctx, seasonID)
}

// Result returns a single show result.
func (s *Service) Result(ctx context.Context, seasonID, resultID string) (model.ShowResult, error) {
	return s.store.GetShowResult(ctx, seasonID, resultID)
}
