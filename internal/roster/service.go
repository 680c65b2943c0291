package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/fantasy-corps/internal/logging"
	"github.com/iliyamo/fantasy-corps/internal/metrics"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// ErrSeasonClosed is returned when joining a season that has finished.
var ErrSeasonClosed = errors.New("season is complete")

// ErrEmptyName is returned when a join request carries no display name.
var ErrEmptyName = errors.New("display name is required")

// Service applies roster edits and joins against the store.
type Service struct {
	store   store.Store
	now     func() time.Time
	log     zerolog.Logger
	metrics *metrics.Recorder
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = logging.Component(l, "roster") }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option { return func(s *Service) { s.metrics = r } }

// NewService constructs a Service; st must be non-nil.
func NewService(st store.Store, opts ...Option) *Service {
	if st == nil {
		panic("nil store passed to roster.NewService")
	}
	s := &Service{store: st, now: time.Now, log: zerolog.Nop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Join creates the caller's entry.  The participation track is decided
// here, once, from the join time.
func (s *Service) Join(ctx context.Context, seasonID, userID, displayName string) (model.Entry, error) {
	name := strings.TrimSpace(displayName)
	if name == "" {
		return model.Entry{}, ErrEmptyName
	}
	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("load season: %w", err)
	}
	if season.Status == model.SeasonComplete {
		return model.Entry{}, ErrSeasonClosed
	}
	now := s.now().UTC()
	entry := model.Entry{
		UserID:      userID,
		SeasonID:    seasonID,
		DisplayName: name,
		Status:      season.StatusForJoin(now),
		ChangesUsed: map[string]int{},
		JoinedAt:    now,
	}
	if err := s.store.CreateEntry(ctx, entry); err != nil {
		if errors.Is(err, store.ErrDuplicateName) {
			return model.Entry{}, &DuplicateNameError{Name: name}
		}
		return model.Entry{}, fmt.Errorf("create entry: %w", err)
	}
	s.log.Info().Str(logging.FieldSeason, seasonID).Str(logging.FieldUser, userID).
		Str("status", string(entry.Status)).Msg("participant joined")
	return entry, nil
}

// Status reports whether the caller may edit right now.
func (s *Service) Status(ctx context.Context, seasonID, userID string) (LockStatus, error) {
	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return LockStatus{}, fmt.Errorf("load season: %w", err)
	}
	entry, err := s.store.GetEntry(ctx, seasonID, userID)
	if err != nil {
		return LockStatus{}, fmt.Errorf("load entry: %w", err)
	}
	return CanEdit(season, entry, s.now()), nil
}

// ApplyChange assigns entityID to caption on the caller's roster.  An empty
// entityID clears the caption.  The roster write and the window counter
// move together or not at all.
func (s *Service) ApplyChange(ctx context.Context, seasonID, userID, caption, entityID string) (model.Entry, error) {
	entry, err := s.applyChange(ctx, seasonID, userID, caption, entityID)
	outcome := metrics.OutcomeOK
	var (
		locked  *LockedRosterError
		invalid *InvalidRosterError
	)
	switch {
	case errors.As(err, &locked), errors.As(err, &invalid):
		outcome = metrics.OutcomeRejected
	case err != nil:
		outcome = metrics.OutcomeError
	}
	s.metrics.RosterChange(outcome)
	if err != nil {
		s.log.Debug().Err(err).Str(logging.FieldSeason, seasonID).Str(logging.FieldUser, userID).
			Str("caption", caption).Msg("roster change rejected")
	}
	return entry, err
}

func (s *Service) applyChange(ctx context.Context, seasonID, userID, caption, entityID string) (model.Entry, error) {
	c, ok := model.LookupCaption(caption)
	if !ok {
		return model.Entry{}, &InvalidRosterError{Reason: "unknown caption " + caption}
	}
	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("load season: %w", err)
	}
	entry, err := s.store.GetEntry(ctx, seasonID, userID)
	if err != nil {
		return model.Entry{}, fmt.Errorf("load entry: %w", err)
	}

	st := CanEdit(season, entry, s.now())
	if st.Locked {
		le := &LockedRosterError{Reason: st.Reason}
		if st.Window != nil {
			le.Window = st.Window.Name
		}
		return model.Entry{}, le
	}

	next := entry.Roster.With(c.Name, entityID)
	pool, err := s.store.ListEntities(ctx, season.PoolYear())
	if err != nil {
		return model.Entry{}, fmt.Errorf("load pool: %w", err)
	}
	if err := Validate(season, next, pool); err != nil {
		return model.Entry{}, err
	}

	change := store.RosterChange{
		SeasonID:       seasonID,
		UserID:         userID,
		Caption:        c.Name,
		EntityID:       entityID,
		Window:         st.Window.Name,
		Counted:        !st.Window.IsUnlimited(),
		ExpectedUsed:   entry.ChangesUsed[st.Window.Name],
		ExpectedRoster: entry.Roster,
	}
	if err := s.store.ApplyRosterChange(ctx, change); err != nil {
		return model.Entry{}, fmt.Errorf("apply roster change: %w", err)
	}

	entry.Roster = next
	if change.Counted {
		if entry.ChangesUsed == nil {
			entry.ChangesUsed = map[string]int{}
		}
		entry.ChangesUsed[change.Window] = change.ExpectedUsed + 1
	}
	s.log.Info().Str(logging.FieldSeason, seasonID).Str(logging.FieldUser, userID).
		Str("caption", caption).Str("entity_id", entityID).Str("window", change.Window).Msg("roster updated")
	return entry, nil
}
