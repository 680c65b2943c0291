package matchup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

var (
	// ErrInvalidWeek is returned for week numbers below 1.
	ErrInvalidWeek = errors.New("week must be 1 or greater")
	// ErrUnknownClass is returned for a class other than competitive,
	// soundsport or empty (everyone).
	ErrUnknownClass = errors.New("unknown competition class")
)

const weekLength = 7 * 24 * time.Hour

// Week is a week's schedule, resolved against the latest regular show of
// that week when one exists.
type Week struct {
	SeasonID string    `json:"season_id"`
	Week     int       `json:"week"`
	Class    string    `json:"class,omitempty"`
	ResultID string    `json:"result_id,omitempty"`
	Matchups []Matchup `json:"matchups"`
}

// Service builds weekly schedules from stored participants and results.
type Service struct {
	store store.Store
}

func NewService(st store.Store) *Service { return &Service{store: st} }

// Week pairs the season's participants of class for week.
func (s *Service) Week(ctx context.Context, seasonID string, week int, class string) (Week, error) {
	if week < 1 {
		return Week{}, ErrInvalidWeek
	}
	switch model.EntryStatus(class) {
	case "", model.StatusCompetitive, model.StatusSoundSport:
	default:
		return Week{}, fmt.Errorf("%w: %q", ErrUnknownClass, class)
	}

	season, err := s.store.GetSeason(ctx, seasonID)
	if err != nil {
		return Week{}, err
	}
	entries, err := s.store.ListParticipants(ctx, seasonID)
	if err != nil {
		return Week{}, fmt.Errorf("list participants: %w", err)
	}
	members := make([]string, 0, len(entries))
	for _, e := range entries {
		if class == "" || string(e.Status) == class {
			members = append(members, e.UserID)
		}
	}

	w := Week{SeasonID: seasonID, Week: week, Class: class, Matchups: PairWeek(week, class, members)}
	if w.Matchups == nil {
		w.Matchups = []Matchup{}
	}

	results, err := s.store.ListShowResults(ctx, seasonID)
	if err != nil {
		return Week{}, fmt.Errorf("list results: %w", err)
	}
	from := season.StartDate.Add(time.Duration(week-1) * weekLength)
	to := from.Add(weekLength)
	var latest *model.ShowResult
	for i := range results {
		r := &results[i]
		if r.Stage != model.StageRegular || r.CreatedAt.Before(from) || !r.CreatedAt.Before(to) {
			continue
		}
		if latest == nil || r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	if latest != nil {
		w.ResultID = latest.ID
		w.Matchups = Resolve(w.Matchups, *latest)
	}
	return w, nil
}
