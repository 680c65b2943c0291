package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// MemoryStore keeps seasons, entries and results in memory behind a single
// lock, which makes every write trivially atomic.
type MemoryStore struct {
	mu       sync.RWMutex
	seasons  map[string]model.Season
	entities map[string]model.Entity
	entries  map[string]map[string]model.Entry      // season -> user -> entry
	results  map[string]map[string]model.ShowResult // season -> id -> result
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		seasons:  make(map[string]model.Season),
		entities: make(map[string]model.Entity),
		entries:  make(map[string]map[string]model.Entry),
		results:  make(map[string]map[string]model.ShowResult),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) GetSeason(_ context.Context, id string) (model.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	season, ok := s.seasons[id]
	if !ok {
		return model.Season{}, ErrNotFound
	}
	return cloneSeason(season), nil
}

func (s *MemoryStore) ListSeasons(_ context.Context) ([]model.Season, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Season, 0, len(s.seasons))
	for _, season := range s.seasons {
		out = append(out, cloneSeason(season))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateSeason(_ context.Context, season model.Season) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seasons[season.ID]; ok {
		return ErrAlreadyExists
	}
	s.seasons[season.ID] = cloneSeason(season)
	return nil
}

func (s *MemoryStore) GetEntity(_ context.Context, id string) (model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entities[id]
	if !ok {
		return model.Entity{}, ErrNotFound
	}
	return e, nil
}

func (s *MemoryStore) ListEntities(_ context.Context, year int) ([]model.Entity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Entity
	for _, e := range s.entities {
		if e.Year == year {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].HistoricalPlacement != out[j].HistoricalPlacement {
			return out[i].HistoricalPlacement < out[j].HistoricalPlacement
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) CreateEntity(_ context.Context, e model.Entity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entities[e.ID]; ok {
		return ErrAlreadyExists
	}
	s.entities[e.ID] = e
	return nil
}

func (s *MemoryStore) CreateEntry(_ context.Context, e model.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seasons[e.SeasonID]; !ok {
		return ErrNotFound
	}
	byUser := s.entries[e.SeasonID]
	if byUser == nil {
		byUser = make(map[string]model.Entry)
		s.entries[e.SeasonID] = byUser
	}
	if _, ok := byUser[e.UserID]; ok {
		return ErrEntryExists
	}
	for _, other := range byUser {
		if strings.EqualFold(other.DisplayName, e.DisplayName) {
			return ErrDuplicateName
		}
	}
	byUser[e.UserID] = cloneEntry(e)
	return nil
}

func (s *MemoryStore) GetEntry(_ context.Context, seasonID, userID string) (model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[seasonID][userID]
	if !ok {
		return model.Entry{}, ErrNotFound
	}
	return cloneEntry(e), nil
}

func (s *MemoryStore) ListParticipants(_ context.Context, seasonID string) ([]model.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Entry, 0, len(s.entries[seasonID]))
	for _, e := range s.entries[seasonID] {
		out = append(out, cloneEntry(e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *MemoryStore) ApplyRosterChange(_ context.Context, c RosterChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[c.SeasonID][c.UserID]
	if !ok {
		return ErrNotFound
	}
	if e.Roster != c.ExpectedRoster {
		return ErrChangeConflict
	}
	e = cloneEntry(e)
	if c.Counted {
		if e.ChangesUsed[c.Window] != c.ExpectedUsed {
			return ErrChangeConflict
		}
		e.ChangesUsed[c.Window] = c.ExpectedUsed + 1
	}
	e.Roster = e.Roster.With(c.Caption, c.EntityID)
	s.entries[c.SeasonID][c.UserID] = e
	return nil
}

func (s *MemoryStore) GetShowResult(_ context.Context, seasonID, id string) (model.ShowResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.results[seasonID][id]
	if !ok {
		return model.ShowResult{}, ErrNotFound
	}
	return cloneResult(r), nil
}

func (s *MemoryStore) ListShowResults(_ context.Context, seasonID string) ([]model.ShowResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ShowResult, 0, len(s.results[seasonID]))
	for _, r := range s.results[seasonID] {
		out = append(out, cloneResult(r))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *MemoryStore) PutShowResult(_ context.Context, r model.ShowResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putResultLocked(r)
}

func (s *MemoryStore) putResultLocked(r model.ShowResult) error {
	byID := s.results[r.SeasonID]
	if byID == nil {
		byID = make(map[string]model.ShowResult)
		s.results[r.SeasonID] = byID
	}
	if _, ok := byID[r.ID]; ok {
		return ErrResultExists
	}
	byID[r.ID] = cloneResult(r)
	return nil
}

func (s *MemoryStore) UpdateSeasonStage(_ context.Context, seasonID string, from, to model.Stage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[seasonID]
	if !ok {
		return ErrNotFound
	}
	if season.ChampionshipStage != from {
		return ErrStageConflict
	}
	season.ChampionshipStage = to
	s.seasons[seasonID] = season
	return nil
}

func (s *MemoryStore) CommitShowResult(_ context.Context, c StageCommit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[c.SeasonID]
	if !ok {
		return ErrNotFound
	}
	if season.ChampionshipStage != c.From {
		return ErrStageConflict
	}
	if _, ok := s.results[c.SeasonID][c.Result.ID]; ok {
		return ErrResultExists
	}
	if err := s.putResultLocked(c.Result); err != nil {
		return err
	}
	season.ChampionshipStage = c.To
	if c.Status != "" {
		season.Status = c.Status
	}
	s.seasons[c.SeasonID] = season
	return nil
}

func cloneSeason(s model.Season) model.Season {
	if s.Rules.ChangeWindows != nil {
		s.Rules.ChangeWindows = append([]model.ChangeWindow(nil), s.Rules.ChangeWindows...)
	}
	return s
}

func cloneEntry(e model.Entry) model.Entry {
	used := make(map[string]int, len(e.ChangesUsed))
	for k, v := range e.ChangesUsed {
		used[k] = v
	}
	e.ChangesUsed = used
	return e
}

func cloneResult(r model.ShowResult) model.ShowResult {
	scores := make(map[string]model.Score, len(r.Scores))
	for k, v := range r.Scores {
		scores[k] = v
	}
	r.Scores = scores
	return r
}
