package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// SQLStore implements store.Store by composing the table repositories and
// running multi-table writes in a single transaction.
type SQLStore struct {
	db       *sql.DB
	Seasons  *SeasonRepo
	Entities *EntityRepo
	Entries  *EntryRepo
	Results  *ShowResultRepo
}

var _ store.Store = (*SQLStore)(nil)

// NewSQLStore wires the repositories around db.
func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{
		db:       db,
		Seasons:  NewSeasonRepo(db),
		Entities: NewEntityRepo(db),
		Entries:  NewEntryRepo(db),
		Results:  NewShowResultRepo(db),
	}
}

// DB exposes the underlying sql.DB.
func (s *SQLStore) DB() *sql.DB { return s.db }

func (s *SQLStore) GetSeason(ctx context.Context, id string) (model.Season, error) {
	return s.Seasons.GetByID(ctx, id)
}

func (s *SQLStore) ListSeasons(ctx context.Context) ([]model.Season, error) {
	return s.Seasons.List(ctx)
}

func (s *SQLStore) CreateSeason(ctx context.Context, season model.Season) error {
	return s.Seasons.Create(ctx, season)
}

func (s *SQLStore) GetEntity(ctx context.Context, id string) (model.Entity, error) {
	return s.Entities.GetByID(ctx, id)
}

func (s *SQLStore) ListEntities(ctx context.Context, year int) ([]model.Entity, error) {
	return s.Entities.ListByYear(ctx, year)
}

func (s *SQLStore) CreateEntity(ctx context.Context, e model.Entity) error {
	return s.Entities.Create(ctx, e)
}

func (s *SQLStore) CreateEntry(ctx context.Context, e model.Entry) error {
	return s.Entries.Create(ctx, e)
}

func (s *SQLStore) GetEntry(ctx context.Context, seasonID, userID string) (model.Entry, error) {
	return s.Entries.Get(ctx, seasonID, userID)
}

func (s *SQLStore) ListParticipants(ctx context.Context, seasonID string) ([]model.Entry, error) {
	return s.Entries.ListBySeason(ctx, seasonID)
}

func (s *SQLStore) GetShowResult(ctx context.Context, seasonID, id string) (model.ShowResult, error) {
	return s.Results.Get(ctx, seasonID, id)
}

func (s *SQLStore) ListShowResults(ctx context.Context, seasonID string) ([]model.ShowResult, error) {
	return s.Results.ListBySeason(ctx, seasonID)
}

func (s *SQLStore) PutShowResult(ctx context.Context, r model.ShowResult) error {
	return s.Results.Create(ctx, r)
}

// ApplyRosterChange runs the counter bump and the roster write in one
// transaction.
func (s *SQLStore) ApplyRosterChange(ctx context.Context, c store.RosterChange) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.Entries.ApplyChangeTx(ctx, tx, c)
	})
}

// UpdateSeasonStage performs the stage compare-and-swap on its own.
func (s *SQLStore) UpdateSeasonStage(ctx context.Context, seasonID string, from, to model.Stage) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return s.Seasons.UpdateStageTx(ctx, tx, seasonID, from, to, "")
	})
}

// CommitShowResult moves the stage and appends the result atomically.  If
// either step fails nothing is written.
func (s *SQLStore) CommitShowResult(ctx context.Context, c store.StageCommit) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.Seasons.UpdateStageTx(ctx, tx, c.SeasonID, c.From, c.To, c.Status); err != nil {
			return err
		}
		return s.Results.CreateTx(ctx, tx, c.Result)
	})
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
