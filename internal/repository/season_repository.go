package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// SeasonRepo manages persistence for seasons.
type SeasonRepo struct {
	db *sql.DB
}

// NewSeasonRepo constructs a SeasonRepo with the given DB handle.
func NewSeasonRepo(db *sql.DB) *SeasonRepo { return &SeasonRepo{db: db} }

const seasonColumns = `id, name, season_type, historical_year, start_date, end_date, status, championship_stage, rules`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSeason(row rowScanner) (model.Season, error) {
	var (
		s          model.Season
		typ        string
		status     string
		stage      string
		start, end int64
		rules      string
	)
	if err := row.Scan(&s.ID, &s.Name, &typ, &s.HistoricalYear, &start, &end, &status, &stage, &rules); err != nil {
		return model.Season{}, err
	}
	st, err := model.ParseStage(stage)
	if err != nil {
		return model.Season{}, err
	}
	s.Type = model.SeasonType(typ)
	s.Status = model.SeasonStatus(status)
	s.ChampionshipStage = st
	s.StartDate = fromNanos(start)
	s.EndDate = fromNanos(end)
	if err := json.Unmarshal([]byte(rules), &s.Rules); err != nil {
		return model.Season{}, err
	}
	return s, nil
}

// GetByID retrieves a season.  It returns store.ErrNotFound if there is no
// matching row.
func (r *SeasonRepo) GetByID(ctx context.Context, id string) (model.Season, error) {
	q := `SELECT ` + seasonColumns + ` FROM seasons WHERE id = ?`
	s, err := scanSeason(r.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Season{}, store.ErrNotFound
	}
	return s, err
}

// List returns all seasons ordered by id.
func (r *SeasonRepo) List(ctx context.Context) ([]model.Season, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seasonColumns+` FROM seasons ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Season
	for rows.Next() {
		s, err := scanSeason(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Create inserts a new season.
func (r *SeasonRepo) Create(ctx context.Context, s model.Season) error {
	rules, err := json.Marshal(s.Rules)
	if err != nil {
		return err
	}
	const q = `INSERT INTO seasons (` + seasonColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, q, s.ID, s.Name, string(s.Type), s.HistoricalYear,
		toNanos(s.StartDate), toNanos(s.EndDate), string(s.Status), string(s.ChampionshipStage), string(rules))
	if isDuplicate(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// UpdateStageTx moves a season from one stage to another inside tx.  When
// status is non-empty it is written as well.  It returns
// store.ErrStageConflict when the season is not in from, which is how
// concurrent stage runs lose.
func (r *SeasonRepo) UpdateStageTx(ctx context.Context, tx *sql.Tx, id string, from, to model.Stage, status model.SeasonStatus) error {
	var (
		res sql.Result
		err error
	)
	if status == "" {
		const q = `UPDATE seasons SET championship_stage = ? WHERE id = ? AND championship_stage = ?`
		res, err = tx.ExecContext(ctx, q, string(to), id, string(from))
	} else {
		const q = `UPDATE seasons SET championship_stage = ?, status = ? WHERE id = ? AND championship_stage = ?`
		res, err = tx.ExecContext(ctx, q, string(to), string(status), id, string(from))
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM seasons WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		if err != nil {
			return err
		}
		return store.ErrStageConflict
	}
	return nil
}

func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}
