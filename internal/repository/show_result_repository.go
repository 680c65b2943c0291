package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// ShowResultRepo is the append-only archive of scored shows.  Rows are
// inserted once and never updated.
type ShowResultRepo struct {
	db *sql.DB
}

// NewShowResultRepo returns a new ShowResultRepo bound to the given database.
func NewShowResultRepo(db *sql.DB) *ShowResultRepo { return &ShowResultRepo{db: db} }

func scanResult(row rowScanner) (model.ShowResult, error) {
	var (
		r       model.ShowResult
		stage   string
		scores  string
		created int64
	)
	if err := row.Scan(&r.SeasonID, &r.ID, &stage, &scores, &created); err != nil {
		return model.ShowResult{}, err
	}
	r.Stage = model.Stage(stage)
	r.CreatedAt = fromNanos(created)
	if err := json.Unmarshal([]byte(scores), &r.Scores); err != nil {
		return model.ShowResult{}, err
	}
	return r, nil
}

// Get retrieves one result.
func (r *ShowResultRepo) Get(ctx context.Context, seasonID, id string) (model.ShowResult, error) {
	const q = `SELECT season_id, id, stage, scores, created_at FROM show_results WHERE season_id = ? AND id = ?`
	res, err := scanResult(r.db.QueryRowContext(ctx, q, seasonID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ShowResult{}, store.ErrNotFound
	}
	return res, err
}

// ListBySeason returns a season's results, oldest first.
func (r *ShowResultRepo) ListBySeason(ctx context.Context, seasonID string) ([]model.ShowResult, error) {
	const q = `SELECT season_id, id, stage, scores, created_at FROM show_results
	           WHERE season_id = ? ORDER BY created_at, id`
	rows, err := r.db.QueryContext(ctx, q, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ShowResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// Create appends a result outside of any transaction.
func (r *ShowResultRepo) Create(ctx context.Context, res model.ShowResult) error {
	return r.insert(ctx, r.db, res)
}

// CreateTx appends a result using the caller's transaction.
func (r *ShowResultRepo) CreateTx(ctx context.Context, tx *sql.Tx, res model.ShowResult) error {
	return r.insert(ctx, tx, res)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *ShowResultRepo) insert(ctx context.Context, ex execer, res model.ShowResult) error {
	scores, err := json.Marshal(res.Scores)
	if err != nil {
		return err
	}
	const q = `INSERT INTO show_results (season_id, id, stage, scores, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err = ex.ExecContext(ctx, q, res.SeasonID, res.ID, string(res.Stage), string(scores), toNanos(res.CreatedAt))
	if isDuplicate(err) {
		return store.ErrResultExists
	}
	return err
}
