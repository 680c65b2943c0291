package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// captionColumns maps each caption to its entries column.  Column names
// are only ever taken from this table, never from input.
var captionColumns = map[model.CaptionName]string{
	model.CaptionGE1: "ge1",
	model.CaptionGE2: "ge2",
	model.CaptionVP:  "vp",
	model.CaptionVA:  "va",
	model.CaptionCG:  "cg",
	model.CaptionB:   "brass",
	model.CaptionMA:  "ma",
	model.CaptionP:   "perc",
}

const entryColumns = `season_id, user_id, display_name, status, joined_at, ge1, ge2, vp, va, cg, brass, ma, perc`

// EntryRepo stores participant entries and their per-window change
// counters.
type EntryRepo struct {
	db *sql.DB
}

// NewEntryRepo returns a new EntryRepo bound to the given database.
func NewEntryRepo(db *sql.DB) *EntryRepo { return &EntryRepo{db: db} }

func scanEntry(row rowScanner) (model.Entry, error) {
	var (
		e      model.Entry
		status string
		joined int64
		r      model.Roster
	)
	if err := row.Scan(&e.SeasonID, &e.UserID, &e.DisplayName, &status, &joined,
		&r.GE1, &r.GE2, &r.VP, &r.VA, &r.CG, &r.B, &r.MA, &r.P); err != nil {
		return model.Entry{}, err
	}
	e.Status = model.EntryStatus(status)
	e.JoinedAt = fromNanos(joined)
	e.Roster = r
	e.ChangesUsed = map[string]int{}
	return e, nil
}

// Create inserts a new entry.  It returns store.ErrEntryExists when the
// user already joined and store.ErrDuplicateName when the display name is
// taken in the season (case-insensitively).
func (r *EntryRepo) Create(ctx context.Context, e model.Entry) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM seasons WHERE id = ?`, e.SeasonID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return err
	}
	const q = `INSERT INTO entries (` + entryColumns + `, display_key) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	ro := e.Roster
	_, err = r.db.ExecContext(ctx, q, e.SeasonID, e.UserID, e.DisplayName, string(e.Status), toNanos(e.JoinedAt),
		ro.GE1, ro.GE2, ro.VP, ro.VA, ro.CG, ro.B, ro.MA, ro.P, displayKey(e.DisplayName))
	switch {
	case violates(err, "display_key"):
		return store.ErrDuplicateName
	case isDuplicate(err):
		return store.ErrEntryExists
	}
	return err
}

// Get loads an entry with its change counters.
func (r *EntryRepo) Get(ctx context.Context, seasonID, userID string) (model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries WHERE season_id = ? AND user_id = ?`
	e, err := scanEntry(r.db.QueryRowContext(ctx, q, seasonID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entry{}, store.ErrNotFound
	}
	if err != nil {
		return model.Entry{}, err
	}
	counters, err := r.changeCounters(ctx, seasonID, &userID)
	if err != nil {
		return model.Entry{}, err
	}
	for k, v := range counters[userID] {
		e.ChangesUsed[k] = v
	}
	return e, nil
}

// ListBySeason returns all entries of a season ordered by user id.
func (r *EntryRepo) ListBySeason(ctx context.Context, seasonID string) ([]model.Entry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+entryColumns+` FROM entries WHERE season_id = ? ORDER BY user_id`, seasonID)
	if err != nil {
		return nil, err
	}
	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	counters, err := r.changeCounters(ctx, seasonID, nil)
	if err != nil {
		return nil, err
	}
	for i := range out {
		for k, v := range counters[out[i].UserID] {
			out[i].ChangesUsed[k] = v
		}
	}
	return out, nil
}

func (r *EntryRepo) changeCounters(ctx context.Context, seasonID string, userID *string) (map[string]map[string]int, error) {
	q := `SELECT user_id, window_name, used FROM entry_changes WHERE season_id = ?`
	args := []any{seasonID}
	if userID != nil {
		q += ` AND user_id = ?`
		args = append(args, *userID)
	}
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]map[string]int{}
	for rows.Next() {
		var (
			uid, window string
			used        int
		)
		if err := rows.Scan(&uid, &window, &used); err != nil {
			return nil, err
		}
		if out[uid] == nil {
			out[uid] = map[string]int{}
		}
		out[uid][window] = used
	}
	return out, rows.Err()
}

// ApplyChangeTx writes a roster slot and, for counted windows, moves the
// window counter from ExpectedUsed to ExpectedUsed+1.  The slot write only
// matches a row whose roster still equals ExpectedRoster.  Both statements
// run in tx; the caller commits.
func (r *EntryRepo) ApplyChangeTx(ctx context.Context, tx *sql.Tx, c store.RosterChange) error {
	col, ok := captionColumns[c.Caption]
	if !ok {
		return errors.New("unknown caption " + string(c.Caption))
	}
	if c.Counted {
		if err := r.bumpCounterTx(ctx, tx, c); err != nil {
			return err
		}
	}
	q := `UPDATE entries SET ` + col + ` = ?
	      WHERE season_id = ? AND user_id = ?
	        AND ge1 = ? AND ge2 = ? AND vp = ? AND va = ? AND cg = ? AND brass = ? AND ma = ? AND perc = ?`
	was := c.ExpectedRoster
	res, err := tx.ExecContext(ctx, q, c.EntityID, c.SeasonID, c.UserID,
		was.GE1, was.GE2, was.VP, was.VA, was.CG, was.B, was.MA, was.P)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM entries WHERE season_id = ? AND user_id = ?`, c.SeasonID, c.UserID).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return store.ErrNotFound
	case err != nil:
		return err
	}
	return store.ErrChangeConflict
}

func (r *EntryRepo) bumpCounterTx(ctx context.Context, tx *sql.Tx, c store.RosterChange) error {
	if c.ExpectedUsed == 0 {
		const ins = `INSERT INTO entry_changes (season_id, user_id, window_name, used) VALUES (?, ?, ?, 1)`
		_, err := tx.ExecContext(ctx, ins, c.SeasonID, c.UserID, c.Window)
		if isDuplicate(err) {
			return store.ErrChangeConflict
		}
		return err
	}
	const upd = `UPDATE entry_changes SET used = used + 1
	             WHERE season_id = ? AND user_id = ? AND window_name = ? AND used = ?`
	res, err := tx.ExecContext(ctx, upd, c.SeasonID, c.UserID, c.Window, c.ExpectedUsed)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrChangeConflict
	}
	return nil
}

func displayKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
