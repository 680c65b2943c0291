package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// EntityRepo provides access to the draftable corps catalogue.
type EntityRepo struct {
	db *sql.DB
}

// NewEntityRepo returns a new EntityRepo bound to the provided database.
func NewEntityRepo(db *sql.DB) *EntityRepo { return &EntityRepo{db: db} }

// GetByID retrieves a single entity.
func (r *EntityRepo) GetByID(ctx context.Context, id string) (model.Entity, error) {
	const q = `SELECT id, name, historical_placement, point_cost, comp_year FROM entities WHERE id = ?`
	var e model.Entity
	err := r.db.QueryRowContext(ctx, q, id).Scan(&e.ID, &e.Name, &e.HistoricalPlacement, &e.PointCost, &e.Year)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Entity{}, store.ErrNotFound
	}
	return e, err
}

// ListByYear returns the ranked pool for a competitive year, best
// placement first.
func (r *EntityRepo) ListByYear(ctx context.Context, year int) ([]model.Entity, error) {
	const q = `SELECT id, name, historical_placement, point_cost, comp_year FROM entities
	           WHERE comp_year = ? ORDER BY historical_placement, id`
	rows, err := r.db.QueryContext(ctx, q, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Entity
	for rows.Next() {
		var e model.Entity
		if err := rows.Scan(&e.ID, &e.Name, &e.HistoricalPlacement, &e.PointCost, &e.Year); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Create inserts a new entity.
func (r *EntityRepo) Create(ctx context.Context, e model.Entity) error {
	const q = `INSERT INTO entities (id, name, historical_placement, point_cost, comp_year) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q, e.ID, e.Name, e.HistoricalPlacement, e.PointCost, e.Year)
	if isDuplicate(err) {
		return store.ErrAlreadyExists
	}
	return err
}
