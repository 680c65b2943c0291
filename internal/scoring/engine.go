// Package scoring turns rosters into show scores and SoundSport ratings.
// Everything here is a pure function of its inputs apart from the injected
// RNG.
package scoring

import (
	"context"
	"math"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// PerturbationFactor bounds the random bonus on a caption to
// weight * PerturbationFactor.
const PerturbationFactor = 0.1

// Engine scores shows.  The zero value is not usable; construct with
// NewEngine.
type Engine struct {
	rng     RNG
	workers int
}

// NewEngine returns an engine drawing perturbations from rng.  workers
// bounds the number of participants scored concurrently; values < 1 mean
// no limit.
func NewEngine(rng RNG, workers int) *Engine {
	if rng == nil {
		rng = ZeroRNG{}
	}
	return &Engine{rng: rng, workers: workers}
}

// ScoreShow computes a score for every entry.  pool is the season's ranked
// entity pool; its size is N in the placement formula.  The returned map is
// complete or nil: on error no partial scores are returned.
func (e *Engine) ScoreShow(ctx context.Context, season model.Season, entries []model.Entry, pool []model.Entity) (map[string]model.Score, error) {
	byID := make(map[string]model.Entity, len(pool))
	for _, ent := range pool {
		byID[ent.ID] = ent
	}
	n := len(pool)

	var (
		mu  sync.Mutex
		out = make(map[string]model.Score, len(entries))
	)
	g, ctx := errgroup.WithContext(ctx)
	if e.workers > 0 {
		g.SetLimit(e.workers)
	}
	for _, entry := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			total := e.scoreRoster(entry.Roster, byID, n)
			mu.Lock()
			out[entry.UserID] = model.Score{Total: total, Status: entry.Status}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) scoreRoster(r model.Roster, pool map[string]model.Entity, n int) float64 {
	if n == 0 {
		return 0
	}
	sums := map[model.Group]float64{}
	for _, c := range model.Captions {
		id := r.Get(c.Name)
		if id == "" {
			continue
		}
		ent, ok := pool[id]
		if !ok {
			continue
		}
		sums[c.Group] += CaptionScore(ent.HistoricalPlacement, n, c.Weight) + e.rng.Float64()*c.Weight*PerturbationFactor
	}
	return Round(Total(sums[model.GroupGE], sums[model.GroupVisual], sums[model.GroupMusic]))
}

// CaptionScore is the deterministic part of a caption score for an entity
// placed at placement out of n.
func CaptionScore(placement, n int, weight float64) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n+1-placement) * weight / float64(n)
}

// Total combines group sums.  GE counts in full; Visual and Music are halved.
func Total(ge, visual, music float64) float64 {
	return ge + visual/2 + music/2
}

// Round rounds to three decimal places.
func Round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
