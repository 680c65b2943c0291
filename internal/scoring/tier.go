package scoring

import (
	"sort"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// Thresholds are the cut lines derived from a show's competitive scores.
type Thresholds struct {
	Top    float64
	Bottom float64
}

// ComputeThresholds returns the tier cut lines for a set of competitive
// totals.  ok is false when totals is empty.
func ComputeThresholds(totals []float64) (t Thresholds, ok bool) {
	if len(totals) == 0 {
		return Thresholds{}, false
	}
	s := append([]float64(nil), totals...)
	sort.Float64s(s)
	n := len(s)
	return Thresholds{
		Top:    s[(2*n)/3],
		Bottom: s[n/3],
	}, true
}

// Rate places a single total against thresholds.
func (t Thresholds) Rate(total float64) model.Rating {
	switch {
	case total >= t.Top:
		return model.RatingI
	case total >= t.Bottom:
		return model.RatingII
	default:
		return model.RatingIII
	}
}

// Classify rates every SoundSport participant in scores against the
// competitive distribution of the same show.  With no competitive scores
// every SoundSport entry is RatingUnrated.
func Classify(scores map[string]model.Score) map[string]model.Rating {
	var competitive []float64
	for _, s := range scores {
		if s.Status == model.StatusCompetitive {
			competitive = append(competitive, s.Total)
		}
	}
	th, ok := ComputeThresholds(competitive)
	out := make(map[string]model.Rating)
	for uid, s := range scores {
		if s.Status != model.StatusSoundSport {
			continue
		}
		if !ok {
			out[uid] = model.RatingUnrated
			continue
		}
		out[uid] = th.Rate(s.Total)
	}
	return out
}

// Apply writes Classify's ratings into scores.
func Apply(scores map[string]model.Score) {
	for uid, r := range Classify(scores) {
		s := scores[uid]
		s.Rating = r
		scores[uid] = s
	}
}
