package season

import (
	"sort"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// Placing is one ranked line of a show result.
type Placing struct {
	Rank   int               `json:"rank,omitempty"`
	UserID string            `json:"user_id"`
	Total  float64           `json:"total"`
	Status model.EntryStatus `json:"status"`
	Rating model.Rating      `json:"rating,omitempty"`
}

// Standings orders a result's scores: competitive entries first, ranked by
// total descending with user id as tie-break, then SoundSport entries in
// the same order without a rank.
func Standings(r model.ShowResult) []Placing {
	out := make([]Placing, 0, len(r.Scores))
	for uid, sc := range r.Scores {
		out = append(out, Placing{UserID: uid, Total: sc.Total, Status: sc.Status, Rating: sc.Rating})
	}
	sort.Slice(out, func(i, j int) bool {
		ci, cj := out[i].Status == model.StatusCompetitive, out[j].Status == model.StatusCompetitive
		if ci != cj {
			return ci
		}
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].UserID < out[j].UserID
	})
	rank := 0
	for i := range out {
		if out[i].Status != model.StatusCompetitive {
			break
		}
		rank++
		out[i].Rank = rank
	}
	return out
}

// Advancing returns the user ids of the top n competitive entries of r.
// Fewer are returned when the competitive pool is smaller than n.
func Advancing(r model.ShowResult, n int) []string {
	ids := make([]string, 0, n)
	for _, p := range Standings(r) {
		if p.Status != model.StatusCompetitive || len(ids) == n {
			break
		}
		ids = append(ids, p.UserID)
	}
	return ids
}
