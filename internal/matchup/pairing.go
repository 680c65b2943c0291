// Package matchup pairs a season's participants into weekly head-to-head
// matchups and resolves them against regular show results.
package matchup

import (
	"hash/fnv"
	"sort"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// Bye fills the empty seat when a class has an odd member count.
const Bye = "BYE"

// Matchup is one weekly head-to-head pairing.  Scores and Winner are
// zero until the matchup is resolved; an empty Winner after resolution
// means a tie.
type Matchup struct {
	Week   int        `json:"week"`
	Class  string     `json:"class,omitempty"`
	Pair   [2]string  `json:"pair"`
	Scores [2]float64 `json:"scores"`
	Winner string     `json:"winner,omitempty"`
}

// PairWeek returns the round-robin pairing for week (1-indexed) within a
// class.  Members are ordered by a hash keyed on class, so the schedule is
// stable for a given member set regardless of input order, and a full
// cycle of weeks pairs every two members exactly once.
func PairWeek(week int, class string, members []string) []Matchup {
	seats := seatOrder(class, members)
	if len(seats) == 0 {
		return nil
	}
	if len(seats)%2 == 1 {
		seats = append(seats, Bye)
	}
	n := len(seats)
	if week < 1 {
		week = 1
	}
	round := (week - 1) % (n - 1)

	// Circle method: seat 0 stays put, the rest rotate by round.
	rotated := make([]string, n)
	rotated[0] = seats[0]
	for i := 1; i < n; i++ {
		rotated[i] = seats[1+(i-1+round)%(n-1)]
	}

	out := make([]Matchup, 0, n/2)
	for i := 0; i < n/2; i++ {
		a, b := rotated[i], rotated[n-1-i]
		if a == Bye {
			a, b = b, a
		}
		out = append(out, Matchup{Week: week, Class: class, Pair: [2]string{a, b}})
	}
	return out
}

func seatOrder(class string, members []string) []string {
	seen := make(map[string]struct{}, len(members))
	type seat struct {
		id  string
		key uint64
	}
	seats := make([]seat, 0, len(members))
	for _, m := range members {
		if m == "" || m == Bye {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		h := fnv.New64a()
		_, _ = h.Write([]byte(class + ":" + m))
		seats = append(seats, seat{id: m, key: h.Sum64()})
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].key != seats[j].key {
			return seats[i].key < seats[j].key
		}
		return seats[i].id < seats[j].id
	})
	ids := make([]string, len(seats))
	for i, s := range seats {
		ids[i] = s.id
	}
	return ids
}

// Resolve fills scores and winners from a show result.  A member missing
// from the result, and the bye seat, score zero.
func Resolve(ms []Matchup, r model.ShowResult) []Matchup {
	out := make([]Matchup, len(ms))
	for i, m := range ms {
		for side, id := range m.Pair {
			m.Scores[side] = r.Scores[id].Total
		}
		switch {
		case m.Scores[0] > m.Scores[1]:
			m.Winner = m.Pair[0]
		case m.Scores[1] > m.Scores[0]:
			m.Winner = m.Pair[1]
		default:
			m.Winner = ""
		}
		out[i] = m
	}
	return out
}
