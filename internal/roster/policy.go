// Package roster decides when participants may edit their rosters and
// applies edits against the store.
package roster

import (
	"time"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

// Lock reasons reported to callers.
const (
	ReasonNoWindow  = "no change window is open"
	ReasonExhausted = "change quota for this window is used up"
)

// LockStatus is the outcome of CanEdit.  Window is nil when no window is
// open.  Remaining is nil for unlimited windows and when no window is open.
type LockStatus struct {
	Locked    bool                `json:"locked"`
	Reason    string              `json:"reason,omitempty"`
	Window    *model.ChangeWindow `json:"window,omitempty"`
	Remaining *int                `json:"remaining,omitempty"`
}

// ActiveWindow returns the change window containing now.  Overlapping
// windows resolve to the earliest-starting one.
func ActiveWindow(windows []model.ChangeWindow, now time.Time) (model.ChangeWindow, bool) {
	var (
		best  model.ChangeWindow
		found bool
	)
	for _, w := range windows {
		if !w.Contains(now) {
			continue
		}
		if !found || w.Start.Before(best.Start) {
			best, found = w, true
		}
	}
	return best, found
}

// CanEdit reports whether entry may change its roster at now.
func CanEdit(season model.Season, entry model.Entry, now time.Time) LockStatus {
	w, ok := ActiveWindow(season.Rules.ChangeWindows, now)
	if !ok {
		return LockStatus{Locked: true, Reason: ReasonNoWindow}
	}
	if w.IsUnlimited() {
		return LockStatus{Window: &w}
	}
	remaining := w.AllowedChanges - entry.ChangesUsed[w.Name]
	st := LockStatus{Window: &w, Remaining: &remaining, Locked: remaining <= 0}
	if st.Locked {
		st.Reason = ReasonExhausted
	}
	return st
}

// Validate checks a roster against the season's pool and point cap.  A
// season without a positive MaxPoints has no cap.
func Validate(season model.Season, r model.Roster, pool []model.Entity) error {
	byID := make(map[string]model.Entity, len(pool))
	for _, e := range pool {
		byID[e.ID] = e
	}
	total := 0
	for _, c := range model.Captions {
		id := r.Get(c.Name)
		if id == "" {
			continue
		}
		e, ok := byID[id]
		if !ok {
			return &InvalidRosterError{Reason: "entity " + id + " is not in the season pool"}
		}
		total += e.PointCost
	}
	if season.Rules.MaxPoints > 0 && total > season.Rules.MaxPoints {
		return &InvalidRosterError{Reason: "roster costs more than the season point cap"}
	}
	return nil
}
