package model

import (
    "encoding/json"
    "fmt"
    "strings"
    "time"
)

// SeasonType distinguishes seasons following a live competitive year from
// off-season replays of a historical one.
type SeasonType string

const (
    SeasonLive      SeasonType = "live"
    SeasonOffSeason SeasonType = "offseason"
)

// SeasonStatus is the coarse lifecycle of a season.
type SeasonStatus string

const (
    SeasonPending  SeasonStatus = "pending"
    SeasonActive   SeasonStatus = "active"
    SeasonComplete SeasonStatus = "complete"
)

// Unlimited marks a change window without an edit quota.
const Unlimited = -1

// ChangeWindow is a time-boxed period during which rosters may be edited.
// AllowedChanges is either a non-negative quota or Unlimited.
type ChangeWindow struct {
    Name           string    `json:"name"`
    Start          time.Time `json:"start"`
    End            time.Time `json:"end"`
    AllowedChanges int       `json:"allowed_changes"`
}

// IsUnlimited reports whether the window carries no quota.
func (w ChangeWindow) IsUnlimited() bool { return w.AllowedChanges < 0 }

// Contains reports whether t falls within [Start, End].
func (w ChangeWindow) Contains(t time.Time) bool {
    return !t.Before(w.Start) && !t.After(w.End)
}

// UnmarshalJSON accepts either an integer or the string "unlimited" for
// allowed_changes.
func (w *ChangeWindow) UnmarshalJSON(b []byte) error {
    var raw struct {
        Name           string          `json:"name"`
        Start          time.Time       `json:"start"`
        End            time.Time       `json:"end"`
        AllowedChanges json.RawMessage `json:"allowed_changes"`
    }
    if err := json.Unmarshal(b, &raw); err != nil {
        return err
    }
    w.Name, w.Start, w.End = raw.Name, raw.Start, raw.End
    w.AllowedChanges = 0
    if len(raw.AllowedChanges) == 0 {
        return nil
    }
    var s string
    if err := json.Unmarshal(raw.AllowedChanges, &s); err == nil {
        if strings.EqualFold(s, "unlimited") {
            w.AllowedChanges = Unlimited
            return nil
        }
        return fmt.Errorf("allowed_changes: unknown value %q", s)
    }
    var n int
    if err := json.Unmarshal(raw.AllowedChanges, &n); err != nil {
        return fmt.Errorf("allowed_changes: %w", err)
    }
    if n < 0 {
        n = Unlimited
    }
    w.AllowedChanges = n
    return nil
}

// Rules carry a season's roster constraints.  MaxPoints of zero or less
// means rosters are uncapped.
type Rules struct {
    ChangeWindows []ChangeWindow `json:"change_windows"`
    MaxPoints     int            `json:"max_points"`
}

// Season is the aggregate every lifecycle operation works on.
//
// Fields:
//  ID                – primary key identifier.
//  Name              – display name.
//  Type              – live or offseason.
//  HistoricalYear    – replayed year for offseason seasons.
//  StartDate/EndDate – season bounds (UTC).
//  Status            – pending, active or complete.
//  ChampionshipStage – current stage, see Stage.
//  Rules             – change windows and point cap.
type Season struct {
    ID                string       `json:"id"`
    Name              string       `json:"name"`
    Type              SeasonType   `json:"type"`
    HistoricalYear    int          `json:"historical_year,omitempty"`
    StartDate         time.Time    `json:"start_date"`
    EndDate           time.Time    `json:"end_date"`
    Status            SeasonStatus `json:"status"`
    ChampionshipStage Stage        `json:"championship_stage"`
    Rules             Rules        `json:"rules"`
}

// PoolYear is the competitive year whose corps form the season's ranked pool.
func (s Season) PoolYear() int {
    if s.Type == SeasonOffSeason && s.HistoricalYear > 0 {
        return s.HistoricalYear
    }
    return s.StartDate.Year()
}

// EarlyJoinPeriod is how long after StartDate a join still counts as early.
const EarlyJoinPeriod = 24 * time.Hour

// StatusForJoin returns the participation track for an entry joining at t.
// Only joins within the first day of a still-pending season are competitive.
func (s Season) StatusForJoin(t time.Time) EntryStatus {
    if s.Status == SeasonPending && t.Before(s.StartDate.Add(EarlyJoinPeriod)) {
        return StatusCompetitive
    }
    return StatusSoundSport
}
