package model

import "time"

// EntryStatus is the participation track chosen at join time.
type EntryStatus string

const (
    // StatusCompetitive entries are ranked and eligible for elimination rounds.
    StatusCompetitive EntryStatus = "competitive"
    // StatusSoundSport entries are scored the same way but reported as a tier rating.
    StatusSoundSport EntryStatus = "soundsport"
)

// Roster holds one entity id per caption.  An empty id means the caption
// is unassigned.
type Roster struct {
    GE1 string `json:"GE1,omitempty"`
    GE2 string `json:"GE2,omitempty"`
    VP  string `json:"VP,omitempty"`
    VA  string `json:"VA,omitempty"`
    CG  string `json:"CG,omitempty"`
    B   string `json:"B,omitempty"`
    MA  string `json:"MA,omitempty"`
    P   string `json:"P,omitempty"`
}

// Get returns the entity id assigned to caption.
func (r Roster) Get(caption CaptionName) string {
    switch caption {
    case CaptionGE1:
        return r.GE1
    case CaptionGE2:
        return r.GE2
    case CaptionVP:
        return r.VP
    case CaptionVA:
        return r.VA
    case CaptionCG:
        return r.CG
    case CaptionB:
        return r.B
    case CaptionMA:
        return r.MA
    case CaptionP:
        return r.P
    }
    return ""
}

// With returns a copy of the roster with caption set to entityID.  Unknown
// captions leave the roster unchanged.
func (r Roster) With(caption CaptionName, entityID string) Roster {
    switch caption {
    case CaptionGE1:
        r.GE1 = entityID
    case CaptionGE2:
        r.GE2 = entityID
    case CaptionVP:
        r.VP = entityID
    case CaptionVA:
        r.VA = entityID
    case CaptionCG:
        r.CG = entityID
    case CaptionB:
        r.B = entityID
    case CaptionMA:
        r.MA = entityID
    case CaptionP:
        r.P = entityID
    }
    return r
}

// Entry is a participant's roster record for one season.
//
// Fields:
//  UserID      – participant identifier (JWT subject).
//  SeasonID    – season the entry belongs to.
//  DisplayName – unique (per season) public name.
//  Status      – competitive or soundsport, fixed at join.
//  Roster      – caption assignments.
//  ChangesUsed – roster edits consumed per change window name.
//  JoinedAt    – join timestamp (UTC).
type Entry struct {
    UserID      string         `json:"user_id"`
    SeasonID    string         `json:"season_id"`
    DisplayName string         `json:"display_name"`
    Status      EntryStatus    `json:"status"`
    Roster      Roster         `json:"roster"`
    ChangesUsed map[string]int `json:"changes_used"`
    JoinedAt    time.Time      `json:"joined_at"`
}
