package model

import (
    "fmt"
    "time"
)

// Rating is the tier awarded to SoundSport entries.
type Rating string

const (
    RatingI   Rating = "I"
    RatingII  Rating = "II"
    RatingIII Rating = "III"
    // RatingUnrated is used when a show has no competitive scores to
    // compare against.
    RatingUnrated Rating = "unrated"
)

// Score is one participant's result for a show.
type Score struct {
    Total  float64     `json:"total"`
    Status EntryStatus `json:"status"`
    Rating Rating      `json:"rating,omitempty"`
}

// ShowResult is the immutable record of a scored show or championship stage.
//
// Fields:
//  ID        – "show-<unix nanos>" for regular shows, otherwise the stage name.
//  SeasonID  – owning season.
//  Stage     – stage during which the show was run.
//  Scores    – per-user scores.
//  CreatedAt – when the result was written (UTC).
type ShowResult struct {
    ID        string           `json:"id"`
    SeasonID  string           `json:"season_id"`
    Stage     Stage            `json:"stage"`
    Scores    map[string]Score `json:"scores"`
    CreatedAt time.Time        `json:"created_at"`
}

// RegularShowID builds the id of a regular-season show run at t.
func RegularShowID(t time.Time) string {
    return fmt.Sprintf("show-%d", t.UTC().UnixNano())
}
