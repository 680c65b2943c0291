// Package queue defines message payloads exchanged over the message broker.
package queue

// ShowScoredQueue is the durable queue ShowScoredEvent is published to.
const ShowScoredQueue = "season.show_scored"

// Standing is one line of a published leaderboard.
type Standing struct {
	UserID string  `json:"user_id"`
	Total  float64 `json:"total"`
}

// ShowScoredEvent is published after a show result has been committed.  It
// carries enough for downstream consumers (notifications, standings
// rendering) to act without querying the primary database.
type ShowScoredEvent struct {
	SeasonID     string     `json:"season_id"`
	ResultID     string     `json:"result_id"`
	Stage        string     `json:"stage"`
	NextStage    string     `json:"next_stage"`
	SeasonStatus string     `json:"season_status"`
	Participants int        `json:"participants"`
	Leaders      []Standing `json:"leaders"`
	ScoredAt     string     `json:"scored_at"`
}
