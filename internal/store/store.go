// Package store defines the document-store abstraction the season core
// depends on, together with its sentinel errors.  internal/repository
// provides the SQL implementation; MemoryStore backs tests and local runs.
package store

import (
	"context"
	"errors"

	"github.com/iliyamo/fantasy-corps/internal/model"
)

var (
	// ErrNotFound is returned when the requested season, entry, entity or
	// show result does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStageConflict is returned when a conditional stage update finds the
	// season in a different stage than expected.
	ErrStageConflict = errors.New("championship stage changed concurrently")
	// ErrResultExists is returned when a show result id is already taken.
	ErrResultExists = errors.New("show result already exists")
	// ErrChangeConflict is returned when the change counter or the roster
	// moved between reading an entry and applying a roster change.
	ErrChangeConflict = errors.New("roster changed concurrently")
	// ErrEntryExists is returned when a user joins a season twice.
	ErrEntryExists = errors.New("entry already exists")
	// ErrDuplicateName is returned when a display name is already used in
	// the season.
	ErrDuplicateName = errors.New("display name already taken")
	// ErrAlreadyExists is returned when a season or entity id is reused.
	ErrAlreadyExists = errors.New("already exists")
)

// RosterChange describes a single caption assignment together with the
// change-counter bookkeeping that must be applied with it.
type RosterChange struct {
	SeasonID string
	UserID   string
	Caption  model.CaptionName
	EntityID string
	// Window is the change window the edit is charged to.  When Counted is
	// false the window is unlimited and no counter is touched.
	Window  string
	Counted bool
	// ExpectedUsed is the counter value the caller observed; the write is
	// rejected with ErrChangeConflict if it differs.
	ExpectedUsed int
	// ExpectedRoster is the roster the change was validated against.  The
	// write is rejected with ErrChangeConflict if the stored roster differs,
	// in counted and unlimited windows alike.
	ExpectedRoster model.Roster
}

// StageCommit is the unit written when a show is scored: the stage
// compare-and-swap, the season status and the result row.
type StageCommit struct {
	SeasonID string
	From     model.Stage
	To       model.Stage
	Status   model.SeasonStatus
	Result   model.ShowResult
}

// Store is the persistence surface of the season core.
type Store interface {
	GetSeason(ctx context.Context, id string) (model.Season, error)
	ListSeasons(ctx context.Context) ([]model.Season, error)
	CreateSeason(ctx context.Context, s model.Season) error

	GetEntity(ctx context.Context, id string) (model.Entity, error)
	ListEntities(ctx context.Context, year int) ([]model.Entity, error)
	CreateEntity(ctx context.Context, e model.Entity) error

	CreateEntry(ctx context.Context, e model.Entry) error
	GetEntry(ctx context.Context, seasonID, userID string) (model.Entry, error)
	ListParticipants(ctx context.Context, seasonID string) ([]model.Entry, error)
	// ApplyRosterChange writes the roster slot and increments the window
	// counter in one atomic step.
	ApplyRosterChange(ctx context.Context, c RosterChange) error

	GetShowResult(ctx context.Context, seasonID, id string) (model.ShowResult, error)
	// ListShowResults returns results ordered by creation time.
	ListShowResults(ctx context.Context, seasonID string) ([]model.ShowResult, error)
	// PutShowResult appends a result; existing ids are never overwritten.
	PutShowResult(ctx context.Context, r model.ShowResult) error
	// UpdateSeasonStage moves a season from one stage to the next only if
	// it is currently in from.
	UpdateSeasonStage(ctx context.Context, seasonID string, from, to model.Stage) error
	// CommitShowResult applies a StageCommit atomically.
	CommitShowResult(ctx context.Context, c StageCommit) error
}
