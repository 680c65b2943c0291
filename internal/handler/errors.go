package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/matchup"
	"github.com/iliyamo/fantasy-corps/internal/roster"
	"github.com/iliyamo/fantasy-corps/internal/season"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

// Error codes returned in the "code" field of error bodies.
const (
	CodeBadRequest        = "bad_request"
	CodeNotFound          = "not_found"
	CodeStagePrerequisite = "stage_prerequisite"
	CodeInvalidStage      = "invalid_stage"
	CodeStageConflict     = "stage_conflict"
	CodeSeasonBusy        = "season_busy"
	CodeRosterLocked      = "roster_locked"
	CodeInvalidRoster     = "invalid_roster"
	CodeDuplicateName     = "duplicate_name"
	CodeAlreadyJoined     = "already_joined"
	CodeSeasonComplete    = "season_complete"
	CodeRosterConflict    = "roster_conflict"
	CodeInternal          = "internal_error"
)

// writeError maps domain errors onto HTTP responses.  Unknown errors are
// reported as 500 without leaking their text.
func writeError(c echo.Context, err error) error {
	var (
		prereq  *season.StagePrerequisiteError
		stage   *season.InvalidStageError
		locked  *roster.LockedRosterError
		invalid *roster.InvalidRosterError
		dup     *roster.DuplicateNameError
	)
	switch {
	case errors.As(err, &prereq):
		return c.JSON(http.StatusPreconditionFailed, echo.Map{
			"error": err.Error(), "code": CodeStagePrerequisite, "missing": prereq.Missing,
		})
	case errors.As(err, &stage):
		return c.JSON(http.StatusConflict, echo.Map{
			"error": err.Error(), "code": CodeInvalidStage, "stage": stage.Have,
		})
	case errors.Is(err, store.ErrStageConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": CodeStageConflict})
	case errors.Is(err, lock.ErrBusy):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": CodeSeasonBusy})
	case errors.As(err, &locked):
		body := echo.Map{"error": err.Error(), "code": CodeRosterLocked, "reason": locked.Reason}
		if locked.Window != "" {
			body["window"] = locked.Window
		}
		return c.JSON(http.StatusLocked, body)
	case errors.As(err, &invalid):
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"error": err.Error(), "code": CodeInvalidRoster})
	case errors.As(err, &dup):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": CodeDuplicateName})
	case errors.Is(err, store.ErrEntryExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "already joined this season", "code": CodeAlreadyJoined})
	case errors.Is(err, roster.ErrSeasonClosed):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": CodeSeasonComplete})
	case errors.Is(err, store.ErrChangeConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error(), "code": CodeRosterConflict})
	case errors.Is(err, roster.ErrEmptyName), errors.Is(err, matchup.ErrInvalidWeek), errors.Is(err, matchup.ErrUnknownClass):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error(), "code": CodeBadRequest})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found", "code": CodeNotFound})
	}
	c.Logger().Errorf("unhandled error: %v", err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "code": CodeInternal})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "code": CodeBadRequest})
}
