package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/lock"
	"github.com/iliyamo/fantasy-corps/internal/matchup"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/roster"
	"github.com/iliyamo/fantasy-corps/internal/season"
	"github.com/iliyamo/fantasy-corps/internal/store"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{&season.StagePrerequisiteError{Stage: model.StageFinals, Missing: "semifinals"}, http.StatusPreconditionFailed, CodeStagePrerequisite},
		{&season.InvalidStageError{Op: "run-prelims", Want: model.StagePrelims, Have: model.StageComplete}, http.StatusConflict, CodeInvalidStage},
		{fmt.Errorf("commit: %w", store.ErrStageConflict), http.StatusConflict, CodeStageConflict},
		{lock.ErrBusy, http.StatusConflict, CodeSeasonBusy},
		{&roster.LockedRosterError{Reason: roster.ReasonNoWindow}, http.StatusLocked, CodeRosterLocked},
		{&roster.InvalidRosterError{Reason: "over cap"}, http.StatusUnprocessableEntity, CodeInvalidRoster},
		{&roster.DuplicateNameError{Name: "x"}, http.StatusConflict, CodeDuplicateName},
		{fmt.Errorf("create entry: %w", store.ErrEntryExists), http.StatusConflict, CodeAlreadyJoined},
		{roster.ErrSeasonClosed, http.StatusConflict, CodeSeasonComplete},
		{store.ErrChangeConflict, http.StatusConflict, CodeRosterConflict},
		{matchup.ErrInvalidWeek, http.StatusBadRequest, CodeBadRequest},
		{fmt.Errorf("load season: %w", store.ErrNotFound), http.StatusNotFound, CodeNotFound},
		{errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}
	e := echo.New()
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
		if err := writeError(c, tc.err); err != nil {
			t.Fatalf("writeError(%v): %v", tc.err, err)
		}
		var body map[string]any
		_ = json.Unmarshal(rec.Body.Bytes(), &body)
		if rec.Code != tc.status || body["code"] != tc.code {
			t.Errorf("%v: got %d %v, want %d %s", tc.err, rec.Code, body["code"], tc.status, tc.code)
		}
	}
}
