package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/matchup"
	"github.com/iliyamo/fantasy-corps/internal/model"
	"github.com/iliyamo/fantasy-corps/internal/season"
)

// PublicHandler serves read-only season data without authentication.
type PublicHandler struct {
	Seasons  *season.Service
	Matchups *matchup.Service
}

func NewPublicHandler(s *season.Service, m *matchup.Service) *PublicHandler {
	if s == nil || m == nil {
		panic("nil service passed to NewPublicHandler")
	}
	return &PublicHandler{Seasons: s, Matchups: m}
}

// ResultSummary is a list item of GET /v1/seasons/:id/results.
type ResultSummary struct {
	ID           string      `json:"id"`
	Stage        model.Stage `json:"stage"`
	Participants int         `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
}

// ResultDetail is the body of GET /v1/seasons/:id/results/:resultId.
type ResultDetail struct {
	ID        string           `json:"id"`
	SeasonID  string           `json:"season_id"`
	Stage     model.Stage      `json:"stage"`
	CreatedAt time.Time        `json:"created_at"`
	Standings []season.Placing `json:"standings"`
}

// GetResults lists a season's show results oldest first.
func (h *PublicHandler) GetResults(c echo.Context) error {
	results, err := h.Seasons.Results(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]ResultSummary, 0, len(results))
	for _, r := range results {
		out = append(out, ResultSummary{ID: r.ID, Stage: r.Stage, Participants: len(r.Scores), CreatedAt: r.CreatedAt})
	}
	return c.JSON(http.StatusOK, out)
}

// GetResult returns one result with ranked standings.  Results never
// change once written, which makes this route safe to cache.
func (h *PublicHandler) GetResult(c echo.Context) error {
	r, err := h.Seasons.Result(c.Request().Context(), c.Param("id"), c.Param("resultId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, ResultDetail{
		ID: r.ID, SeasonID: r.SeasonID, Stage: r.Stage, CreatedAt: r.CreatedAt,
		Standings: season.Standings(r),
	})
}

// GetMatchups handles GET /v1/seasons/:id/matchups?week=N&class=C.  week
// defaults to 1; class defaults to everyone.
func (h *PublicHandler) GetMatchups(c echo.Context) error {
	week := 1
	if s := strings.TrimSpace(c.QueryParam("week")); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return badRequest(c, "invalid week")
		}
		week = n
	}
	class := strings.ToLower(strings.TrimSpace(c.QueryParam("class")))
	w, err := h.Matchups.Week(c.Request().Context(), c.Param("id"), week, class)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, w)
}
