package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/season"
)

// AdminHandler exposes the stage triggers.  Routes must be guarded by
// JWTAuth and RequireRole(ADMIN).
type AdminHandler struct {
	Seasons *season.Service
}

func NewAdminHandler(s *season.Service) *AdminHandler {
	if s == nil {
		panic("nil season service passed to NewAdminHandler")
	}
	return &AdminHandler{Seasons: s}
}

type stageOp func(ctx context.Context, seasonID string) (season.Outcome, error)

func (h *AdminHandler) trigger(c echo.Context, op stageOp) error {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return badRequest(c, "invalid season id")
	}
	out, err := op(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"ok":        true,
		"season_id": out.SeasonID,
		"stage":     out.Stage,
		"status":    out.Status,
		"result_id": out.ResultID,
	})
}

// RunRegularShow handles POST /v1/admin/seasons/:id/run-regular-show.
func (h *AdminHandler) RunRegularShow(c echo.Context) error {
	return h.trigger(c, h.Seasons.RunRegularShow)
}

// StartChampionships handles POST /v1/admin/seasons/:id/start-championships.
func (h *AdminHandler) StartChampionships(c echo.Context) error {
	return h.trigger(c, h.Seasons.StartChampionships)
}

// RunPrelims handles POST /v1/admin/seasons/:id/run-prelims.
func (h *AdminHandler) RunPrelims(c echo.Context) error {
	return h.trigger(c, h.Seasons.RunPrelims)
}

// RunSemifinals handles POST /v1/admin/seasons/:id/run-semifinals.
func (h *AdminHandler) RunSemifinals(c echo.Context) error {
	return h.trigger(c, h.Seasons.RunSemifinals)
}

// RunFinals handles POST /v1/admin/seasons/:id/run-finals.
func (h *AdminHandler) RunFinals(c echo.Context) error {
	return h.trigger(c, h.Seasons.RunFinals)
}
