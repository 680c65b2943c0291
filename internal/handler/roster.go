package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/middleware"
	"github.com/iliyamo/fantasy-corps/internal/roster"
)

// ParticipantHandler serves join and roster-edit requests for the
// authenticated user.
type ParticipantHandler struct {
	Roster *roster.Service
}

func NewParticipantHandler(r *roster.Service) *ParticipantHandler {
	if r == nil {
		panic("nil roster service passed to NewParticipantHandler")
	}
	return &ParticipantHandler{Roster: r}
}

func caller(c echo.Context) (string, bool) {
	uid := middleware.UserID(c)
	return uid, uid != middleware.Anonymous
}

// Join handles POST /v1/seasons/:id/join with body {"display_name": "..."}.
// The participation track is fixed at this moment.
func (h *ParticipantHandler) Join(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		DisplayName string `json:"display_name"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	entry, err := h.Roster.Join(c.Request().Context(), c.Param("id"), uid, body.DisplayName)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// LockStatus handles GET /v1/seasons/:id/roster/lock.
func (h *ParticipantHandler) LockStatus(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	st, err := h.Roster.Status(c.Request().Context(), c.Param("id"), uid)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// UpdateCaption handles PUT /v1/seasons/:id/roster/:caption with body
// {"entity_id": "..."}.  An empty entity_id clears the caption.
func (h *ParticipantHandler) UpdateCaption(c echo.Context) error {
	uid, ok := caller(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		EntityID string `json:"entity_id"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	caption := strings.ToUpper(strings.TrimSpace(c.Param("caption")))
	entry, err := h.Roster.ApplyChange(c.Request().Context(), c.Param("id"), uid, caption, strings.TrimSpace(body.EntityID))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}
