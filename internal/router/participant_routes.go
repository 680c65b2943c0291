package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/handler"
	"github.com/iliyamo/fantasy-corps/internal/middleware"
)

// RegisterParticipant registers join and roster endpoints.  Admins may use
// them too, e.g. to manage a house entry.
func RegisterParticipant(e *echo.Echo, h *handler.ParticipantHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/seasons/:id",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleParticipant, middleware.RoleAdmin),
	)
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/join", h.Join)
	g.GET("/roster/lock", h.LockStatus)
	g.PUT("/roster/:caption", h.UpdateCaption)
}
