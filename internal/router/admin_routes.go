package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fantasy-corps/internal/handler"
	"github.com/iliyamo/fantasy-corps/internal/middleware"
)

// RegisterAdmin registers the stage triggers under /v1/admin.  All routes
// require a valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(middleware.RoleAdmin),
	)
	if limiter != nil {
		g.Use(limiter)
	}
	g.POST("/seasons/:id/run-regular-show", h.RunRegularShow)
	g.POST("/seasons/:id/start-championships", h.StartChampionships)
	g.POST("/seasons/:id/run-prelims", h.RunPrelims)
	g.POST("/seasons/:id/run-semifinals", h.RunSemifinals)
	g.POST("/seasons/:id/run-finals", h.RunFinals)
}
