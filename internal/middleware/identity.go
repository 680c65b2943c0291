package middleware

import "github.com/labstack/echo/v4"

// Anonymous is reported by UserID for unauthenticated requests.
const Anonymous = "anon"

// UserID returns the authenticated subject, or Anonymous.
func UserID(c echo.Context) string {
	if s, ok := c.Get(CtxUserID).(string); ok && s != "" {
		return s
	}
	return Anonymous
}
