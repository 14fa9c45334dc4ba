package auth

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/chaussup/shop/internal/session"
)

// RequireAdmin gates the admin surface. Anonymous requests are sent to the
// login form instead of getting a bare 401, since this is an HTML surface.
func RequireAdmin(sessions *session.Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userID, err := sessions.Validate(c)
			if err != nil {
				return c.Redirect(http.StatusFound, "/admin/login")
			}
			c.Set("userID", userID)
			return next(c)
		}
	}
}
