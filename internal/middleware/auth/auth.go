package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ekrsw/knowledge/internal/logging"
	"github.com/ekrsw/knowledge/internal/models"
	"github.com/ekrsw/knowledge/internal/service"
)

const (
	userKey  = "user"
	tokenKey = "accessToken"
)

type Middleware struct {
	Auth *service.AuthService
}

// RequireAuth resolves the bearer token through the auth gate and puts
// the user into the request context. Every failure maps to the same
// 401 body; the actual reason only reaches the logs.
func (m *Middleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := bearerToken(c)
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
		}

		ctx := c.Request().Context()
		user, err := m.Auth.Resolve(ctx, token)
		if err != nil {
			logging.FromContext(ctx).Warn("auth rejected", "error", err)
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
		}

		c.Set(userKey, user)
		c.Set(tokenKey, token)
		return next(c)
	}
}

func (m *Middleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
		}
		if !user.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin rights required")
		}
		return next(c)
	}
}

func CurrentUser(c echo.Context) *models.User {
	if u, ok := c.Get(userKey).(*models.User); ok {
		return u
	}
	return nil
}

func AccessToken(c echo.Context) string {
	if t, ok := c.Get(tokenKey).(string); ok {
		return t
	}
	return ""
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
