package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ekrsw/knowledge/internal/repo"
	"github.com/ekrsw/knowledge/internal/service"
	"github.com/ekrsw/knowledge/internal/workflow"
)

// mapError translates service/repo errors into HTTP responses. All
// auth-gate failures collapse into one generic 401; forbidden stays
// distinct from not-found so "exists but you can't" is visible.
func mapError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken),
		errors.Is(err, service.ErrRevokedToken),
		errors.Is(err, service.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthenticated")
	case errors.Is(err, service.ErrForbidden),
		errors.Is(err, workflow.ErrTransitionForbidden):
		return echo.NewHTTPError(http.StatusForbidden, "not permitted")
	case errors.Is(err, repo.ErrKnowledgeNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "knowledge not found")
	case errors.Is(err, repo.ErrArticleNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "article not found")
	case errors.Is(err, repo.ErrUserNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	case errors.Is(err, repo.ErrDuplicateUsername),
		errors.Is(err, repo.ErrDuplicateArticle),
		errors.Is(err, repo.ErrStatusConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, workflow.ErrUnknownStatus),
		errors.Is(err, service.ErrInvalidChangeType),
		errors.Is(err, service.ErrBadCSV):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
