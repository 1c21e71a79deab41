package handler // handler package contains the HTTP endpoint implementations

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/permission"
	"github.com/iliyamo/review-catalog/internal/repository"
)

// deny maps a policy rejection onto a status code: anonymous callers
// get 401 (authentication required), authenticated callers get 403
// (insufficient rights). The distinction keeps "log in first" and
// "your role cannot do this" separate for clients.
func deny(c echo.Context, p permission.Principal) error {
	if !p.Authenticated {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}
	return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
}

// parseID extracts a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return id, nil
}

// repoFail translates repository sentinel errors into responses.
// Anything unrecognized becomes a 500 with a generic message.
func repoFail(c echo.Context, err error) error {
	switch err {
	case repository.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
	case repository.ErrConflict:
		return c.JSON(http.StatusConflict, echo.Map{"error": "already exists"})
	case repository.ErrUsernameTaken:
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	case repository.ErrEmailTaken:
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case repository.ErrReviewExists:
		return c.JSON(http.StatusConflict, echo.Map{"error": "you already have a review for this title"})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "storage failure"})
	}
}

// dbTimeout bounds every storage call made from a handler.
const dbTimeout = 5 * time.Second
