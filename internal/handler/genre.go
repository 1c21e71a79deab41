package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/model"
	"github.com/iliyamo/review-catalog/internal/permission"
	"github.com/iliyamo/review-catalog/internal/repository"
)

// GenreHandler mirrors CategoryHandler for genres; deleting a genre
// drops only the title associations.
type GenreHandler struct {
	Genres *repository.GenreRepo
}

func NewGenreHandler(r *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{Genres: r}
}

// List handles GET /v1/genres (public).
func (h *GenreHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	genres, err := h.Genres.List(ctx)
	if err != nil {
		return repoFail(c, err)
	}
	out := make([]nameSlugResp, 0, len(genres))
	for _, g := range genres {
		out = append(out, nameSlugResp{Name: g.Name, Slug: g.Slug})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/genres (moderator or admin).
func (h *GenreHandler) Create(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) {
		return deny(c, p)
	}
	var req nameSlugReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)
	if err := model.ValidateNameSlug(req.Name, req.Slug); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Genres.Create(ctx, req.Name, req.Slug); err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, nameSlugResp{Name: req.Name, Slug: req.Slug})
}

// Delete handles DELETE /v1/genres/:slug with the same staff +
// moderator-lockout gating as categories.
func (h *GenreHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) || !permission.ModeratorLockout(p, permission.Unsafe) {
		return deny(c, p)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Genres.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
