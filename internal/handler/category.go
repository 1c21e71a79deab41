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

// CategoryHandler exposes the category endpoints: public reads, staff
// writes, and an admin-reserved destructive delete.
type CategoryHandler struct {
	Categories *repository.CategoryRepo
}

func NewCategoryHandler(r *repository.CategoryRepo) *CategoryHandler {
	return &CategoryHandler{Categories: r}
}

type nameSlugReq struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type nameSlugResp struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// List handles GET /v1/categories (public).
func (h *CategoryHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cats, err := h.Categories.List(ctx)
	if err != nil {
		return repoFail(c, err)
	}
	out := make([]nameSlugResp, 0, len(cats))
	for _, cat := range cats {
		out = append(out, nameSlugResp{Name: cat.Name, Slug: cat.Slug})
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/categories (moderator or admin).
func (h *CategoryHandler) Create(c echo.Context) error {
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

	if _, err := h.Categories.Create(ctx, req.Name, req.Slug); err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, nameSlugResp{Name: req.Name, Slug: req.Slug})
}

// Delete handles DELETE /v1/categories/:slug. On top of the staff
// gate, the moderator lockout keeps this destructive action away from
// moderators; in practice only admins reach the repository call.
// Referencing titles survive with a nulled category.
func (h *CategoryHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) || !permission.ModeratorLockout(p, permission.Unsafe) {
		return deny(c, p)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Categories.DeleteBySlug(ctx, c.Param("slug")); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
