package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/model"
	"github.com/iliyamo/review-catalog/internal/permission"
	"github.com/iliyamo/review-catalog/internal/repository"
)

// TitleHandler exposes the catalog titles: public reads with the
// derived rating, staff-only writes. Category and genres arrive as
// slugs and are resolved before anything is written.
type TitleHandler struct {
	Titles     *repository.TitleRepo
	Categories *repository.CategoryRepo
	Genres     *repository.GenreRepo
}

func NewTitleHandler(t *repository.TitleRepo, cat *repository.CategoryRepo, g *repository.GenreRepo) *TitleHandler {
	return &TitleHandler{Titles: t, Categories: cat, Genres: g}
}

type titleReq struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Category    *string   `json:"category"`
	Genre       *[]string `json:"genre"`
}

// List handles GET /v1/titles (public). Query parameters category,
// genre, year and name narrow the result; order is year descending.
func (h *TitleHandler) List(c echo.Context) error {
	f := repository.TitleFilter{
		CategorySlug: c.QueryParam("category"),
		GenreSlug:    c.QueryParam("genre"),
		Name:         c.QueryParam("name"),
	}
	if y := c.QueryParam("year"); y != "" {
		year, err := strconv.Atoi(y)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid year"})
		}
		f.Year = year
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	titles, err := h.Titles.List(ctx, f)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, titles)
}

// Get handles GET /v1/titles/:id (public).
func (h *TitleHandler) Get(c echo.Context) error {
	id, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	det, err := h.Titles.GetDetail(ctx, id)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Create handles POST /v1/titles (moderator or admin).
func (h *TitleHandler) Create(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) {
		return deny(c, p)
	}
	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Name == nil || req.Year == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and year required"})
	}
	name := strings.TrimSpace(*req.Name)
	if err := model.ValidateTitle(name, *req.Year); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	categoryID, genreIDs, err := h.resolveRefs(ctx, req.Category, req.Genre)
	if err != nil {
		if err == repository.ErrNotFound {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category or genre slug"})
		}
		return repoFail(c, err)
	}
	if genreIDs == nil {
		genreIDs = []uint64{}
	}

	id, err := h.Titles.Create(ctx, name, *req.Year, req.Description, categoryID, genreIDs)
	if err != nil {
		return repoFail(c, err)
	}
	det, err := h.Titles.GetDetail(ctx, id)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, det)
}

// Patch handles PATCH /v1/titles/:id (moderator or admin). Omitted
// fields keep their stored values; an omitted genre list keeps the
// current associations.
func (h *TitleHandler) Patch(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) {
		return deny(c, p)
	}
	id, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	var req titleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	cur, err := h.Titles.GetDetail(ctx, id)
	if err != nil {
		return repoFail(c, err)
	}

	name := cur.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
	}
	year := cur.Year
	if req.Year != nil {
		year = *req.Year
	}
	if err := model.ValidateTitle(name, year); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	description := cur.Description
	if req.Description != nil {
		description = req.Description
	}

	categoryID := idOfCategory(cur.Category)
	var genreIDs []uint64 // nil -> keep associations
	if req.Category != nil || req.Genre != nil {
		resolvedCat, resolvedGenres, err := h.resolveRefs(ctx, req.Category, req.Genre)
		if err != nil {
			if err == repository.ErrNotFound {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown category or genre slug"})
			}
			return repoFail(c, err)
		}
		if req.Category != nil {
			categoryID = resolvedCat
		}
		if req.Genre != nil {
			genreIDs = resolvedGenres
			if genreIDs == nil {
				genreIDs = []uint64{}
			}
		}
	}

	if err := h.Titles.Update(ctx, id, name, year, description, categoryID, genreIDs); err != nil {
		return repoFail(c, err)
	}
	det, err := h.Titles.GetDetail(ctx, id)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Delete handles DELETE /v1/titles/:id (moderator or admin). Reviews
// and their comments go with the title.
func (h *TitleHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.StaffWrite(p, permission.Unsafe) {
		return deny(c, p)
	}
	id, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if err := h.Titles.Delete(ctx, id); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// resolveRefs turns slug references into row IDs. ErrNotFound from
// either lookup is reported to the client as a validation failure, not
// a 404: the title route exists, the payload is wrong.
func (h *TitleHandler) resolveRefs(ctx context.Context, categorySlug *string, genreSlugs *[]string) (*uint64, []uint64, error) {
	var categoryID *uint64
	if categorySlug != nil && *categorySlug != "" {
		cat, err := h.Categories.GetBySlug(ctx, *categorySlug)
		if err != nil {
			return nil, nil, err
		}
		categoryID = &cat.ID
	}
	var genreIDs []uint64
	if genreSlugs != nil {
		genres, err := h.Genres.GetBySlugs(ctx, *genreSlugs)
		if err != nil {
			return nil, nil, err
		}
		genreIDs = make([]uint64, 0, len(genres))
		for _, g := range genres {
			genreIDs = append(genreIDs, g.ID)
		}
	}
	return categoryID, genreIDs, nil
}

func idOfCategory(cat *model.Category) *uint64 {
	if cat == nil {
		return nil
	}
	id := cat.ID
	return &id
}
