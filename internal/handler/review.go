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

// ReviewHandler exposes reviews nested under a title. Reads are public;
// creating needs any authenticated caller; editing and deleting need
// the author, a moderator or an admin (decided per object after load).
type ReviewHandler struct {
	Titles  *repository.TitleRepo
	Reviews *repository.ReviewRepo
}

func NewReviewHandler(t *repository.TitleRepo, r *repository.ReviewRepo) *ReviewHandler {
	return &ReviewHandler{Titles: t, Reviews: r}
}

type reviewReq struct {
	Score *int    `json:"score"`
	Text  *string `json:"text"`
}

// List handles GET /v1/titles/:title_id/reviews (public), newest first.
func (h *ReviewHandler) List(c echo.Context) error {
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Titles.GetDetail(ctx, titleID); err != nil {
		return repoFail(c, err)
	}
	reviews, err := h.Reviews.ListByTitle(ctx, titleID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Create handles POST /v1/titles/:title_id/reviews. The author is the
// authenticated principal, never a payload field, and the unique index
// turns a second review for the same pair into a 409 no matter how the
// requests race.
func (h *ReviewHandler) Create(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AuthorOrModerator(p, permission.Unsafe) {
		return deny(c, p)
	}
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Score == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"score": "score is required"})
	}
	if err := model.ValidateScore(*req.Score); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"score": err.Error()})
	}
	text := ""
	if req.Text != nil {
		text = strings.TrimSpace(*req.Text)
	}
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"text": model.ErrTextRequired.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	if _, err := h.Titles.GetDetail(ctx, titleID); err != nil {
		return repoFail(c, err)
	}
	id, err := h.Reviews.Create(ctx, titleID, p.ID, *req.Score, text)
	if err != nil {
		return repoFail(c, err)
	}
	det, err := h.Reviews.Get(ctx, titleID, id)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, det)
}

// Get handles GET /v1/titles/:title_id/reviews/:review_id (public).
func (h *ReviewHandler) Get(c echo.Context) error {
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	det, err := h.Reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Patch handles PATCH /v1/titles/:title_id/reviews/:review_id. The
// uniqueness rule is not re-checked here: the (title, author) pair is
// immutable once created.
func (h *ReviewHandler) Patch(c echo.Context) error {
	p := middleware.Caller(c)
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return err
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	det, err := h.Reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		return repoFail(c, err)
	}
	if !permission.CanTouchObject(p, permission.Unsafe, det.AuthorID) {
		return deny(c, p)
	}

	score := det.Score
	if req.Score != nil {
		score = *req.Score
	}
	if err := model.ValidateScore(score); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"score": err.Error()})
	}
	text := det.Text
	if req.Text != nil {
		text = strings.TrimSpace(*req.Text)
	}
	if text == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"text": model.ErrTextRequired.Error()})
	}

	if err := h.Reviews.Update(ctx, reviewID, score, text); err != nil {
		return repoFail(c, err)
	}
	det, err = h.Reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Delete handles DELETE /v1/titles/:title_id/reviews/:review_id and
// cascades to the review's comments.
func (h *ReviewHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return err
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	det, err := h.Reviews.Get(ctx, titleID, reviewID)
	if err != nil {
		return repoFail(c, err)
	}
	if !permission.CanTouchObject(p, permission.Unsafe, det.AuthorID) {
		return deny(c, p)
	}
	if err := h.Reviews.Delete(ctx, reviewID); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
