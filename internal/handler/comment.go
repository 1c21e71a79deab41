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

// CommentHandler exposes comments nested under a review, with the same
// policy pair as reviews: public reads, authenticated creation, author/
// moderator/admin writes per object.
type CommentHandler struct {
	Reviews  *repository.ReviewRepo
	Comments *repository.CommentRepo
}

func NewCommentHandler(r *repository.ReviewRepo, cm *repository.CommentRepo) *CommentHandler {
	return &CommentHandler{Reviews: r, Comments: cm}
}

type commentReq struct {
	Text *string `json:"text"`
}

// parentReview resolves the nested path and confirms the review really
// belongs to the title in the URL.
func (h *CommentHandler) parentReview(ctx context.Context, c echo.Context) (*repository.ReviewDetail, error) {
	titleID, err := parseID(c, "title_id")
	if err != nil {
		return nil, err
	}
	reviewID, err := parseID(c, "review_id")
	if err != nil {
		return nil, err
	}
	return h.Reviews.Get(ctx, titleID, reviewID)
}

// List handles GET .../reviews/:review_id/comments (public), newest first.
func (h *CommentHandler) List(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	review, err := h.parentReview(ctx, c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return repoFail(c, err)
	}
	comments, err := h.Comments.ListByReview(ctx, review.ID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, comments)
}

// Create handles POST .../comments. Any authenticated caller may
// comment, any number of times; the author always comes from the
// principal.
func (h *CommentHandler) Create(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AuthorOrModerator(p, permission.Unsafe) {
		return deny(c, p)
	}
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
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

	review, err := h.parentReview(ctx, c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return repoFail(c, err)
	}
	id, err := h.Comments.Create(ctx, review.ID, p.ID, text)
	if err != nil {
		return repoFail(c, err)
	}
	det, err := h.Comments.Get(ctx, review.ID, id)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, det)
}

// Get handles GET .../comments/:comment_id (public).
func (h *CommentHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	review, err := h.parentReview(ctx, c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return repoFail(c, err)
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	det, err := h.Comments.Get(ctx, review.ID, commentID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Patch handles PATCH .../comments/:comment_id.
func (h *CommentHandler) Patch(c echo.Context) error {
	p := middleware.Caller(c)
	var req commentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Text == nil || strings.TrimSpace(*req.Text) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"text": model.ErrTextRequired.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	review, err := h.parentReview(ctx, c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return repoFail(c, err)
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	det, err := h.Comments.Get(ctx, review.ID, commentID)
	if err != nil {
		return repoFail(c, err)
	}
	if !permission.CanTouchObject(p, permission.Unsafe, det.AuthorID) {
		return deny(c, p)
	}
	if err := h.Comments.Update(ctx, commentID, strings.TrimSpace(*req.Text)); err != nil {
		return repoFail(c, err)
	}
	det, err = h.Comments.Get(ctx, review.ID, commentID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, det)
}

// Delete handles DELETE .../comments/:comment_id.
func (h *CommentHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	review, err := h.parentReview(ctx, c)
	if err != nil {
		if he, ok := err.(*echo.HTTPError); ok {
			return he
		}
		return repoFail(c, err)
	}
	commentID, err := parseID(c, "comment_id")
	if err != nil {
		return err
	}
	det, err := h.Comments.Get(ctx, review.ID, commentID)
	if err != nil {
		return repoFail(c, err)
	}
	if !permission.CanTouchObject(p, permission.Unsafe, det.AuthorID) {
		return deny(c, p)
	}
	if err := h.Comments.Delete(ctx, commentID); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
