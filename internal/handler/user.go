package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/model"
	"github.com/iliyamo/review-catalog/internal/permission"
	"github.com/iliyamo/review-catalog/internal/repository"
)

// UserHandler implements the admin-only user management endpoints and
// the self-service /users/me pair.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, u *repository.UserRepo) *UserHandler {
	return &UserHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type userReq struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	Role      *string `json:"role"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Bio       *string `json:"bio"`
}

type userResp struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `json:"bio"`
}

func toUserResp(u model.User) userResp {
	return userResp{
		Username:  u.Username,
		Email:     u.Email,
		Role:      string(permission.ParseRole(u.Role)),
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
	}
}

// List handles GET /v1/users (admin only).
func (h *UserHandler) List(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AdminOnly(p) {
		return deny(c, p)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	users, err := h.Users.List(ctx)
	if err != nil {
		return repoFail(c, err)
	}
	out := make([]userResp, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResp(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /v1/users (admin only). Unlike signup, an admin
// may set the role directly; unknown role values degrade to "user".
func (h *UserHandler) Create(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AdminOnly(p) {
		return deny(c, p)
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Username == nil || req.Email == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and email required"})
	}
	username := strings.TrimSpace(*req.Username)
	email := model.NormalizeEmail(*req.Email)
	if err := model.ValidateUsername(username); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"username": err.Error()})
	}
	if err := model.ValidateEmail(email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"email": err.Error()})
	}
	role := permission.RoleUser
	if req.Role != nil {
		role = permission.ParseRole(*req.Role)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	uid, err := h.Users.Create(ctx, username, email, string(role))
	if err != nil {
		return repoFail(c, err)
	}
	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusCreated, toUserResp(u))
}

// Get handles GET /v1/users/:username (admin only).
func (h *UserHandler) Get(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AdminOnly(p) {
		return deny(c, p)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Patch handles PATCH /v1/users/:username (admin only). This is the
// only write path where a submitted role takes effect.
func (h *UserHandler) Patch(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AdminOnly(p) {
		return deny(c, p)
	}
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return repoFail(c, err)
	}
	if err := applyUserPatch(&u, req, true); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Users.Update(ctx, &u); err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// Delete handles DELETE /v1/users/:username (admin only). The user's
// reviews and comments go with them.
func (h *UserHandler) Delete(c echo.Context) error {
	p := middleware.Caller(c)
	if !permission.AdminOnly(p) {
		return deny(c, p)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, c.Param("username"))
	if err != nil {
		return repoFail(c, err)
	}
	if err := h.Users.Delete(ctx, u.ID); err != nil {
		return repoFail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Me handles GET /v1/users/me for any authenticated caller.
func (h *UserHandler) Me(c echo.Context) error {
	p := middleware.Caller(c)
	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.ID)
	if err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// PatchMe handles PATCH /v1/users/me. A submitted role field is
// silently discarded: the caller keeps their prior role no matter what
// the payload says.
func (h *UserHandler) PatchMe(c echo.Context) error {
	p := middleware.Caller(c)
	var req userReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	u, err := h.Users.GetByID(ctx, p.ID)
	if err != nil {
		return repoFail(c, err)
	}
	if err := applyUserPatch(&u, req, false); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := h.Users.Update(ctx, &u); err != nil {
		return repoFail(c, err)
	}
	return c.JSON(http.StatusOK, toUserResp(u))
}

// applyUserPatch copies submitted fields onto the loaded user. Role is
// only honored when allowRole is set (admin path); the self-service
// path preserves the stored role.
func applyUserPatch(u *model.User, req userReq, allowRole bool) error {
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := model.ValidateUsername(username); err != nil {
			return err
		}
		u.Username = username
	}
	if req.Email != nil {
		email := model.NormalizeEmail(*req.Email)
		if err := model.ValidateEmail(email); err != nil {
			return err
		}
		u.Email = email
	}
	if req.Role != nil && allowRole {
		u.Role = string(permission.ParseRole(*req.Role))
	}
	if req.FirstName != nil {
		u.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		u.LastName = *req.LastName
	}
	if req.Bio != nil {
		u.Bio = *req.Bio
	}
	return nil
}
