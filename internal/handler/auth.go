package handler

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/auth"
	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/mailer"
	"github.com/iliyamo/review-catalog/internal/model"
	"github.com/iliyamo/review-catalog/internal/permission"
	q "github.com/iliyamo/review-catalog/internal/queue"
	"github.com/iliyamo/review-catalog/internal/repository"
)

// AuthHandler bundles dependencies for the passwordless auth endpoints:
// signup issues a confirmation code out-of-band, token exchanges that
// code for a bearer credential.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Codes *repository.CodeRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, codes *repository.CodeRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Codes: codes}
}

// ----- DTOs -----

type signupReq struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

type tokenReq struct {
	Username         string `json:"username"`
	ConfirmationCode string `json:"confirmation_code"`
}

// Signup: reserve the (email, username) pair and send a confirmation
// code. Re-submitting the exact same pair is an idempotent resend; a
// pair where either field belongs to someone else is a conflict. No
// token is produced here.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = model.NormalizeEmail(req.Email)
	if err := model.ValidateUsername(req.Username); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"username": err.Error()})
	}
	if err := model.ValidateEmail(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"email": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, req.Username)
	switch err {
	case nil:
		// Existing principal: only the exact pair may resend.
		if user.Email != req.Email {
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		}
	case repository.ErrNotFound:
		if _, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		} else if err != repository.ErrNotFound {
			return repoFail(c, err)
		}
		// The unique indexes settle a concurrent signup for the same pair.
		uid, err := h.Users.Create(ctx, req.Username, req.Email, string(permission.RoleUser))
		if err != nil {
			return repoFail(c, err)
		}
		user, err = h.Users.GetByID(ctx, uid)
		if err != nil {
			return repoFail(c, err)
		}
	default:
		return repoFail(c, err)
	}

	code, err := auth.NewConfirmationCode()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}
	ttl := time.Duration(h.Cfg.CodeTTLMin) * time.Minute
	if err := h.Codes.Issue(ctx, user.ID, code, user.TokenVersion, h.Cfg.BcryptCost, ttl); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue code failed"})
	}

	// Delivery is fire-and-forget: a broker outage must not fail the
	// signup, the pending principal stays valid for a resend.
	if err := mailer.SendConfirmationCode(ctx, q.ConfirmationEmailEvent{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Code:     code,
		IssuedAt: time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		log.Printf("signup: confirmation email delivery failed for user %d: %v", user.ID, err)
	}

	return c.JSON(http.StatusOK, signupReq{Email: user.Email, Username: user.Username})
}

// Token: exchange a confirmation code for a bearer access token. A
// missing user is 404; a wrong, expired, consumed or stale-state code
// is a 400 validation failure, distinct from an authorization denial.
func (h *AuthHandler) Token(c echo.Context) error {
	var req tokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.ConfirmationCode = strings.TrimSpace(req.ConfirmationCode)
	if req.Username == "" || req.ConfirmationCode == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and confirmation_code required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), dbTimeout)
	defer cancel()

	user, err := h.Users.GetByUsername(ctx, req.Username)
	if err == repository.ErrNotFound {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if err != nil {
		return repoFail(c, err)
	}

	if err := h.Codes.Exchange(ctx, user, req.ConfirmationCode); err != nil {
		if err == repository.ErrCodeInvalid {
			return c.JSON(http.StatusBadRequest, echo.Map{"confirmation_code": "invalid confirmation code"})
		}
		return repoFail(c, err)
	}

	access, err := auth.NewAccessToken(h.Cfg.JWTSecret, user.ID, user.Username, user.Role, user.IsSuperuser, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": access.Token})
}
