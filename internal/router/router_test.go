package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/auth"
	"github.com/iliyamo/review-catalog/internal/config"
	"github.com/iliyamo/review-catalog/internal/handler"
	"github.com/iliyamo/review-catalog/internal/repository"
)

const testSecret = "test-secret"

// wiredApp registers the full route table against sqlmock-backed
// repositories. Building it at all proves the nested catalog routes
// agree on their parameter names; echo panics at registration time if
// they do not.
func wiredApp(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := config.Config{JWTSecret: testSecret, AccessTTLMin: 15, CodeTTLMin: 10, BcryptCost: 4}
	users := repository.NewUserRepo(db)
	codes := repository.NewCodeRepo(db)
	categories := repository.NewCategoryRepo(db)
	genres := repository.NewGenreRepo(db)
	titles := repository.NewTitleRepo(db)
	reviews := repository.NewReviewRepo(db)
	comments := repository.NewCommentRepo(db)

	passthrough := func(next echo.HandlerFunc) echo.HandlerFunc { return next }

	e := echo.New()
	RegisterRoutes(e)
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, codes), passthrough)
	RegisterUsers(e, handler.NewUserHandler(cfg, users), cfg.JWTSecret)
	RegisterCatalog(e,
		handler.NewCategoryHandler(categories),
		handler.NewGenreHandler(genres),
		handler.NewTitleHandler(titles, categories, genres),
		handler.NewReviewHandler(titles, reviews),
		handler.NewCommentHandler(reviews, comments),
		cfg.JWTSecret)
	return e, mock
}

func TestHealthz(t *testing.T) {
	e, _ := wiredApp(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestPublicCatalogRead(t *testing.T) {
	e, mock := wiredApp(t)
	mock.ExpectQuery("SELECT id,name,slug FROM categories ORDER BY name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug"}).AddRow(1, "Films", "films"))

	req := httptest.NewRequest(http.MethodGet, "/v1/categories", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "films")
}

func TestUsersRequireBearer(t *testing.T) {
	e, _ := wiredApp(t)
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// /users/me resolves to the self-service handler, not the :username
// lookup.
func TestMeRouteWins(t *testing.T) {
	e, mock := wiredApp(t)

	tok, err := auth.NewAccessToken(testSecret, 7, "reader", "user", false, 15)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM users WHERE id=").
		WithArgs(uint64(7)).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "email", "role", "is_superuser",
			"first_name", "last_name", "bio", "token_version", "created_at", "updated_at",
		}).AddRow(7, "reader", "r@example.com", "user", false, "", "", "", 1, time.Now(), time.Now()))

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"reader"`)
}

// A write on the catalog without a token is rejected before any
// storage call.
func TestCatalogWriteNeedsAuth(t *testing.T) {
	e, _ := wiredApp(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/titles", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
