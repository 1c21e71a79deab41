package handler

import (
	"database/sql"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/review-catalog/internal/middleware"
	"github.com/iliyamo/review-catalog/internal/permission"
)

var (
	anon      = permission.Anonymous
	plainUser = permission.Principal{ID: 7, Username: "reader", Role: permission.RoleUser, Authenticated: true}
	moderator = permission.Principal{ID: 8, Username: "mod", Role: permission.RoleModerator, Authenticated: true}
	admin     = permission.Principal{ID: 9, Username: "root", Role: permission.RoleAdmin, Authenticated: true}
)

// testCtx builds an echo context carrying an optional JSON body, path
// parameters and the given principal, the way the auth middleware
// would have left it.
func testCtx(t *testing.T, method, body string, p permission.Principal, params map[string]string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(req, rec)
	c.Set(middleware.PrincipalKey, p)
	names := make([]string, 0, len(params))
	values := make([]string, 0, len(params))
	for k, v := range params {
		names = append(names, k)
		values = append(values, v)
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
