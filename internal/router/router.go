package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/review-catalog/internal/handler"
	"github.com/iliyamo/review-catalog/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication on
// the provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// This endpoint can be used by load balancers or monitoring systems
	// to verify that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth wires the passwordless auth endpoints under /v1/auth.
// Neither endpoint requires a session; both sit behind the rate
// limiter supplied by the caller (a no-op when Redis is down).
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth")
	g.Use(limiter)
	g.POST("/signup", a.Signup)
	g.POST("/token", a.Token)
}

// RegisterUsers wires user management under /v1/users.  All routes sit
// behind RequireAuth; the admin-only decision happens inside the
// handlers via the permission policies.  The /me pair is registered
// before the :username parameter routes so the literal segment wins.
func RegisterUsers(e *echo.Echo, u *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1/users")
	g.Use(middleware.RequireAuth(jwtSecret))
	g.GET("/me", u.Me)
	g.PATCH("/me", u.PatchMe)
	g.GET("", u.List)
	g.POST("", u.Create)
	g.GET("/:username", u.Get)
	g.PATCH("/:username", u.Patch)
	g.DELETE("/:username", u.Delete)
}

// RegisterCatalog wires categories, genres, titles, reviews and
// comments under /v1.  All routes use OptionalAuth: reads stay open to
// anonymous callers and the write policies are evaluated inside the
// handlers against whatever principal the middleware resolved.
func RegisterCatalog(e *echo.Echo, cat *handler.CategoryHandler, gen *handler.GenreHandler,
	t *handler.TitleHandler, rev *handler.ReviewHandler, cm *handler.CommentHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.OptionalAuth(jwtSecret))

	g.GET("/categories", cat.List)
	g.POST("/categories", cat.Create)
	g.DELETE("/categories/:slug", cat.Delete)

	g.GET("/genres", gen.List)
	g.POST("/genres", gen.Create)
	g.DELETE("/genres/:slug", gen.Delete)

	g.GET("/titles", t.List)
	g.POST("/titles", t.Create)
	g.GET("/titles/:title_id", t.Get)
	g.PATCH("/titles/:title_id", t.Patch)
	g.DELETE("/titles/:title_id", t.Delete)

	g.GET("/titles/:title_id/reviews", rev.List)
	g.POST("/titles/:title_id/reviews", rev.Create)
	g.GET("/titles/:title_id/reviews/:review_id", rev.Get)
	g.PATCH("/titles/:title_id/reviews/:review_id", rev.Patch)
	g.DELETE("/titles/:title_id/reviews/:review_id", rev.Delete)

	g.GET("/titles/:title_id/reviews/:review_id/comments", cm.List)
	g.POST("/titles/:title_id/reviews/:review_id/comments", cm.Create)
	g.GET("/titles/:title_id/reviews/:review_id/comments/:comment_id", cm.Get)
	g.PATCH("/titles/:title_id/reviews/:review_id/comments/:comment_id", cm.Patch)
	g.DELETE("/titles/:title_id/reviews/:review_id/comments/:comment_id", cm.Delete)
}
