package handler

import (
	"context"
	"net/http"

	"yamdb/internal/metrics"
	"yamdb/internal/microservices/http-api/middleware"
	"yamdb/internal/microservices/http-api/permission"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RouterConfig carries the cross-cutting pieces the router wires in. Nil
// limiters disable the corresponding check.
type RouterConfig struct {
	Logger         *zap.Logger
	CORSOrigins    []string
	ClientLimiter  *middleware.ClientLimiter
	AuthThrottle   *middleware.AuthThrottle
	Tokens         middleware.TokenResolver
	MetricsEnabled bool
	// Health is called by /healthz, typically a database ping.
	Health func(ctx context.Context) error
}

type Handlers struct {
	Auth    *AuthHandler
	Catalog *CatalogHandler
	Title   *TitleHandler
	Review  *ReviewHandler
	Comment *CommentHandler
	User    *UserHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Logger(cfg.Logger),
		middleware.Metrics(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(cfg.ClientLimiter),
		middleware.OptionalAuth(cfg.Tokens),
	)

	r.GET("/healthz", func(c *gin.Context) {
		if cfg.Health != nil {
			ctx, cancel := requestContext(c)
			defer cancel()
			if err := cfg.Health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if cfg.MetricsEnabled {
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	v1 := r.Group("/v1")

	auth := v1.Group("/auth", cfg.AuthThrottle.Middleware())
	{
		auth.POST("/signup/", middleware.Require(permission.Signup), h.Auth.Signup)
		auth.POST("/token/", h.Auth.Token)
		auth.POST("/login/", h.Auth.Login)
	}

	categories := v1.Group("/categories")
	{
		categories.GET("/", h.Catalog.ListCategories)
		categories.POST("/", middleware.Require(permission.WriteCategory), h.Catalog.CreateCategory)
		categories.DELETE("/:slug/", middleware.Require(permission.WriteCategory), h.Catalog.DeleteCategory)
	}

	genres := v1.Group("/genres")
	{
		genres.GET("/", h.Catalog.ListGenres)
		genres.POST("/", middleware.Require(permission.WriteGenre), h.Catalog.CreateGenre)
		genres.DELETE("/:slug/", middleware.Require(permission.WriteGenre), h.Catalog.DeleteGenre)
	}

	titles := v1.Group("/titles")
	{
		titles.GET("/", h.Title.List)
		titles.POST("/", middleware.Require(permission.WriteTitle), h.Title.Create)
		titles.GET("/:title_id/", h.Title.Get)
		titles.PATCH("/:title_id/", middleware.Require(permission.WriteTitle), h.Title.Update)
		titles.DELETE("/:title_id/", middleware.Require(permission.WriteTitle), h.Title.Delete)
	}

	reviews := titles.Group("/:title_id/reviews")
	{
		reviews.GET("/", h.Review.List)
		reviews.POST("/", middleware.Require(permission.CreateFeedback), h.Review.Create)
		reviews.GET("/:review_id/", h.Review.Get)
		reviews.PATCH("/:review_id/", middleware.Require(permission.ModifyFeedback), h.Review.Update)
		reviews.DELETE("/:review_id/", middleware.Require(permission.ModifyFeedback), h.Review.Delete)
	}

	comments := reviews.Group("/:review_id/comments")
	{
		comments.GET("/", h.Comment.List)
		comments.POST("/", middleware.Require(permission.CreateFeedback), h.Comment.Create)
		comments.GET("/:comment_id/", h.Comment.Get)
		comments.PATCH("/:comment_id/", middleware.Require(permission.ModifyFeedback), h.Comment.Update)
		comments.DELETE("/:comment_id/", middleware.Require(permission.ModifyFeedback), h.Comment.Delete)
	}

	users := v1.Group("/users")
	{
		users.GET("/me/", middleware.Require(permission.ReadSelf), h.User.Me)
		users.PATCH("/me/", middleware.Require(permission.UpdateSelf), h.User.UpdateMe)

		admin := users.Group("", middleware.Require(permission.ManageUsers))
		admin.GET("/", h.User.List)
		admin.POST("/", h.User.Create)
		admin.GET("/:username/", h.User.Get)
		admin.PATCH("/:username/", h.User.Update)
		admin.DELETE("/:username/", h.User.Delete)
	}

	return r
}
