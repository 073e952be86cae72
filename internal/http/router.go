package http

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/inkwell/bloghub/internal/auth"
	"github.com/inkwell/bloghub/internal/cache"
	"github.com/inkwell/bloghub/internal/config"
	"github.com/inkwell/bloghub/internal/http/handlers"
	"github.com/inkwell/bloghub/internal/http/middlewares"
	"github.com/inkwell/bloghub/internal/observability"
	"github.com/inkwell/bloghub/internal/repo/postgres"
)

const maxRequestBody = 1 << 20 // 1 MiB

type RouterDeps struct {
	Cfg      config.Config
	Pool     *pgxpool.Pool
	Redis    *cache.Client
	Prom     *observability.Prom
	Registry *prometheus.Registry
	JWT      *auth.Manager
}

func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(otelgin.Middleware("bloghub"))
	r.Use(deps.Prom.GinHandleMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(deps.Cfg.CORSOrigins))
	r.Use(middlewares.RequireJSON())
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))

	// health + metrics
	health := handlers.NewHealthHandler(func() error {
		if deps.Pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return deps.Pool.Ping(ctx)
	})

	r.GET("/healthz", health.Healthz)
	r.GET("/readyz", health.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(deps.Pool)
	refreshRepo := postgres.NewRefreshTokensRepo(deps.Pool)
	postsRepo := postgres.NewPostsRepo(deps.Pool, deps.Prom)
	commentsRepo := postgres.NewCommentsRepo(deps.Pool)
	categoriesRepo := postgres.NewCategoriesRepo(deps.Pool)
	tagsRepo := postgres.NewTagsRepo(deps.Pool)
	likesRepo := postgres.NewLikesRepo(deps.Pool)
	jobsRepo := postgres.NewJobsRepo(deps.Pool, deps.Prom)

	listCache := cache.NewPostListCache(deps.Redis, 30*time.Second)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, deps.JWT, refreshRepo, jobsRepo, deps.Cfg)
	postsHandler := handlers.NewPostsHandler(postsRepo, likesRepo, listCache)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo, postsRepo, jobsRepo)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	tagsHandler := handlers.NewTagsHandler(tagsRepo)

	authmw := middlewares.NewAuthMiddleware(deps.JWT)

	// credential endpoints get a tight per-IP budget
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	refreshLimiter := middlewares.NewRateLimiter(30, time.Minute)

	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Register)
		authGroup.POST("/login", loginLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Login)
		authGroup.POST("/refresh", refreshLimiter.RateLimiterMiddleware(middlewares.KeyByIP), authHandler.Refresh)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authmw.RequireAuth(), authHandler.Me)
		authGroup.POST("/change-password", authmw.RequireAuth(), refreshLimiter.RateLimiterMiddleware(middlewares.KeyByUserOrIP), authHandler.ChangePassword)
	}

	// posts: public reads, authenticated writes
	r.GET("/posts", authmw.OptionalAuth(), postsHandler.List)
	r.GET("/posts/:postId", authmw.OptionalAuth(), postsHandler.Get)
	r.POST("/posts", authmw.RequireAuth(), postsHandler.Create)
	r.PUT("/posts/:postId", authmw.RequireAuth(), postsHandler.Update)
	r.DELETE("/posts/:postId", authmw.RequireAuth(), postsHandler.Delete)

	// likes
	r.POST("/posts/:postId/like", authmw.RequireAuth(), postsHandler.Like)
	r.DELETE("/posts/:postId/like", authmw.RequireAuth(), postsHandler.Unlike)

	// comments
	r.GET("/posts/:postId/comments", authmw.OptionalAuth(), commentsHandler.ListByPost)
	r.POST("/posts/:postId/comments", authmw.RequireAuth(), commentsHandler.Create)
	r.DELETE("/comments/:commentId", authmw.RequireAuth(), commentsHandler.Delete)

	// categories and tags: public listing, admin mutation
	r.GET("/categories", categoriesHandler.List)
	r.GET("/categories/:slug", categoriesHandler.Get)
	r.POST("/categories", authmw.RequireAuth(), authmw.RequireRole(auth.RoleAdmin), categoriesHandler.Create)
	r.DELETE("/categories/:categoryId", authmw.RequireAuth(), authmw.RequireRole(auth.RoleAdmin), categoriesHandler.Delete)

	r.GET("/tags", tagsHandler.List)
	r.POST("/tags", authmw.RequireAuth(), authmw.RequireRole(auth.RoleAdmin), tagsHandler.Create)
	r.DELETE("/tags/:tagId", authmw.RequireAuth(), authmw.RequireRole(auth.RoleAdmin), tagsHandler.Delete)

	return r
}
