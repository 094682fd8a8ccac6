package http

import (
	"log/slog"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/domain/user"
	"github.com/geocoder89/bloghub/internal/http/handlers"
	"github.com/geocoder89/bloghub/internal/http/middlewares"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/geocoder89/bloghub/internal/repo/postgres"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

const maxRequestBody = 1 << 20 // 1 MiB

// Deps carries everything the router needs; cmd/api builds it once.
type Deps struct {
	Cfg   config.Config
	Log   *slog.Logger
	Pool  *pgxpool.Pool
	Redis *cache.Redis
	JWT   *auth.Manager
	Prom  *observability.Prom
	Reg   *prometheus.Registry
}

func NewRouter(d Deps) *gin.Engine {
	if d.Cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(d.Log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(d.Cfg.CORSAllowedOrigins))
	r.Use(middlewares.MaxBodyBytes(maxRequestBody))

	if d.Prom != nil {
		r.Use(d.Prom.GinHandleMiddleware())
	}

	if d.Cfg.TracingEnabled {
		r.Use(otelgin.Middleware("bloghub-api"))
	}

	// repositories
	jobsRepo := postgres.NewJobsRepo(d.Pool, d.Prom)
	usersRepo := postgres.NewUsersRepo(d.Pool, d.Prom, jobsRepo)
	postsRepo := postgres.NewPostsRepo(d.Pool, d.Prom)
	categoriesRepo := postgres.NewCategoriesRepo(d.Pool, d.Prom)
	commentsRepo := postgres.NewCommentsRepo(d.Pool, d.Prom)

	// handlers
	authHandler := handlers.NewAuthHandler(usersRepo, d.JWT)
	postsHandler := handlers.NewPostsHandler(postsRepo, d.Redis)
	categoriesHandler := handlers.NewCategoriesHandler(categoriesRepo)
	commentsHandler := handlers.NewCommentsHandler(commentsRepo)

	pings := map[string]handlers.PingFunc{}

	if d.Pool != nil {
		pings["postgres"] = d.Pool.Ping
	}

	if d.Redis != nil {
		pings["redis"] = d.Redis.Ping
	}

	healthHandler := handlers.NewHealthHandler(pings)

	// middleware requiring wiring
	authMW := middlewares.NewAuthMiddleware(d.JWT, usersRepo)
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)

	// operational endpoints
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)

	if d.Reg != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Reg, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(middlewares.RequireJSON())

	// auth
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/signup", authHandler.Register)
	authGroup.POST("/login", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)
	authGroup.POST("/signin", loginLimiter.Middleware(middlewares.KeyByIP), authHandler.Login)

	requireAuth := authMW.RequireAuth()
	requireAdmin := authMW.RequireRole(user.RoleAdmin)

	// posts: reads are public, writes are admin only. All post routes share
	// the :postId param name, gin rejects mixed wildcard names per segment.
	api.GET("/posts", postsHandler.List)
	api.GET("/posts/:postId", postsHandler.GetByID)
	api.POST("/posts", requireAuth, requireAdmin, postsHandler.Create)
	api.PUT("/posts/:postId", requireAuth, requireAdmin, postsHandler.Update)
	api.DELETE("/posts/:postId", requireAuth, requireAdmin, postsHandler.Delete)

	// categories: same policy as posts
	api.GET("/categories", categoriesHandler.List)
	api.GET("/categories/:id", categoriesHandler.GetByID)
	api.GET("/categories/:id/posts", postsHandler.ListByCategory)
	api.POST("/categories", requireAuth, requireAdmin, categoriesHandler.Create)
	api.PUT("/categories/:id", requireAuth, requireAdmin, categoriesHandler.Update)
	api.DELETE("/categories/:id", requireAuth, requireAdmin, categoriesHandler.Delete)

	// comments: nested under their post; writes need an authenticated user
	api.GET("/posts/:postId/comments", commentsHandler.ListByPost)
	api.GET("/posts/:postId/comments/:commentId", commentsHandler.GetByID)
	api.POST("/posts/:postId/comments", requireAuth, commentsHandler.Create)
	api.PUT("/posts/:postId/comments/:commentId", requireAuth, commentsHandler.Update)
	api.DELETE("/posts/:postId/comments/:commentId", requireAuth, commentsHandler.Delete)

	return r
}
