package http

import (
	"context"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/http/handlers"
	"github.com/planhub/planhub/internal/http/middlewares"
	"github.com/planhub/planhub/internal/observability"
	"github.com/planhub/planhub/internal/repo/postgres"
	"github.com/planhub/planhub/internal/session"
)

func NewRouter(pool *pgxpool.Pool, sessions session.Store, cfg config.Config) *gin.Engine {
	if os.Getenv("APP_ENV") != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	promRegistry := prometheus.NewRegistry()
	prom := observability.NewProm(promRegistry)

	// middleware
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.MaxBodyBytes(1 << 20))
	r.Use(middlewares.Metrics(prom))
	r.Use(otelgin.Middleware("planner"))

	sessionMW := middlewares.NewSessionMiddleware(sessions)
	r.Use(sessionMW.Load())

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	healthHandler := handlers.NewHealthHandler(ping)
	r.GET("/healthz", healthHandler.Healthz)
	r.GET("/readyz", healthHandler.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})))

	// wire up repositories
	usersRepo := postgres.NewUsersRepo(pool, prom)
	tasksRepo := postgres.NewTasksRepo(pool, prom)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, sessions, cfg.SessionTTL, prom)
	tasksHandler := handlers.NewTasksHandler(tasksRepo, usersRepo)

	// brute-force guard on the credential endpoints
	loginLimiter := middlewares.NewRateLimiter(10, time.Minute)
	limited := loginLimiter.Middleware(middlewares.KeyByIP)

	r.GET("/", tasksHandler.Home)
	r.GET("/register", authHandler.RegisterPage)
	r.POST("/register", limited, authHandler.Register)
	r.GET("/login", authHandler.LoginPage)
	r.POST("/login", limited, authHandler.Login)
	r.GET("/logout", authHandler.Logout)

	r.POST("/tasks", sessionMW.RequirePage(), tasksHandler.CreateTask)
	r.POST("/tasks/:id/toggle", sessionMW.RequireAction(), tasksHandler.ToggleTask)
	r.POST("/tasks/:id/delete", sessionMW.RequireAction(), tasksHandler.DeleteTask)

	return r
}
