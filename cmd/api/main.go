package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/planhub/planhub/internal/config"
	"github.com/planhub/planhub/internal/db"
	httpx "github.com/planhub/planhub/internal/http"
	"github.com/planhub/planhub/internal/observability"
	"github.com/planhub/planhub/internal/session"
)

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	ctx := context.Background()

	// tracing is optional; without an endpoint spans are simply dropped
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(ctx, "planner", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				tctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(tctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	initCtx, cancel := config.WithTimeout(10 * time.Second)

	err = db.InitSchema(initCtx, pool)

	if err == nil {
		err = db.EnsureSeedUser(initCtx, pool, cfg)
	}

	cancel()

	if err != nil {
		log.Error("db init failed", "err", err)
		os.Exit(1)
	}

	sessions := newSessionStore(cfg, log)

	router := httpx.NewRouter(pool, sessions, cfg)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		sctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(sctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func newSessionStore(cfg config.Config, log *slog.Logger) session.Store {
	if cfg.SessionBackend == "redis" {
		store := session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.SessionTTL)

		pctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		if err := store.Ping(pctx); err != nil {
			log.Error("redis ping failed", "err", err)
			os.Exit(1)
		}

		log.Info("sessions backed by redis", "addr", cfg.RedisAddr)

		return store
	}

	return session.NewMemoryStore(cfg.SessionTTL)
}
