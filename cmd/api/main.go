package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/bloghub/internal/auth"
	"github.com/geocoder89/bloghub/internal/cache"
	"github.com/geocoder89/bloghub/internal/config"
	"github.com/geocoder89/bloghub/internal/db"
	httpx "github.com/geocoder89/bloghub/internal/http"
	"github.com/geocoder89/bloghub/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()

	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)

	if cfg.TracingEnabled {
		shutdownTracer, err := observability.InitTracer(context.Background(), "bloghub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			_ = shutdownTracer(ctx)
		}()
	}

	jwtManager, err := auth.NewManager(cfg.JWTSecret, cfg.TokenTTL())

	if err != nil {
		log.Error("jwt manager init failed", "err", err)
		os.Exit(1)
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	if err := db.EnsureSchema(startupCtx, pool); err != nil {
		cancel()
		log.Error("schema setup failed", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureAdminUser(startupCtx, pool, cfg); err != nil {
		cancel()
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	cancel()

	var redisCache *cache.Redis

	if cfg.RedisAddr != "" {
		redisCache = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, 30*time.Second)

		defer redisCache.Close()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	prom := observability.NewProm(reg)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:   cfg,
		Log:   log,
		Pool:  pool,
		Redis: redisCache,
		JWT:   jwtManager,
		Prom:  prom,
		Reg:   reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)

		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
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
