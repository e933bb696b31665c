package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/valenante/alef-gateway/internal/api"
	"github.com/valenante/alef-gateway/internal/cache"
	"github.com/valenante/alef-gateway/internal/config"
	"github.com/valenante/alef-gateway/internal/registry"
	"github.com/valenante/alef-gateway/internal/reports"
	"github.com/valenante/alef-gateway/internal/stats"
	"github.com/valenante/alef-gateway/internal/storage"
	"github.com/valenante/alef-gateway/internal/tenant"
	"github.com/valenante/alef-gateway/internal/upstream"
	"github.com/valenante/alef-gateway/pkg/logger"
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	srvLog := logger.WithComponent("server")
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis backs both the session store and the stats cache; the gateway
	// degrades to in-memory sessions and uncached stats without it.
	var redisClient *redis.Client
	if cfg.Cache.Enabled {
		client, err := cache.NewRedisClient(cfg.Cache)
		if err != nil {
			srvLog.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		redisClient = client
		defer redisClient.Close()
	}

	sessionStore := tenant.NewMemoryStore()
	statsCache := cache.NewNoopStatsCache()
	if redisClient != nil {
		sessionStore = tenant.NewRedisStore(redisClient, time.Duration(cfg.Cache.SessionTTLSeconds)*time.Second)
		statsCache = cache.NewStatsCache(redisClient, cache.StatsTTL(cfg.Cache))
	}

	var registryRepo *registry.Repository
	if cfg.Registry.Enabled {
		db, err := registry.NewDB(cfg.Registry)
		if err != nil {
			srvLog.Fatal().Err(err).Msg("Failed to connect to tenant registry")
		}
		defer db.Close()
		registryRepo, err = registry.NewRepository(db)
		if err != nil {
			srvLog.Fatal().Err(err).Msg("Failed to prepare tenant registry")
		}
	}

	var archive storage.ObjectStorage
	if cfg.Archive.Enabled {
		minioArchive, err := storage.NewMinioArchive(cfg.Archive)
		if err != nil {
			srvLog.Fatal().Err(err).Msg("Failed to configure export archive")
		}
		archive = minioArchive
	}

	backend := upstream.NewClient(cfg.Upstream)

	var registrar tenant.Registrar
	if registryRepo != nil {
		registrar = registryRepo
	}
	tenants := tenant.NewService(sessionStore, backend, registrar)

	policy := stats.ErrorPolicySuppress
	if cfg.Stats.PropagateErrors {
		policy = stats.ErrorPolicyPropagate
	}
	aggregator := stats.NewAggregator(backend, statsCache, policy)
	cajaBuilder := reports.NewBuilder(backend)

	router := api.NewRouter(api.Deps{
		Tenants:  tenants,
		Ventas:   backend,
		Stats:    aggregator,
		Caja:     cajaBuilder,
		Registry: registryRepo,
		Archive:  archive,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		srvLog.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvLog.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	srvLog.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srvLog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	srvLog.Info().Msg("Server exiting")
}
