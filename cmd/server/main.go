package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/voycebutler18/spilkz-sub001/internal/cache"
	"github.com/voycebutler18/spilkz-sub001/internal/clipstore"
	"github.com/voycebutler18/spilkz-sub001/internal/config"
	"github.com/voycebutler18/spilkz-sub001/internal/database"
	"github.com/voycebutler18/spilkz-sub001/internal/feed"
	"github.com/voycebutler18/spilkz-sub001/internal/handlers"
	"github.com/voycebutler18/spilkz-sub001/internal/logger"
	"github.com/voycebutler18/spilkz-sub001/internal/middleware"
	"github.com/voycebutler18/spilkz-sub001/internal/realtime"
	"github.com/voycebutler18/spilkz-sub001/internal/session"
	"github.com/voycebutler18/spilkz-sub001/internal/storage"
	"github.com/voycebutler18/spilkz-sub001/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	cfg := config.Load()

	if err := logger.Initialize(cfg.LogLevel, cfg.LogFile); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Close()

	logger.Log.Info("=== Splikz feed server starting ===")

	// Tracing (optional)
	tp, err := telemetry.InitTracer(telemetry.Config{
		ServiceName:  "splikz-feed",
		Environment:  cfg.Environment,
		OTLPEndpoint: cfg.OTLPEndpoint,
		Enabled:      cfg.TracingEnabled,
		SamplingRate: cfg.SamplingRate,
	})
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer telemetry.Shutdown(tp)

	// Database
	if err := database.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Session seed storage: Redis in production; an in-memory store keeps
	// single-node development working when Redis is absent.
	var seedStore session.SeedStore
	redisClient, err := cache.NewRedisClient(cfg.RedisHost, cfg.RedisPort, cfg.RedisPassword)
	if err != nil {
		logger.WarnWithFields("Redis unavailable, session seeds held in memory", err)
		seedStore = session.NewMemorySeedStore()
	} else {
		defer redisClient.Close()
		seedStore = session.NewRedisSeedStore(redisClient)
	}
	seeds := session.NewProvider(seedStore)

	// Media storage
	mediaStorage, err := storage.NewS3MediaStorage(cfg.AWSRegion, cfg.AWSBucket, cfg.CDNBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}
	if err := mediaStorage.CheckBucketAccess(context.Background()); err != nil {
		logger.WarnWithFields("S3 bucket access failed, uploads will fail", err)
	}

	// Feed composition over the clip store
	store := clipstore.NewGormStore(database.DB)
	composer := feed.NewComposer(store)

	// Counter fanout hub
	hub := realtime.NewHub()
	hub.Run()
	defer hub.Stop()

	// Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.GinLoggerMiddleware())
	r.Use(middleware.MetricsMiddleware())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("splikz-feed"))
	}
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"} // Configure properly for production
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "X-Session-ID", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Session-ID", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := handlers.New(composer, seeds, store, mediaStorage, hub)
	h.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Log.Info("🎬 Splikz feed server listening on port " + cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	logger.Log.Info("Server exited")
}
