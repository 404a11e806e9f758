package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/lj-michale/airbyte-platform/docs"
	"github.com/lj-michale/airbyte-platform/internal/config"
	"github.com/lj-michale/airbyte-platform/internal/database"
	"github.com/lj-michale/airbyte-platform/internal/discovery"
	"github.com/lj-michale/airbyte-platform/internal/events"
	"github.com/lj-michale/airbyte-platform/internal/handlers"
	"github.com/lj-michale/airbyte-platform/internal/launcher"
	"github.com/lj-michale/airbyte-platform/internal/scheduler"
)

// @title Airbyte Configuration API
// @version 1.0
// @description API for managing sources, connections and jobs of the data-integration platform.
// @BasePath /api/v1
func main() {
	log.Println("Starting Configuration API Service...")

	cfg := config.Load()

	// --- Database ---
	database.Connect(cfg)

	// --- Catalog Cache (optional) ---
	var catalogCache *discovery.CatalogCache
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		catalogCache = discovery.NewCatalogCache(redisClient, cfg.CatalogTTL)
		log.Printf("Catalog cache enabled (redis at %s, TTL %s)", cfg.RedisAddr, cfg.CatalogTTL)
	}

	// --- Job Event Publisher (optional) ---
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NatsURL != "" {
		nc, err := nats.Connect(cfg.NatsURL,
			nats.Timeout(10*time.Second),
			nats.RetryOnFailedConnect(true),
			nats.MaxReconnects(5),
			nats.ReconnectWait(time.Second))
		if err != nil {
			log.Fatalf("Failed to connect to NATS at %s: %v", cfg.NatsURL, err)
		}
		defer nc.Close()

		js, err := nc.JetStream()
		if err != nil {
			log.Fatalf("Failed to create JetStream context: %v", err)
		}
		publisher, err = events.NewJetStreamPublisher(js)
		if err != nil {
			log.Fatalf("Failed to initialize job event publisher: %v", err)
		}
		log.Printf("Job event publishing enabled (NATS at %s)", cfg.NatsURL)
	}

	// --- Discovery / Jobs ---
	discoveryService := discovery.NewService(discovery.DefaultRegistry(), catalogCache)
	jobStore := launcher.NewJobStore(database.GetDB())
	handlers.Configure(discoveryService, jobStore, publisher)

	// --- Launcher ---
	jobLauncher := launcher.NewLauncher(jobStore, &launcher.ConnectorCheckRunner{Discovery: discoveryService}, publisher, cfg.LauncherPollInterval)
	jobLauncher.Start()

	// --- Scheduler ---
	var schedulerService *scheduler.SchedulerService
	if cfg.SchedulerEnabled {
		schedulerService = scheduler.NewSchedulerService(jobStore, jobStore)
		if err := schedulerService.Start(); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	} else {
		log.Println("Scheduler disabled by configuration.")
	}

	router := setupRouter()

	// --- Graceful Shutdown Handling ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		log.Println("Configuration API Service is shutting down...")
		if schedulerService != nil {
			schedulerService.Stop()
		}
		jobLauncher.Stop()
		os.Exit(0)
	}()

	log.Printf("Starting Configuration API on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		log.Fatalf("Failed to start Configuration API: %v", err)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := router.Group("/api/v1")
	{
		sourceRoutes := v1.Group("/sources")
		{
			sourceRoutes.POST("/", handlers.CreateSource)
			sourceRoutes.GET("/", handlers.ListSources)
			sourceRoutes.GET("/:id", handlers.GetSource)
			sourceRoutes.PUT("/:id", handlers.UpdateSource)
			sourceRoutes.PATCH("/:id", handlers.PatchSource)
			sourceRoutes.DELETE("/:id", handlers.DeleteSource)
			sourceRoutes.POST("/:id/discover_schema", handlers.DiscoverSchema)
			sourceRoutes.POST("/:id/oauth", handlers.InitiateOAuth)
		}

		connectionRoutes := v1.Group("/connections")
		{
			connectionRoutes.POST("/", handlers.CreateConnection)
			connectionRoutes.GET("/", handlers.ListConnections)
			connectionRoutes.GET("/:id", handlers.GetConnection)
			connectionRoutes.PUT("/:id", handlers.UpdateConnection)
			connectionRoutes.DELETE("/:id", handlers.DeleteConnection)
			connectionRoutes.POST("/:id/sync", handlers.SyncConnection)
			connectionRoutes.POST("/:id/reset", handlers.ResetConnection)
		}

		jobRoutes := v1.Group("/jobs")
		{
			jobRoutes.GET("/", handlers.ListJobs)
			jobRoutes.GET("/:id", handlers.GetJob)
			jobRoutes.POST("/:id/cancel", handlers.CancelJob)
		}
	}

	return router
}
