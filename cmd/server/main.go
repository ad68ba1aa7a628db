package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nextfeed/feedapi/internal/api"
	"github.com/nextfeed/feedapi/internal/cache"
	"github.com/nextfeed/feedapi/internal/db"
	"github.com/nextfeed/feedapi/internal/feed"
	"github.com/nextfeed/feedapi/pkg/config"
	"github.com/nextfeed/feedapi/pkg/logging"
	"github.com/nextfeed/feedapi/pkg/telemetry"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()
	logger.Info("Starting feed API server")

	telemetryShutdown, err := telemetry.Init(&cfg.Telemetry)
	if err != nil {
		logger.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer telemetryShutdown()

	redisCache, err := cache.New(&cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisCache != nil {
		defer redisCache.Close()
	}

	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	registry, cachedClient := buildFeeds(cfg, redisCache, database)

	if cfg.Logging.Level == "DEBUG" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	router := api.NewRouter(registry, cachedClient)
	router.SetupRoutes(engine)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		logger.Info("Server starting", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

// buildFeeds wires the feed strategies into the version registry. The cached
// client is returned separately because invalidation goes through it; it is
// nil when Redis is not configured.
func buildFeeds(cfg *config.Config, redisCache *cache.Cache, database *db.DB) (*feed.Registry, *feed.CachedClient) {
	var client feed.Client = feed.NewServiceClient(&cfg.Upstream)

	var cachedClient *feed.CachedClient
	if redisCache != nil {
		cachedClient = feed.NewCachedClient(client, redisCache, &cfg.Cache)
		client = cachedClient
	}

	repo := db.NewRepository(database.DB)
	prefOpts := feed.PreferencesOptions{
		IncludeAllowedTags:       true,
		IncludeBlockedTags:       true,
		IncludeBlockedSources:    true,
		IncludeSourceMemberships: true,
	}

	personalized := feed.NewGenerator(client,
		feed.NewPreferencesConfigGenerator(
			feed.Config{"feed_config_name": "personalise"}, repo, prefOpts),
		"")
	vector := feed.NewGenerator(client,
		feed.NewPreferencesConfigGenerator(
			feed.Config{"feed_config_name": "vector"}, repo, prefOpts),
		"")
	popular := feed.NewGenerator(client,
		feed.NewStaticConfigGenerator(feed.Config{
			"providers": map[string]interface{}{
				"fresh": map[string]interface{}{
					"enable":               true,
					"remove_engaged_posts": true,
					"page_size_fraction":   0.1,
				},
				"engaged": map[string]interface{}{
					"enable":               true,
					"remove_engaged_posts": true,
					"page_size_fraction":   1,
					"fallback_provider":    "fresh",
				},
			},
		}),
		"popular")

	registry := feed.NewRegistry(personalized, map[string]*feed.Generator{
		"1":       personalized,
		"2":       vector,
		"popular": popular,
	})
	return registry, cachedClient
}
