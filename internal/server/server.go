package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"dbdesigner/internal/config"
	"dbdesigner/internal/database"
	"dbdesigner/internal/handlers"
	"dbdesigner/internal/repositories"
	"dbdesigner/internal/routes"
	"dbdesigner/internal/services"
)

// NewServer wires configuration, storage and routes into an http.Server.
// The returned server closes its database pool and Redis client on Shutdown.
func NewServer(ctx context.Context) (*http.Server, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, &cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := database.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	// Export caching is optional; without REDIS_ADDR every export is rendered.
	var exportCache services.ExportCache
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(ctx).Err(); err != nil {
			pool.Close()
			_ = rdb.Close()
			return nil, fmt.Errorf("connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Println("Connected to Redis successfully")
		exportCache = repositories.NewExportCacheRepository(rdb, cfg.ExportCacheTTL)
	}

	// Dependency injection
	projectRepo := repositories.NewProjectRepository(pool)
	projectService := services.NewProjectService(projectRepo, exportCache)
	projectHandler := handlers.NewProjectHandler(projectService)

	// Initialize Gin router
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	routes.RegisterRoutes(router, cfg.AccessTokenSecret, projectHandler)

	// Create and configure the HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	server.RegisterOnShutdown(func() {
		pool.Close()
		if rdb != nil {
			if err := rdb.Close(); err != nil {
				log.Printf("failed to close Redis client: %v", err)
			}
		}
	})

	return server, nil
}
