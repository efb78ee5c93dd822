package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"campusattend/internal/aiclient"
	"campusattend/internal/attendance"
	"campusattend/internal/auth"
	"campusattend/internal/config"
	"campusattend/internal/handler"
	"campusattend/internal/httpmiddleware"
	"campusattend/internal/leave"
	"campusattend/internal/queue"
	"campusattend/internal/roster"
	"campusattend/internal/store"
	"campusattend/internal/timetable"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	db, err := store.NewDB(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		if db == nil {
			return fmt.Errorf("db open failed: %w", err)
		}
		log.Printf("warning: db not reachable: %v", err)
	}
	defer db.Close()
	if err := store.Migrate(context.Background(), db.Client); err != nil {
		log.Printf("warning: migrate failed: %v", err)
	}

	redisClient := store.NewRedis(cfg.RedisAddr, cfg.RedisPassword)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "campus:detections")
	}

	rosterRepo := roster.NewRepository(db.Client)
	if cfg.BootstrapAdminID != "" && cfg.BootstrapAdminPassword != "" {
		if err := bootstrapPrincipal(context.Background(), rosterRepo, cfg); err != nil {
			log.Printf("warning: bootstrap principal failed: %v", err)
		}
	}
	attRepo := attendance.NewRepository(db.Client)
	att := attendance.NewService(attRepo, rosterRepo, cfg.DedupWindow)
	ttRepo := timetable.NewRepository(db.Client)
	leaveRepo := leave.NewRepository(db.Client)
	ai := aiclient.New(cfg.AIServiceURL, cfg.AIServiceKey, cfg.AISkip)

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		dbHealthy := db.Client.PingContext(c.Request.Context()) == nil
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "db": dbHealthy})
	})

	h := handler.New(cfg, rosterRepo, att, ttRepo, leaveRepo, ai, q)
	h.Register(r)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Give outstanding requests 10 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// bootstrapPrincipal seeds the first account so a fresh deployment has
// someone who can log in and provision the rest of the staff. It only
// runs while the staff table is empty.
func bootstrapPrincipal(ctx context.Context, repo *roster.Repository, cfg config.App) error {
	n, err := repo.CountStaff(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	hash, err := roster.HashPassword(cfg.BootstrapAdminPassword)
	if err != nil {
		return err
	}
	principal := roster.Staff{
		StaffID:     cfg.BootstrapAdminID,
		Name:        "Administrator",
		Designation: auth.RolePrincipal,
	}
	if err := repo.CreateStaff(ctx, principal, hash); err != nil {
		return err
	}
	log.Printf("bootstrap principal %s created", cfg.BootstrapAdminID)
	return nil
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		// Only add HSTS in production
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}
