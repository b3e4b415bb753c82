package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/minsu-dev/board-api/api/swagger"
	"github.com/minsu-dev/board-api/internal/handler"
	"github.com/minsu-dev/board-api/internal/middleware"
	"github.com/minsu-dev/board-api/internal/repository"
	"github.com/minsu-dev/board-api/internal/service"
	"github.com/minsu-dev/board-api/pkg/cache"
	"github.com/minsu-dev/board-api/pkg/config"
	"github.com/minsu-dev/board-api/pkg/database"
	"github.com/minsu-dev/board-api/pkg/logger"
	corsmiddleware "github.com/minsu-dev/board-api/pkg/middleware/cors"
	reqidmiddleware "github.com/minsu-dev/board-api/pkg/middleware/requestid"
	securemiddleware "github.com/minsu-dev/board-api/pkg/middleware/secure"
	"github.com/minsu-dev/board-api/pkg/storage"
)

// @title Board API
// @version 1.0.0
// @description Blog-style board backend with JWT session management
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logr.Sugar().Fatalw("failed to run migrations", "error", err)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	tokenRepo := repository.NewTokenRepository(redisClient, cfg.JWT.RefreshExpiration, cfg.JWT.RefreshGrace)
	defer tokenRepo.Close()

	exportStore, err := storage.NewLocalStorage(cfg.Export.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	downloadSigner := storage.NewSigner(cfg.JWT.Secret, cfg.Export.URLTTL)

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	signer := service.NewTokenSigner(cfg.JWT)

	auditSvc := service.NewAuditService(userRepo, logr)
	auditSvc.Start(ctx)
	defer auditSvc.Stop()

	authSvc := service.NewAuthService(userRepo, tokenRepo, signer, auditSvc, validate, logr, metricsSvc)
	userSvc := service.NewUserService(userRepo, auditSvc, validate, logr)
	postSvc := service.NewPostService(postRepo, validate, logr)
	exportSvc := service.NewExportService(postRepo, exportStore, downloadSigner, logr)
	go exportSvc.CleanupLoop(ctx, cfg.Export.CleanupInterval, cfg.Export.Retention)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	postHandler := handler.NewPostHandler(postSvc)
	exportHandler := handler.NewExportHandler(exportSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(securemiddleware.Headers())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "dependency": "postgres"})
			return
		}
		if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error", "dependency": "redis"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	authGuard := middleware.JWT(authSvc, logr)

	auth := api.Group("/auth")
	{
		auth.POST("/register", userHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/token", authHandler.Token)
		auth.POST("/refresh", authHandler.Refresh)
		auth.POST("/logout", authGuard, authHandler.Logout)
		auth.POST("/logout-all", authGuard, authHandler.LogoutAll)
		auth.GET("/me", authGuard, authHandler.Me)
	}

	posts := api.Group("/posts")
	{
		posts.GET("", postHandler.List)
		posts.GET("/:id", postHandler.Get)
		posts.POST("", authGuard, postHandler.Create)
		posts.PATCH("/:id", authGuard, postHandler.Update)
		posts.DELETE("/:id", authGuard, postHandler.Delete)
	}

	api.GET("/admin/exports/posts", authGuard, exportHandler.ExportPosts)
	api.GET("/downloads/:token", exportHandler.Download)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
