package main

import (
	"context"
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
	"go.uber.org/zap"

	_ "github.com/HemanthRaj0C/Timetable-Generator-Backend/api/swagger"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/handler"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/middleware"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/repository"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/internal/service"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/cache"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/config"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/database"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/logger"
	corsmiddleware "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/middleware/cors"
	reqidmiddleware "github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/middleware/requestid"
	"github.com/HemanthRaj0C/Timetable-Generator-Backend/pkg/storage"
)

// @title Timetable Generator API
// @version 1.0.0
// @description Backend for course and staff management with automatic weekly schedule generation
// @BasePath /api/v1
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	var cacheRepo *repository.CacheRepository
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
			defer cacheRepo.Close() //nolint:errcheck
		}
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cacheRepo != nil {
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
	}

	courseRepo := repository.NewCourseRepository(db)
	staffRepo := repository.NewStaffRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	courseSvc := service.NewCourseService(courseRepo, validate, logr)
	staffSvc := service.NewStaffService(staffRepo, courseRepo, validate, logr)
	timetableSvc := service.NewTimetableService(
		timetableRepo,
		courseRepo,
		staffRepo,
		cacheSvc,
		metricsSvc,
		service.GeneratorOptions{AllowConsecutiveSameCourse: cfg.Generator.AllowConsecutiveSameCourse},
		validate,
		logr,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		fileStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(timetableRepo, courseRepo, staffRepo, fileStore, signer, service.ExportServiceConfig{
			APIPrefix:       cfg.APIPrefix,
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			Workers:         cfg.Exports.WorkerConcurrency,
			Retries:         cfg.Exports.WorkerRetries,
		}, logr)
		exportSvc.Start(ctx)
		defer exportSvc.Stop()
	}

	courseHandler := handler.NewCourseHandler(courseSvc)
	staffHandler := handler.NewStaffHandler(staffSvc)
	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		courses := api.Group("/courses")
		{
			courses.GET("", courseHandler.List)
			courses.POST("", courseHandler.Create)
			courses.GET("/:id", courseHandler.Get)
			courses.PUT("/:id", courseHandler.Update)
			courses.DELETE("/:id", courseHandler.Delete)
		}

		staff := api.Group("/staff")
		{
			staff.GET("", staffHandler.List)
			staff.POST("", staffHandler.Create)
			staff.GET("/:id", staffHandler.Get)
			staff.PUT("/:id", staffHandler.Update)
			staff.DELETE("/:id", staffHandler.Delete)
			staff.POST("/:id/courses", staffHandler.AssignCourse)
			staff.DELETE("/:id/courses/:courseId", staffHandler.RemoveCourse)
		}

		timetables := api.Group("/timetables")
		{
			timetables.GET("", timetableHandler.List)
			timetables.POST("", timetableHandler.Create)
			timetables.GET("/:id", timetableHandler.Get)
			timetables.PUT("/:id", timetableHandler.Update)
			timetables.DELETE("/:id", timetableHandler.Delete)
			timetables.POST("/:id/generate", timetableHandler.Generate)
			timetables.PUT("/:id/slots/:dayIndex/:slotIndex", timetableHandler.UpdateSlot)
		}

		if exportSvc != nil {
			exportHandler := handler.NewExportHandler(exportSvc)
			api.POST("/timetables/:id/exports", exportHandler.Create)
			api.GET("/exports/:jobId", exportHandler.Status)
			api.GET("/exports/download", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
}
