package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/timetable-api/api/swagger"
	"github.com/noah-isme/timetable-api/internal/handler"
	"github.com/noah-isme/timetable-api/internal/middleware"
	"github.com/noah-isme/timetable-api/internal/repository"
	"github.com/noah-isme/timetable-api/internal/service"
	"github.com/noah-isme/timetable-api/pkg/cache"
	"github.com/noah-isme/timetable-api/pkg/config"
	"github.com/noah-isme/timetable-api/pkg/database"
	"github.com/noah-isme/timetable-api/pkg/export"
	"github.com/noah-isme/timetable-api/pkg/jobs"
	"github.com/noah-isme/timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/timetable-api/pkg/middleware/requestid"
)

// @title Timetable API
// @version 1.0.0
// @description Automatic timetable generation and analysis for academic batches
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Scheduler.PreviewCacheTTL, logr, false)
	} else {
		defer redisClient.Close() //nolint:errcheck
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Scheduler.PreviewCacheTTL, logr, cfg.Redis.CacheEnabled)
	}

	dataRepo := repository.NewSchedulingDataRepository(db)
	timetableRepo := repository.NewTimetableRepository(db)

	validate := validator.New()

	var generatorSvc *service.TimetableGeneratorService
	invalidationQueue := jobs.NewQueue("cache-invalidation", func(ctx context.Context, job jobs.Job) error {
		batchID, ok := job.Payload.(int64)
		if !ok || generatorSvc == nil {
			return nil
		}
		return generatorSvc.InvalidateBatchCaches(ctx, batchID)
	}, jobs.QueueConfig{Workers: 1, Logger: logr})

	generatorSvc = service.NewTimetableGeneratorService(dataRepo, timetableRepo, cacheSvc, metricsSvc, invalidationQueue, validate, logr, service.TimetableGeneratorConfig{
		DefaultAcademicYear: cfg.Scheduler.DefaultAcademicYear,
		DefaultSemester:     cfg.Scheduler.DefaultSemester,
		MaxOptions:          cfg.Scheduler.MaxOptions,
		PreviewCacheTTL:     cfg.Scheduler.PreviewCacheTTL,
	})
	analysisSvc := service.NewScheduleAnalysisService(dataRepo, timetableRepo, cacheSvc, logr, cfg.Scheduler.AnalysisCacheTTL)
	timetableSvc := service.NewTimetableService(dataRepo, timetableRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr, cfg.Exports.Title)

	invalidationQueue.Start(context.Background())
	defer invalidationQueue.Stop()

	scope := handler.ScopeDefaults{
		AcademicYear: cfg.Scheduler.DefaultAcademicYear,
		Semester:     cfg.Scheduler.DefaultSemester,
	}
	schedulerHandler := handler.NewSchedulerHandler(generatorSvc, analysisSvc, scope)
	timetableHandler := handler.NewTimetableHandler(timetableSvc, scope)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		batches := api.Group("/batches/:id")
		batches.GET("/timetable", timetableHandler.Get)
		if cfg.Exports.Enabled {
			batches.GET("/timetable/export", timetableHandler.Export)
		}
		batches.POST("/timetable/generate", schedulerHandler.Generate)
		batches.POST("/timetable/generate-multiple", schedulerHandler.GenerateMultiple)
		batches.GET("/timetable/analyze", schedulerHandler.Analyze)
		batches.GET("/timetable/preview", schedulerHandler.Preview)
		batches.GET("/timetable/suggestions", schedulerHandler.Suggestions)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
