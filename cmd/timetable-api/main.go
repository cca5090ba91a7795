package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/campustack/timetable-api/internal/engine"
	"github.com/campustack/timetable-api/internal/handler"
	internalmiddleware "github.com/campustack/timetable-api/internal/middleware"
	"github.com/campustack/timetable-api/internal/repository"
	"github.com/campustack/timetable-api/internal/service"
	"github.com/campustack/timetable-api/pkg/cache"
	"github.com/campustack/timetable-api/pkg/config"
	"github.com/campustack/timetable-api/pkg/database"
	"github.com/campustack/timetable-api/pkg/export"
	"github.com/campustack/timetable-api/pkg/jobs"
	"github.com/campustack/timetable-api/pkg/logger"
	corsmiddleware "github.com/campustack/timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campustack/timetable-api/pkg/middleware/requestid"
	"github.com/campustack/timetable-api/pkg/storage"
)

// @title CampuStack Timetable API
// @version 1.0.0
// @description Heuristic weekly timetable generation for academic departments
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

	// without postgres the service still serves generation and previews
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Warnw("postgres unavailable, persistence disabled", "error", err)
		db = nil
	}
	if db != nil {
		defer db.Close() //nolint:errcheck
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, detail cache disabled", "error", err)
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	driver := engine.NewDriver(engine.Config{
		Attempts:        cfg.Generator.Attempts,
		MinAttempts:     cfg.Generator.MinAttempts,
		GoodEnoughScore: cfg.Generator.GoodEnoughScore,
		Seed:            cfg.Generator.Seed,
	}, logr)

	validate := validator.New()
	timetableSvcCfg := service.TimetableServiceConfig{
		ProposalTTL:  cfg.Generator.ProposalTTL,
		CacheEnabled: cfg.Cache.Enabled && redisClient != nil,
		ReportTTL:    cfg.Cache.ReportTTL,
	}

	var timetableSvc *service.TimetableService
	var timetableRepo *repository.TimetableRepository
	var slotRepo *repository.TimetableSlotRepository
	if db != nil {
		timetableRepo = repository.NewTimetableRepository(db)
		slotRepo = repository.NewTimetableSlotRepository(db)
		timetableSvc = service.NewTimetableService(timetableRepo, slotRepo, db, driver, cacheRepo, metricsSvc, validate, logr, timetableSvcCfg)
	} else {
		timetableSvc = service.NewTimetableService(nil, nil, nil, driver, cacheRepo, metricsSvc, validate, logr, timetableSvcCfg)
	}

	timetableHandler := handler.NewTimetableHandler(timetableSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	var exportHandler *handler.ExportHandler
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Exports.Enabled && db != nil {
		exportJobRepo := repository.NewExportJobRepository(db)
		store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc := service.NewExportService(
			timetableRepo,
			slotRepo,
			store,
			signer,
			service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
			logr,
			export.NewCSVExporter(),
			export.NewPDFExporter(),
		)
		worker := service.NewExportWorker(exportJobRepo, exportSvc, cfg.Exports.WorkerRetries, logr)
		queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()

		exportJobSvc := service.NewExportJobService(exportJobRepo, timetableRepo, queue, exportSvc, logr, service.ExportJobServiceConfig{
			ResultTTL:       cfg.Exports.SignedURLTTL,
			CleanupInterval: cfg.Exports.CleanupInterval,
			MaxRetries:      cfg.Exports.WorkerRetries,
		})
		exportJobSvc.RecoverPendingJobs(ctx)
		exportJobSvc.StartCleanup(ctx)
		exportHandler = handler.NewExportHandler(exportJobSvc)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if db == nil || db.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	{
		api.POST("/timetables/generate", timetableHandler.Generate)
		api.GET("/timetables/proposals/:id", timetableHandler.Proposal)
		api.POST("/timetables/import", timetableHandler.ImportRows)
		api.POST("/timetables", timetableHandler.Save)
		api.GET("/timetables", timetableHandler.List)
		api.GET("/timetables/:id", timetableHandler.Get)
		api.POST("/timetables/:id/publish", timetableHandler.Publish)
		api.DELETE("/timetables/:id", timetableHandler.Delete)

		api.GET("/diagnostics", metricsHandler.Diagnostics)

		if exportHandler != nil {
			api.POST("/export", exportHandler.Create)
			api.GET("/export/jobs/:id", exportHandler.Status)
			api.GET("/export/:token", exportHandler.Download)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
