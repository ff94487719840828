package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-timetable-api/api/swagger"
	"github.com/noah-isme/sma-timetable-api/internal/handler"
	internalmiddleware "github.com/noah-isme/sma-timetable-api/internal/middleware"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	"github.com/noah-isme/sma-timetable-api/pkg/cache"
	"github.com/noah-isme/sma-timetable-api/pkg/config"
	"github.com/noah-isme/sma-timetable-api/pkg/database"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
	"github.com/noah-isme/sma-timetable-api/pkg/jobs"
	"github.com/noah-isme/sma-timetable-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
	"github.com/noah-isme/sma-timetable-api/pkg/storage"
)

// @title SMA Timetable API
// @version 1.0.0
// @description Classroom timetable editing, publishing and professor status toggles
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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
		logr.Sugar().Fatalw("failed to connect database", "error", err)
	}
	defer db.Close() //nolint:errcheck

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, logr); err != nil {
			logr.Sugar().Fatalw("failed to migrate database", "error", err)
		}
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc, closeCache := newCacheService(cfg, metricsSvc, logr)
	defer closeCache() //nolint:errcheck
	validate := validator.New()
	tokens := service.NewTokenService(service.TokenConfig{Secret: cfg.JWT.Secret, Expiry: cfg.JWT.Expiration})

	timetableRepo := repository.NewTimetableRepository(db)
	versionRepo := repository.NewTimetableVersionRepository(db)
	statusRepo := repository.NewStatusRequestRepository(db)

	timetableSvc := service.NewTimetableService(timetableRepo, versionRepo, db, cacheSvc, metricsSvc, validate, logr, service.TimetableServiceConfig{
		RevalidateMoves: cfg.Timetable.RevalidateMoves,
	})
	publishedSvc := service.NewPublishedTimetableService(timetableRepo, cacheSvc, cfg.Timetable.ReadCacheTTL, logr)
	statusSvc := service.NewStatusService(timetableRepo, statusRepo, db, cacheSvc, metricsSvc, validate, logr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var exportSvc *service.ExportService
	var snapshotQueue *jobs.Queue
	if cfg.Exports.Enabled {
		objects, err := newObjectStore(ctx, cfg.Exports)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "backend", cfg.Exports.Backend, "error", err)
		}
		signer := storage.NewSignedURLSigner(cfg.JWT.Secret, cfg.Exports.LinkTTL)
		exportSvc = service.NewExportService(publishedSvc, versionRepo, objects, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr, export.NewCSVExporter(export.WithBOM()), export.NewPDFExporter())

		worker := service.NewSnapshotWorker(exportSvc, logr)
		snapshotQueue = jobs.NewQueue("timetable-snapshots", worker.Handle, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			RetryDelay: 2 * time.Second,
			Logger:     logr,
		})
		worker.AttachQueue(snapshotQueue)
		timetableSvc.SetSnapshotScheduler(worker)
		snapshotQueue.Start(ctx)
	}

	if cfg.Timetable.WarmOnStart {
		if err := timetableSvc.Warm(ctx); err != nil {
			logr.Sugar().Warnw("timetable warm start failed", "error", err)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	registerRoutes(api, routeHandlers{
		tokens:    tokens,
		timetable: timetableHandler(timetableSvc, exportSvc),
		published: handler.NewPublishedHandler(publishedSvc),
		status:    handler.NewStatusHandler(statusSvc),
		exports:   exportHandler(exportSvc),
		metrics:   metricsHandler,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("server shutdown", "error", err)
	}
	if snapshotQueue != nil {
		snapshotQueue.Stop()
	}
}

type routeHandlers struct {
	tokens    *service.TokenService
	timetable *handler.TimetableHandler
	published *handler.PublishedHandler
	status    *handler.StatusHandler
	exports   *handler.ExportHandler
	metrics   *handler.MetricsHandler
}

func registerRoutes(api *gin.RouterGroup, h routeHandlers) {
	admins := []models.UserRole{models.RoleAdmin}

	// Public reads.
	api.GET("/published/:year/:group", h.published.Group)
	if h.exports != nil {
		api.GET("/published/:year/:group/export", h.exports.Export)
		api.GET("/snapshots/:token", h.exports.Snapshot)
	}

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(h.tokens))

	secured.GET("/professors/:id/timetable", internalmiddleware.RBAC(string(models.RoleAdmin), internalmiddleware.SelfAccess), h.published.Professor)
	secured.POST("/sessions/:id/status", internalmiddleware.RequireRoles(models.RoleProfessor), h.status.Toggle)

	editor := secured.Group("/timetables")
	editor.Use(internalmiddleware.RequireRoles(admins...))
	editor.POST("/availability", h.timetable.CheckAvailability)
	editor.GET("/:year/:group", h.timetable.Working)
	editor.DELETE("/:year/:group", h.timetable.Delete)
	editor.GET("/:year/:group/state", h.timetable.State)
	editor.GET("/:year/:group/versions", h.timetable.Versions)
	editor.GET("/:year/:group/versions/:version/snapshot", h.timetable.SnapshotLink)
	editor.PUT("/:year/:group/cells/:day/:slot", h.timetable.CommitSession)
	editor.DELETE("/:year/:group/cells/:day/:slot", h.timetable.RemoveSession)
	editor.POST("/:year/:group/move", h.timetable.MoveOrSwap)
	editor.POST("/:year/:group/save", h.timetable.Save)
	editor.POST("/:year/:group/publish", h.timetable.Publish)
	editor.POST("/:year/:group/discard", h.timetable.Discard)
	editor.POST("/:year/:group/release", h.timetable.Release)

	requests := secured.Group("/status-requests")
	requests.Use(internalmiddleware.RequireRoles(admins...))
	requests.GET("", h.status.List)
	requests.POST("/:id/acknowledge", h.status.Acknowledge)

	secured.GET("/metrics/summary", internalmiddleware.RequireRoles(admins...), h.metrics.Summary)
}

func newCacheService(cfg *config.Config, metrics *service.MetricsService, logr *zap.Logger) (*service.CacheService, func() error) {
	ttl := cfg.Timetable.ReadCacheTTL
	if cfg.Cache.Backend != config.CacheBackendMemory {
		client, err := cache.NewRedis(cfg.Redis)
		if err == nil {
			repo := repository.NewCacheRepository(client, cfg.Cache.Namespace, logr)
			return service.NewCacheService(repo, metrics, ttl, logr, true), repo.Close
		}
		logr.Sugar().Warnw("redis unavailable, falling back to in-process cache", "error", err)
	}
	repo := repository.NewMemoryCacheRepository(ttl, cfg.Cache.CleanupInterval)
	return service.NewCacheService(repo, metrics, ttl, logr, true), func() error { return nil }
}

func newObjectStore(ctx context.Context, cfg config.ExportsConfig) (storage.ObjectStore, error) {
	if cfg.Backend != config.ExportsBackendMinio {
		local, err := storage.NewLocalStorage(cfg.StorageDir)
		if err != nil {
			return nil, err
		}
		return local, nil
	}
	store, err := storage.NewMinioStorage(storage.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func timetableHandler(svc *service.TimetableService, exports *service.ExportService) *handler.TimetableHandler {
	if exports == nil {
		return handler.NewTimetableHandler(svc, nil)
	}
	return handler.NewTimetableHandler(svc, exports)
}

func exportHandler(svc *service.ExportService) *handler.ExportHandler {
	if svc == nil {
		return nil
	}
	return handler.NewExportHandler(svc)
}
