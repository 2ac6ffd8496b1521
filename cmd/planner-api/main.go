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
	"go.uber.org/zap"

	_ "github.com/noah-isme/lesson-planner-api/api/swagger"
	"github.com/noah-isme/lesson-planner-api/internal/handler"
	"github.com/noah-isme/lesson-planner-api/internal/middleware"
	"github.com/noah-isme/lesson-planner-api/internal/repository"
	"github.com/noah-isme/lesson-planner-api/internal/service"
	"github.com/noah-isme/lesson-planner-api/pkg/cache"
	"github.com/noah-isme/lesson-planner-api/pkg/config"
	"github.com/noah-isme/lesson-planner-api/pkg/database"
	"github.com/noah-isme/lesson-planner-api/pkg/export"
	"github.com/noah-isme/lesson-planner-api/pkg/jobs"
	"github.com/noah-isme/lesson-planner-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/lesson-planner-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/lesson-planner-api/pkg/middleware/requestid"
	"github.com/noah-isme/lesson-planner-api/pkg/storage"
)

// @title Lesson Planner API
// @version 1.0.0
// @description Cycle-aware lesson planning for a single teacher.
// @BasePath /
// @schemes http

const shutdownTimeout = 10 * time.Second

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		// the calendar cache is optional, fall back to reading settings from postgres
		logr.Warn("redis unavailable, settings cache disabled", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Settings.CacheTTL, logr, cfg.Settings.CacheEnabled && redisClient != nil)

	subjectRepo := repository.NewSubjectRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	noteRepo := repository.NewNoteRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	todoRepo := repository.NewTodoRepository(db)
	attachments := service.AttachmentSources{Notes: noteRepo, Resources: resourceRepo, Todos: todoRepo}

	settingsSvc := service.NewSettingsService(
		repository.NewSettingsRepository(db),
		repository.NewExclusionRepository(db),
		cacheSvc,
		cfg.Settings.CacheTTL,
		service.SettingsDefaults{
			PeriodsPerDay:   cfg.Planner.PeriodsPerDay,
			CycleLength:     cfg.Planner.CycleLength,
			CycleStartDate:  cfg.Planner.CycleStartDate,
			CurrentYear:     cfg.Planner.CurrentYear,
			CurrentSemester: cfg.Planner.CurrentSemester,
		},
		validate,
		logr,
	)
	if _, _, err := settingsSvc.Calendar(ctx); err != nil {
		logr.Error("cycle calendar is not usable, week and cycle-day requests will fail until settings are fixed", zap.Error(err))
	}

	weekSvc := service.NewWeekService(settingsSvc, lessonRepo, subjectRepo, attachments, metrics, logr, cfg.Planner.FetchConcurrency)
	lessonSvc := service.NewLessonService(lessonRepo, subjectRepo, settingsSvc, attachments, validate, logr)
	itemSvc := service.NewLessonItemService(lessonRepo, noteRepo, resourceRepo, todoRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	timetableSvc := service.NewTimetableService(repository.NewTimetableRepository(db), repository.NewPeriodRepository(db), subjectRepo, settingsSvc, validate, logr)

	files, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return fmt.Errorf("init export storage: %w", err)
	}
	exportSvc := service.NewExportService(
		weekSvc,
		files,
		storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL),
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		metrics,
		logr,
		export.NewCSVExporter(csvOptions(cfg.Exports)...),
		export.NewPDFExporter(),
	)

	housekeeping := jobs.NewRunner("housekeeping", housekeepingHandler(exportSvc, cfg.Exports.SignedURLTTL, logr), jobs.RunnerConfig{
		Workers:    1,
		RetryDelay: 30 * time.Second,
		Logger:     logr,
	})
	housekeeping.Start(ctx)
	defer housekeeping.Stop()
	if err := housekeeping.Every(taskExportCleanup, cfg.Exports.SignedURLTTL); err != nil {
		return fmt.Errorf("schedule export cleanup: %w", err)
	}

	checks := map[string]handler.Pinger{"postgres": db}
	if redisClient != nil {
		checks["redis"] = handler.PingFunc(func(ctx context.Context) error { return redisClient.Ping(ctx).Err() })
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.Use(middleware.WithResponseMeta())

	registerRoutes(r, cfg.APIPrefix, handlers{
		week:      handler.NewWeekHandler(weekSvc, exportSvc),
		lessons:   handler.NewLessonHandler(lessonSvc),
		items:     handler.NewLessonItemHandler(itemSvc),
		settings:  handler.NewSettingsHandler(settingsSvc),
		subjects:  handler.NewSubjectHandler(subjectSvc),
		timetable: handler.NewTimetableHandler(timetableSvc),
		metrics:   handler.NewMetricsHandler(metrics, checks),
	}, cfg.Env != config.EnvProduction)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func csvOptions(cfg config.ExportsConfig) []export.CSVOption {
	var opts []export.CSVOption
	if cfg.CSVBOM {
		opts = append(opts, export.WithBOM())
	}
	if r := []rune(cfg.CSVDelimiter); len(r) == 1 && r[0] != ',' {
		opts = append(opts, export.WithComma(r[0]))
	}
	return opts
}

const taskExportCleanup = "exports.cleanup"

// housekeepingHandler runs background maintenance tasks.
func housekeepingHandler(exports *service.ExportService, ttl time.Duration, logr *zap.Logger) jobs.Handler {
	return func(ctx context.Context, task jobs.Task) error {
		switch task.Name {
		case taskExportCleanup:
			removed, err := exports.Cleanup(ttl)
			if err != nil {
				return fmt.Errorf("export cleanup: %w", err)
			}
			if len(removed) > 0 {
				logr.Info("expired exports removed", zap.Int("count", len(removed)))
			}
			return nil
		default:
			return fmt.Errorf("unknown task %q", task.Name)
		}
	}
}
