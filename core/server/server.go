package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nuon-api/core/cache"
	"nuon-api/core/config"
	"nuon-api/core/constants"
	"nuon-api/core/controller"
	"nuon-api/core/database"
	appErrors "nuon-api/core/errors"
	"nuon-api/core/events"
	"nuon-api/core/logger"
	"nuon-api/core/middleware"
	"nuon-api/core/queue"
	"nuon-api/core/realtime"
	"nuon-api/core/storage"
	"nuon-api/modules/availability"
	"nuon-api/modules/booking"
	"nuon-api/modules/meeting"
	"nuon-api/modules/notification"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Run loads config, connects backing services, serves HTTP and the task
// worker, and blocks until SIGINT or SIGTERM.
func Run() error {
	cfg, err := config.Init()
	if err != nil {
		return err
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, constants.DefaultTimeout)
		err := db.Migrate(migrateCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var (
		appCache                = cache.NewNoopCache()
		emitter  events.Emitter = events.NoopEmitter{}
		enqueuer queue.Enqueuer
		worker   *queue.Worker
	)
	if cfg.Redis.Enabled {
		appCache = cache.NewCache(cache.NewRedisClient(cfg.Redis))
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := appCache.Ping(pingCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		defer appCache.Close()

		queueClient := queue.NewClient(cfg.Redis)
		defer queueClient.Close()
		enqueuer = queueClient
		emitter = events.NewQueueEmitter(queueClient)
		worker = queue.NewWorker(cfg.Redis)
	} else {
		logger.Warn("Server:Run:RedisDisabled", "effect", "no cache, events or calendar files")
	}

	hub := realtime.NewHub(appCache)
	go hub.Run(ctx)

	e := newEcho(cfg)
	e.GET("/health", healthHandler(db, appCache))

	mw := middleware.NewMiddleware(appCache)
	v1 := e.Group("/api/v1")

	meetings := meeting.Init(cfg)
	slotCache := availability.Init(v1, db, mw, appCache, cfg.Cache.PublicSlotsTTL, meetings, emitter)
	calendarWorker := booking.Init(v1, mw, booking.Deps{
		DB:         db,
		Storage:    storage.New(cfg.Storage),
		Enqueuer:   enqueuer,
		Emitter:    emitter,
		SlotCache:  slotCache,
		PresignTTL: cfg.Storage.PresignTTL,
	})
	eventWorker := notification.Init(v1, db, mw, appCache, hub)

	if worker != nil {
		calendarWorker.Register(worker.Mux)
		eventWorker.Register(worker.Mux)
		if err := worker.Start(); err != nil {
			return fmt.Errorf("start worker: %w", err)
		}
		defer worker.Shutdown()
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		logger.Info("Server:Run:Listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server:Run:Listen", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Server:Run:ShuttingDown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server:Run:Shutdown", "error", err)
	}
	return nil
}

func newEcho(cfg *config.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = controller.HTTPErrorHandler

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))
	e.Use(middleware.RequestLogger())
	return e
}

func healthHandler(db database.Database, c cache.Cache) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		reqCtx, cancel := context.WithTimeout(ctx.Request().Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"database": "ok", "redis": "ok"}
		healthy := true
		if err := db.SQLx().PingContext(reqCtx); err != nil {
			status["database"] = "down"
			healthy = false
		}
		if err := c.Ping(reqCtx); err != nil {
			status["redis"] = "down"
			healthy = false
		}

		if !healthy {
			return controller.NewErrorResponse(http.StatusServiceUnavailable, appErrors.ErrInternalServer, "service degraded", status)
		}
		return ctx.JSON(http.StatusOK, controller.NewSuccessResponse(status, "ok"))
	}
}
