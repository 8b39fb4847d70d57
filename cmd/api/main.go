package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-museum-ticket-booking/internal/api"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/api/handler"
	custommiddleware "github.com/sanosuguru/go-museum-ticket-booking/internal/api/middleware"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/application"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/availability"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/config"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/gateway"
	redisinfra "github.com/sanosuguru/go-museum-ticket-booking/internal/infrastructure/redis"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/jobs"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/pkg/metrics"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/session"
	"github.com/sanosuguru/go-museum-ticket-booking/internal/worker"
)

func main() {
	cfg := config.Load()
	defer logger.Sync()

	m := metrics.Init()

	// チケットゲートウェイクライアント
	httpClient := &http.Client{Timeout: cfg.Gateway.Timeout}
	gw := gateway.NewClient(&cfg.Gateway, httpClient, m)

	// Redisは任意（無効時は共有スナップショットなしで動く）
	var snapshotStore availability.SnapshotStore
	if cfg.Redis.Enabled {
		redisClient := redisinfra.NewClient(&cfg.Redis)
		pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisinfra.Ping(pingCtx, redisClient); err != nil {
			logger.Fatal("Redis接続確認に失敗", zap.Error(err))
		}
		cancel()
		snapshotStore = redisinfra.NewAvailabilityStore(redisClient)
		logger.Info("Redisスナップショット有効", zap.String("addr", cfg.Redis.Addr()))
	}

	// セッション管理
	factory := func(id string) *application.BookingSession {
		pf := availability.NewPrefetcher(gw, snapshotStore, cfg.Warmup.SnapshotTTL, m)
		return application.NewBookingSession(id, gw, pf, m)
	}
	manager := session.NewManager(factory, m)

	cleaner := worker.NewExpiredSessionCleaner(manager, cfg.Session.CleanupInterval, cfg.Session.TTL)
	cleanerCtx, cancelCleaner := context.WithCancel(context.Background())
	go cleaner.Start(cleanerCtx)

	// ウォームアップワーカー（Redis必須）
	var warmupRunner *jobs.Runner
	if cfg.Warmup.Enabled && cfg.Redis.Enabled {
		asynqClient := asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer asynqClient.Close()

		processor := jobs.NewProcessor(gw, snapshotStore, asynqClient, cfg.Warmup.SnapshotTTL, cfg.Warmup.Concurrency)
		runner, err := jobs.NewRunner(&cfg.Redis, &cfg.Warmup, processor)
		if err != nil {
			logger.Fatal("ウォームアップワーカーの構築に失敗", zap.Error(err))
		}
		if err := runner.Start(); err != nil {
			logger.Fatal("ウォームアップワーカーの起動に失敗", zap.Error(err))
		}
		warmupRunner = runner
	}

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	custommiddleware.SetupMiddleware(e)
	e.Use(custommiddleware.PrometheusMiddleware(m))

	// ハンドラー
	sessionHandler := handler.NewSessionHandler(manager)
	selectionHandler := handler.NewSelectionHandler(manager)
	availabilityHandler := handler.NewAvailabilityHandler(manager)
	bookingHandler := handler.NewBookingHandler(manager)
	healthHandler := handler.NewHealthHandler()

	// ルーティング
	v1 := e.Group("/api/v1")
	v1.GET("/health", healthHandler.Check)

	v1.POST("/sessions", sessionHandler.Create)
	v1.GET("/sessions/:id", sessionHandler.Get)
	v1.DELETE("/sessions/:id", sessionHandler.Delete)

	v1.GET("/sessions/:id/ticket-types", selectionHandler.ListTicketTypes)
	v1.PUT("/sessions/:id/ticket", selectionHandler.SetTicket)
	v1.PUT("/sessions/:id/date", selectionHandler.SetDate)
	v1.GET("/sessions/:id/time-slots", selectionHandler.ListTimeSlots)
	v1.PUT("/sessions/:id/time-slot", selectionHandler.SetTimeSlot)
	v1.PUT("/sessions/:id/customer", selectionHandler.SetCustomer)

	v1.GET("/sessions/:id/availability", availabilityHandler.GetMonth)
	v1.POST("/sessions/:id/validate", bookingHandler.Validate)
	v1.POST("/sessions/:id/booking", bookingHandler.Create)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommiddleware.MetricsBasicAuth())

	// サーバー起動
	go func() {
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()
	logger.Info("サーバー起動",
		zap.String("port", cfg.Server.Port),
		zap.String("gateway", cfg.Gateway.BaseURL),
	)

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています")

	if warmupRunner != nil {
		warmupRunner.Shutdown()
	}
	cancelCleaner()
	cleaner.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}
