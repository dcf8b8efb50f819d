package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-hotel-reservation/internal/api"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/handler"
	"github.com/sanosuguru/go-hotel-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-hotel-reservation/internal/application"
	"github.com/sanosuguru/go-hotel-reservation/internal/config"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/money"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/notification"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/reservation"
	"github.com/sanosuguru/go-hotel-reservation/internal/domain/room"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/locking"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/memory"
	notifyinfra "github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/notification"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-hotel-reservation/internal/infrastructure/settlement"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-hotel-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-hotel-reservation/internal/worker"
)

type repositories struct {
	rooms        room.Repository
	reservations reservation.Repository
	payments     payment.Repository
}

func main() {
	// .env があれば読み込む（本番では環境変数を直接設定する）
	_ = godotenv.Load()

	cfg := config.Load()

	logger.Set(logger.NewWithOptions(logger.Options{
		Env:        cfg.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	}))
	defer logger.Sync()

	m := metrics.Init()

	var (
		repos  repositories
		checks []handler.HealthCheck
	)
	if cfg.Store.UsePostgres() {
		db, err := postgres.NewConnection(&cfg.Database)
		if err != nil {
			logger.Fatal("データベース接続エラー", zap.Error(err))
		}
		defer db.Close()

		if err := postgres.RunMigrations(db.DB, cfg.Store.MigrationsPath); err != nil {
			logger.Fatal("マイグレーションエラー", zap.Error(err))
		}
		repos = repositories{
			rooms:        postgres.NewRoomRepository(db),
			reservations: postgres.NewReservationRepository(db),
			payments:     postgres.NewPaymentRepository(db),
		}
		checks = append(checks, handler.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error {
			return postgres.Ping(ctx, db)
		}})
	} else {
		repos = repositories{
			rooms:        memory.NewRoomRepository(),
			reservations: memory.NewReservationRepository(),
			payments:     memory.NewPaymentRepository(),
		}
	}
	logger.Info("ストアを初期化しました", zap.String("driver", cfg.Store.Driver))

	notifiers := []notification.Notifier{notifyinfra.NewLogNotifier(logger.Get())}
	var roomCache application.RoomCache
	if cfg.Redis.Enabled {
		client, err := redisinfra.NewClient(&cfg.Redis)
		if err != nil {
			logger.Fatal("Redis接続エラー", zap.Error(err))
		}
		defer client.Close()

		roomCache = redisinfra.NewRoomCache(client, cfg.Redis.CacheTTL)
		notifiers = append(notifiers, redisinfra.NewPublisher(client, redisinfra.DefaultEventChannel))
		checks = append(checks, redisHealthCheck(client))
	}

	roomService := application.NewRoomService(repos.rooms, roomCache)
	availabilityService := application.NewAvailabilityService(repos.rooms, repos.reservations)
	notificationService := application.NewNotificationService(repos.rooms, repos.payments, m, notifiers...)
	reservationService := application.NewReservationService(
		repos.rooms, repos.reservations, repos.payments,
		locking.NewLockManager(),
		settlement.NewSimulator(cfg.Reservation.SettlementSuccessRate),
		application.WithLockTimeout(cfg.Reservation.LockTimeout),
		application.WithStaleProcessingAfter(cfg.Worker.StaleProcessingAfter),
		application.WithSurchargeRate(cfg.Reservation.SurchargeRate),
		application.WithCurrency(cfg.Reservation.Currency),
		application.WithMetrics(m),
		application.WithNotifications(notificationService),
	)

	if cfg.Store.RoomsSeedFile != "" {
		if err := provisionRooms(context.Background(), roomService, cfg.Store.RoomsSeedFile); err != nil {
			logger.Fatal("客室シードの投入エラー", zap.Error(err))
		}
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()
	cleaner := worker.NewStalePendingCleaner(reservationService, cfg.Worker.StaleCleanerInterval, cfg.Worker.StalePendingAfter)
	cleaner.Start(ctx)

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	middleware.SetupMiddleware(e)
	e.Use(middleware.PrometheusMiddleware(m))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), middleware.MetricsBasicAuth(cfg.Metrics))

	handler.RegisterRoutes(e, handler.Handlers{
		Room:         handler.NewRoomHandler(roomService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Reservation:  handler.NewReservationHandler(reservationService),
		Payment:      handler.NewPaymentHandler(reservationService),
		Health:       handler.NewHealthHandler(checks...),
	}, middleware.NewRateLimiter(cfg.RateLimit).Middleware())

	go func() {
		logger.Info("サーバーを起動します", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("サーバーをシャットダウンしています...")

	cleaner.Stop()
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
		return
	}

	logger.Info("サーバーが正常にシャットダウンしました")
}

// provisionRooms はシードファイルの客室を登録する。登録済みの客室番号は飛ばす
func provisionRooms(ctx context.Context, svc *application.RoomService, path string) error {
	seeds, err := config.LoadRoomSeeds(path)
	if err != nil {
		return err
	}
	inputs := make([]application.CreateRoomInput, len(seeds))
	for i, s := range seeds {
		inputs[i] = application.CreateRoomInput{
			Number: s.Number, Type: s.Type,
			PricePerNight: money.FromFloat(s.PricePerNight), Capacity: s.Capacity,
		}
	}
	created, err := svc.Provision(ctx, inputs)
	if err != nil {
		return err
	}
	logger.Info("客室シードを投入しました", zap.Int("created", created), zap.Int("total", len(seeds)))
	return nil
}

func redisHealthCheck(client *goredis.Client) handler.HealthCheck {
	return handler.HealthCheck{Name: "redis", Check: func(ctx context.Context) error {
		return redisinfra.Ping(ctx, client)
	}}
}
