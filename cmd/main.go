package main

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/bahriwassim/zishop1-sub000/internal/commission"
	"github.com/bahriwassim/zishop1-sub000/internal/handler"
	"github.com/bahriwassim/zishop1-sub000/internal/middleware"
	"github.com/bahriwassim/zishop1-sub000/internal/notify"
	"github.com/bahriwassim/zishop1-sub000/internal/order"
	"github.com/bahriwassim/zishop1-sub000/internal/seed"
	"github.com/bahriwassim/zishop1-sub000/internal/store"
	"github.com/bahriwassim/zishop1-sub000/internal/store/gormstore"
	"github.com/bahriwassim/zishop1-sub000/internal/store/memory"
	"github.com/bahriwassim/zishop1-sub000/pkg/config"
	"github.com/bahriwassim/zishop1-sub000/pkg/database"
	"github.com/bahriwassim/zishop1-sub000/pkg/jwtutil"
	"github.com/bahriwassim/zishop1-sub000/pkg/logger"
	"github.com/bahriwassim/zishop1-sub000/prometheus"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	if err := logger.InitLogger(cfg); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	log.Info("Starting zishop order service...", cfg.LogConfig()...)

	jwtutil.Initialize(&cfg.JWT)

	// Storage backend
	var (
		s  store.Store
		db *gorm.DB
	)
	if cfg.DB.Driver == config.DriverMemory {
		s = memory.New()
		log.Info("Using in-memory store")
	} else {
		db, err = database.Open(&cfg.DB)
		if err != nil {
			log.Fatal("Failed to initialize database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			log.Fatal("Failed to migrate database", zap.Error(err))
		}
		s = gormstore.New(db, cfg.DB.Timeout)
		log.Info("Database connection established", zap.String("driver", cfg.DB.Driver))
	}

	// Notification emitters
	notifiers := notify.Multi{notify.NewLog(log)}
	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), cfg.Notify.Timeout)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("Redis is not reachable, notifications will be retried per event", zap.Error(err))
		}
		cancel()
		notifiers = append(notifiers, notify.NewRedis(rdb, cfg.Redis.ChannelPrefix))
		log.Info("Redis notifications enabled", zap.String("addr", cfg.Redis.Addr))
	}

	engine, err := order.NewEngine(s,
		commission.Rates{
			Merchant: cfg.Commission.Merchant,
			Operator: cfg.Commission.Operator,
			Hotel:    cfg.Commission.Hotel,
		},
		order.WithNotifier(notifiers),
		order.WithNotifyTimeout(cfg.Notify.Timeout),
		order.WithLogger(log),
	)
	if err != nil {
		log.Fatal("Failed to create order engine", zap.Error(err))
	}

	if cfg.SeedDemo {
		if err := seed.Load(logger.WithContext(context.Background(), log), s); err != nil {
			log.Fatal("Failed to load demo data", zap.Error(err))
		}
	}

	// Initialize Echo framework
	e := echo.New()
	e.HideBanner = true

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(prometheus.MetricsMiddleware())

	e.GET("/metrics", echo.WrapHandler(prometheus.GetPrometheusHandler()))
	handler.New(s, engine).Register(e)

	go func() {
		log.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Backends close only after the server has drained in-flight requests.
	ops := map[string]gfshutdown.Operation{
		"http-server": func(ctx context.Context) error {
			log.Info("Shutting down server")
			err := e.Shutdown(ctx)
			if rdb != nil {
				err = errors.Join(err, rdb.Close())
			}
			if db != nil {
				err = errors.Join(err, database.Close(db))
			}
			return err
		},
	}

	wait := gfshutdown.GracefulShutdown(context.Background(), cfg.Server.ShutdownTimeout, ops)
	exitCode := <-wait
	log.Info("Server exited", zap.Int("code", exitCode))
	_ = log.Sync()
	os.Exit(exitCode)
}
