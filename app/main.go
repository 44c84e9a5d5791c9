package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"gmao-system/internal/repositories"
	"gmao-system/internal/routes"
	"gmao-system/pkg/config"
	"gmao-system/pkg/database/postgresql"
	apperrors "gmao-system/pkg/errors"
	"gmao-system/pkg/filestorage"
	applogger "gmao-system/pkg/logger"
	appmiddleware "gmao-system/pkg/middleware"
	"gmao-system/pkg/utils"
	"gmao-system/pkg/validation"
)

func main() {
	// 1. Конфиг и логгер
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	e := echo.New()
	e.HideBanner = true

	// 2. Middleware
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, utils.ActorHeader},
		AllowCredentials: true,
		ExposeHeaders:    []string{echo.HeaderContentDisposition, echo.HeaderXRequestID},
	}))
	e.Use(appmiddleware.InjectLogger(logger))
	e.Use(appmiddleware.Metrics())

	e.Validator = validation.New()

	// 3. Статика
	absPath, err := filepath.Abs(cfg.Storage.UploadsDir)
	if err != nil {
		logger.Fatal("не удалось получить абсолютный путь к uploads", zap.Error(err))
	}
	e.Static(strings.TrimSuffix(filestorage.PublicPrefix, "/"), absPath)

	fileStorage, err := filestorage.NewLocalFileStorage(absPath)
	if err != nil {
		logger.Fatal("не удалось создать файловое хранилище", zap.Error(err))
	}

	// 4. БД и миграции
	ctx := context.Background()
	dbConn, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("не удалось подключиться к базе данных", zap.Error(err))
	}
	defer dbConn.Close()

	if cfg.Postgres.MigrateOnStart {
		if err := postgresql.Migrate(ctx, dbConn); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}
		logger.Info("Миграции применены")
	}

	// 5. Кэш
	var cacheRepo repositories.CacheRepositoryInterface
	switch cfg.Cache.Driver {
	case "redis":
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := redisClient.Ping(ctx).Result(); err != nil {
			logger.Fatal("не удалось подключиться к Redis", zap.Error(err), zap.String("address", cfg.Redis.Address))
		}
		defer redisClient.Close()
		cacheRepo = repositories.NewRedisCacheRepository(redisClient)
	default:
		cacheRepo = repositories.NewMemoryCacheRepository(cfg.Cache.Size, cfg.Cache.TTL)
	}
	logger.Info("Кэш выборок включён", zap.String("driver", cfg.Cache.Driver))

	// 6. Маршруты
	routes.InitRouter(e, routes.Deps{
		DB:          dbConn,
		Cache:       cacheRepo,
		FileStorage: fileStorage,
		Config:      cfg,
		Logger:      logger,
	})

	// 7. Запуск и остановка
	go func() {
		logger.Info("🚀 Сервер запущен", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки сервера", zap.Error(err))
	}
	logger.Info("Сервер остановлен")
}
