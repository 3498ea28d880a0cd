package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"bergerie-server/internal/cache"
	"bergerie-server/internal/config"
	"bergerie-server/internal/handler"
	appLogger "bergerie-server/internal/logger"
	"bergerie-server/internal/messaging"
	appMiddleware "bergerie-server/internal/middleware"
	"bergerie-server/internal/repository"
	"bergerie-server/internal/service"
	"bergerie-server/internal/worker"
	"bergerie-server/migrations"
	"bergerie-server/pkg/migration"
)

func main() {
	_ = godotenv.Load()
	log.Println("Запуск Bergerie Server...")

	// Загружаем конфиг ДО инициализации логгера
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	logger, err := appLogger.New(appLogger.Config{
		Level: cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("Не удалось инициализировать логгер: %v", err)
	}
	defer logger.Sync()
	logger.Info("Logger initialized", zap.String("logLevel", cfg.LogLevel))

	// Подключение к PostgreSQL
	dbPool, err := setupDatabase(cfg)
	if err != nil {
		logger.Fatal("Не удалось подключиться к БД", zap.Error(err))
	}
	defer dbPool.Close()
	logger.Info("Успешное подключение к PostgreSQL")

	// Применяем миграции
	migrator := migration.NewMigrator(migration.Config{
		MigrationsPath: ".",
		MigrationsFS:   migrations.FS,
	}, dbPool, logger)
	if err := migrator.Up(context.Background()); err != nil {
		logger.Fatal("Не удалось применить миграции", zap.Error(err))
	}

	// Подключение к Redis (кэш счетчиков)
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()
	{
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			logger.Fatal("Не удалось подключиться к Redis", zap.Error(err))
		}
		cancel()
	}
	logger.Info("Успешное подключение к Redis", zap.String("addr", cfg.RedisAddr))

	// Подключение к RabbitMQ
	rabbitConn, err := connectRabbitMQ(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Fatal("Не удалось подключиться к RabbitMQ", zap.Error(err))
	}
	defer rabbitConn.Close()
	logger.Info("Успешное подключение к RabbitMQ")

	// Инициализация зависимостей
	txManager := repository.NewTransactionHelper(dbPool, logger)
	likeRepo := repository.NewPgLikeRepository(logger)
	followRepo := repository.NewPgFollowRepository(logger)
	bergerieRepo := repository.NewPgBergerieRepository(logger)
	postRepo := repository.NewPgPostRepository(logger)
	userRepo := repository.NewPgUserRepository(logger)
	notificationRepo := repository.NewPgNotificationRepository(logger)

	statsCache := cache.NewRedisStatsCache(redisClient, cfg.StatsCacheTTL, logger)

	notificationPublisher, err := messaging.NewRabbitMQNotificationEventPublisher(rabbitConn, cfg.NotificationEventsQueue, logger)
	if err != nil {
		logger.Fatal("Не удалось создать паблишер уведомлений", zap.Error(err))
	}

	interactionService := service.NewInteractionService(
		dbPool, txManager, likeRepo, followRepo, bergerieRepo, postRepo, userRepo,
		statsCache, notificationPublisher, logger)
	bergerieService := service.NewBergerieService(dbPool, bergerieRepo, statsCache, logger)
	postService := service.NewPostService(
		dbPool, txManager, postRepo, bergerieRepo, userRepo, followRepo,
		statsCache, notificationPublisher, logger)
	notificationService := service.NewNotificationService(dbPool, notificationRepo, logger)
	userService := service.NewUserService(dbPool, userRepo, statsCache, logger)

	// Консьюмер событий уведомлений
	processor := messaging.NewProcessor(logger, dbPool, notificationRepo, followRepo)
	notificationConsumer, err := messaging.NewConsumer(
		rabbitConn, logger, cfg.NotificationEventsQueue, cfg.NotificationConsumerWorkers, processor)
	if err != nil {
		logger.Fatal("Не удалось создать консьюмер уведомлений", zap.Error(err))
	}
	go func() {
		logger.Info("Запуск горутины консьюмера уведомлений...")
		if err := notificationConsumer.Start(); err != nil {
			logger.Error("Консьюмер уведомлений завершился с ошибкой", zap.Error(err))
		}
		logger.Info("Горутина консьюмера уведомлений завершена.")
	}()

	// DLQ consumer: последняя попытка записать события, не дошедшие до БД
	dlqConsumer := worker.NewDLQConsumer(rabbitConn, processor, logger)
	dlqConsumer.StartConsuming()

	// Настройка Echo
	e := echo.New()
	e.Validator = handler.NewCustomValidator()
	e.Use(appMiddleware.EchoZapLogger(logger))
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	bergerieHandler := handler.NewBergerieHandler(
		bergerieService, postService, interactionService, notificationService, userService, cfg.JWTSecret, logger)
	bergerieHandler.RegisterRoutes(e)

	log.Printf("Bergerie сервер слушает на порту %s", cfg.Port)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("Ошибка запуска HTTP сервера: ", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Получен сигнал завершения, начинаем graceful shutdown...")

	notificationConsumer.Stop()
	dlqConsumer.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		e.Logger.Fatal("Ошибка при graceful shutdown Echo: ", err)
	}

	log.Println("Bergerie Server успешно остановлен")
}

// setupDatabase инициализирует и возвращает пул соединений с БД.
func setupDatabase(cfg *config.Config) (*pgxpool.Pool, error) {
	dsn := cfg.GetDSN()
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга DSN: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.DBMaxConns)
	poolConfig.MaxConnIdleTime = cfg.DBIdleTimeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	dbPool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("не удалось создать пул соединений: %w", err)
	}
	if err = dbPool.Ping(ctx); err != nil {
		dbPool.Close()
		return nil, fmt.Errorf("не удалось подключиться к БД (ping failed): %w", err)
	}
	return dbPool, nil
}

// connectRabbitMQ пытается подключиться к RabbitMQ с несколькими попытками.
func connectRabbitMQ(url string, logger *zap.Logger) (*amqp.Connection, error) {
	var conn *amqp.Connection
	var err error
	maxRetries := 5
	retryDelay := 5 * time.Second
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		logger.Warn("Не удалось подключиться к RabbitMQ",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_delay", retryDelay),
			zap.Error(err),
		)
		time.Sleep(retryDelay)
	}
	return nil, err
}
