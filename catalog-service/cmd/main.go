package main

import (
	"context"
	"errors"
	"fmt"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/config"
	"apicatalogo/catalog-service/internal/app/catalog/handler"
	"apicatalogo/catalog-service/internal/app/catalog/repository"
	"apicatalogo/catalog-service/internal/app/catalog/service"
	"apicatalogo/catalog-service/internal/app/catalog/util"
	"apicatalogo/pkg/logger"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const serviceName = "catalog-service"

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Failed to load config: %v", err)
	}

	// === ЛОГИРОВАНИЕ ===
	// JSON в stdout и человекочитаемый api_log.txt
	fileSink, err := logger.InitWithFile(serviceName, cfg.Log.Level, cfg.Log.Dir, cfg.Log.FileLevel)
	if err != nil {
		logger.Init(serviceName, cfg.Log.Level)
		logger.Warn().Err(err).Msg("File logging disabled")
	} else {
		defer fileSink.Close()
		logger.Info().Str("path", fileSink.Path()).Msg("File logging enabled")
	}

	startupLog := logger.WithFields(map[string]interface{}{
		"address":       cfg.Server.Address(),
		"db_host":       cfg.Database.Host,
		"db_name":       cfg.Database.Name,
		"redis_enabled": cfg.Redis.Enabled,
		"kafka_enabled": cfg.Kafka.Enabled,
	})
	startupLog.Info().Msg("Configuration loaded")

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL ===
	db, err := connectDB(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to get database handle")
	}
	defer sqlDB.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL")

	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(db); err != nil {
			logger.Fatal().Err(err).Msg("Failed to migrate database")
		}
		logger.Info().Msg("Database schema is up to date")
	}

	// === МЕТРИКИ ПУЛА СОЕДИНЕНИЙ ===
	statsCollector := util.NewDBStatsCollector("catalog", sqlDB)
	if err := statsCollector.Start(cfg.Metrics.DBStatsSchedule); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start DB stats collector")
	}
	defer statsCollector.Stop()

	// === КЕШ И СОБЫТИЯ ===
	// Redis и Kafka необязательны: без них сервис работает напрямую с БД
	cache := newCategoryCache(cfg.Redis)
	defer cache.Close()

	publisher := newPublisher(cfg.Kafka)
	defer publisher.Close()

	// === БИЗНЕС-ЛОГИКА И HTTP ===
	catalogService := service.NewCatalogService(
		repository.NewUnitOfWorkFactory(db),
		cache,
		publisher,
		cfg.Redis.CacheTTL,
	)

	router := handler.SetupRoutes(
		handler.NewCategoryHandler(catalogService),
		handler.NewProductHandler(catalogService),
	)

	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectDB открывает PostgreSQL через GORM
// 10 попыток с паузой 3 секунды: в Docker база может подняться позже сервиса
func connectDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormLog := logger.Logger().With().Str("component", "gorm").Logger()
	gormConfig := &gorm.Config{
		Logger: gormlogger.New(
			stdlog.New(logger.NewLevelWriter(gormLog, zerolog.WarnLevel), "", 0),
			gormlogger.Config{
				SlowThreshold:             200 * time.Millisecond,
				LogLevel:                  gormlogger.Warn,
				IgnoreRecordNotFoundError: true,
			},
		),
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			if err = configurePool(db, cfg); err == nil {
				return db, nil
			}
		}
		logger.Warn().Err(err).Int("attempt", i+1).Msg("Failed to connect to database")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}

func configurePool(db *gorm.DB, cfg config.DatabaseConfig) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return err
	}
	return nil
}

func newCategoryCache(cfg config.RedisConfig) util.CategoryCache {
	if !cfg.Enabled {
		logger.Info().Msg("Redis cache disabled")
		return util.NoopCache{}
	}

	client, err := util.NewRedisClient(cfg.Address(), cfg.Password, cfg.DB)
	if err != nil {
		logger.Warn().Err(err).Msg("Redis unavailable, category cache disabled")
		return util.NoopCache{}
	}

	logger.Info().Str("address", cfg.Address()).Msg("Successfully connected to Redis")
	return client
}

func newPublisher(cfg config.KafkaConfig) util.MessagePublisher {
	if !cfg.Enabled {
		logger.Info().Msg("Kafka events disabled")
		return util.NoopPublisher{}
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.Topic).Msg("Kafka producer initialized")
	return util.NewKafkaProducer(cfg.Brokers, cfg.Topic)
}
