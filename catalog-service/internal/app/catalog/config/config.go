package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config содержит все настройки приложения Catalog Service
// Включает конфигурацию для HTTP сервера, PostgreSQL, Redis, Kafka, логов и метрик
type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Database DatabaseConfig `envconfig:"DB"`
	Redis    RedisConfig    `envconfig:"REDIS"`
	Kafka    KafkaConfig    `envconfig:"KAFKA"`
	Log      LogConfig      `envconfig:"LOG"`
	Metrics  MetricsConfig  `envconfig:"METRICS"`
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host            string        `split_words:"true" default:"0.0.0.0"`
	Port            string        `split_words:"true" default:"8081"`
	ShutdownTimeout time.Duration `split_words:"true" default:"30s"`
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Используется для хранения категорий и товаров
type DatabaseConfig struct {
	Host        string `split_words:"true" default:"localhost"`
	Port        string `split_words:"true" default:"5432"`
	User        string `split_words:"true" default:"postgres"`
	Password    string `split_words:"true" default:"postgres"`
	Name        string `split_words:"true" default:"apicatalogo"`
	SSLMode     string `envconfig:"SSLMODE" default:"disable"`
	AutoMigrate bool   `split_words:"true" default:"true"` // Создавать таблицы при старте

	MaxOpenConns    int           `split_words:"true" default:"25"`
	MaxIdleConns    int           `split_words:"true" default:"5"`
	ConnMaxLifetime time.Duration `split_words:"true" default:"5m"`
	ConnMaxIdleTime time.Duration `split_words:"true" default:"1m"`
}

// RedisConfig - настройки подключения к Redis для кеширования
// Используется для кеширования списка категорий
type RedisConfig struct {
	Enabled  bool          `split_words:"true" default:"true"`
	Host     string        `split_words:"true" default:"localhost"`
	Port     string        `split_words:"true" default:"6379"`
	Password string        `split_words:"true"`
	DB       int           `split_words:"true" default:"0"`
	CacheTTL time.Duration `split_words:"true" default:"10m"`
}

// KafkaConfig - настройки Kafka для отправки событий
// События отправляются при изменении товаров (создание/обновление/удаление)
type KafkaConfig struct {
	Enabled bool     `split_words:"true" default:"false"`
	Brokers []string `split_words:"true" default:"localhost:9092"` // Через запятую
	Topic   string   `split_words:"true" default:"product_events"`
}

// LogConfig - уровни логирования и каталог файла логов
type LogConfig struct {
	Level     string `split_words:"true" default:"info"`
	Dir       string `split_words:"true" default:"logs"`
	FileLevel string `split_words:"true" default:"info"`
}

type MetricsConfig struct {
	DBStatsSchedule string `split_words:"true" default:"@every 15s"`
}

// Load загружает конфигурацию из .env (если он есть) и переменных окружения
// Переменные окружения имеют приоритет над .env
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom работает как Load, но читает указанные .env файлы
func LoadFrom(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port для HTTP сервера
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port для подключения
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}
