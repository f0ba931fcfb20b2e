package util

import (
	"context"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
)

// CategoryCache интерфейс кеша списка категорий
// Используется для dependency injection и упрощения тестирования
type CategoryCache interface {
	SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error
	GetCategories(ctx context.Context) ([]entity.Category, error)
	DeleteCategories(ctx context.Context) error
	Close() error
}

// MessagePublisher интерфейс для отправки сообщений в очередь (Kafka)
type MessagePublisher interface {
	PublishMessage(ctx context.Context, key string, value []byte) error
	Close() error
}
