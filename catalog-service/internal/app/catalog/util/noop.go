package util

import (
	"context"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
)

// NoopCache используется, когда Redis выключен в конфигурации или недоступен при старте
// Каждый GetCategories - промах, поэтому список всегда читается из БД
type NoopCache struct{}

func (NoopCache) SetCategories(context.Context, []entity.Category, time.Duration) error {
	return nil
}

func (NoopCache) GetCategories(context.Context) ([]entity.Category, error) {
	return nil, nil
}

func (NoopCache) DeleteCategories(context.Context) error {
	return nil
}

func (NoopCache) Close() error {
	return nil
}

// NoopPublisher отбрасывает события, когда Kafka выключена
type NoopPublisher struct{}

func (NoopPublisher) PublishMessage(context.Context, string, []byte) error {
	return nil
}

func (NoopPublisher) Close() error {
	return nil
}
