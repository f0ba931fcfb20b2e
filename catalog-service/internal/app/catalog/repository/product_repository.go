package repository

import (
	"context"
	"fmt"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/pkg/metrics"
)

type productRepository struct {
	*gormRepository[entity.Product]
}

func newProductRepository(s *session) ProductRepository {
	return &productRepository{gormRepository: newGormRepository[entity.Product](s, "produtos")}
}

// GetProductsByCategory получает товары одной категории
// Несуществующая категория дает пустой список, а не ошибку
func (r *productRepository) GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error) {
	db, err := r.reader(ctx)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, r.table)
	defer timer.ObserveDuration()

	var products []entity.Product
	if err := db.Where("categoria_id = ?", categoryID).Find(&products).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get products by category: %w", err)
	}

	return products, nil
}
