package repository

import (
	"context"
	"fmt"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/pkg/metrics"
)

type categoryRepository struct {
	*gormRepository[entity.Category]
}

func newCategoryRepository(s *session) CategoryRepository {
	return &categoryRepository{gormRepository: newGormRepository[entity.Category](s, "categorias")}
}

// GetCategoriesWithProducts получает все категории вместе с их товарами
func (r *categoryRepository) GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error) {
	db, err := r.reader(ctx)
	if err != nil {
		return nil, err
	}

	timer := metrics.NewDbTimer(serviceName, metrics.DbOpSelect, r.table)
	defer timer.ObserveDuration()

	var categories []entity.Category
	if err := db.Preload("Products").Find(&categories).Error; err != nil {
		metrics.RecordDbError(serviceName, metrics.DbOpSelect)
		return nil, fmt.Errorf("failed to get categories with products: %w", err)
	}

	return categories, nil
}
