package service

import (
	"context"

	"apicatalogo/catalog-service/internal/app/catalog/entity"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

type CatalogServiceInterface interface {
	GetCategories(ctx context.Context) ([]entity.Category, error)
	GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error)
	GetCategory(ctx context.Context, id int) (*entity.Category, error)
	CreateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error)
	UpdateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error)
	DeleteCategory(ctx context.Context, id int) (*entity.Category, error)

	GetProducts(ctx context.Context) ([]entity.Product, error)
	GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
	CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error)
	PatchProduct(ctx context.Context, id int, patch jsonpatch.Patch) (*entity.Product, error)
	DeleteProduct(ctx context.Context, id int) (*entity.Product, error)
}
