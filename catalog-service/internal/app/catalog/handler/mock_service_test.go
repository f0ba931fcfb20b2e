package handler

import (
	"context"

	"apicatalogo/catalog-service/internal/app/catalog/entity"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/stretchr/testify/mock"
)

// MockCatalogService мок для service.CatalogServiceInterface
type MockCatalogService struct {
	mock.Mock
}

func (m *MockCatalogService) categories(args mock.Arguments) ([]entity.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCatalogService) category(args mock.Arguments) (*entity.Category, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCatalogService) products(args mock.Arguments) ([]entity.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockCatalogService) product(args mock.Arguments) (*entity.Product, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockCatalogService) GetCategories(ctx context.Context) ([]entity.Category, error) {
	return m.categories(m.Called(ctx))
}

func (m *MockCatalogService) GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error) {
	return m.categories(m.Called(ctx))
}

func (m *MockCatalogService) GetCategory(ctx context.Context, id int) (*entity.Category, error) {
	return m.category(m.Called(ctx, id))
}

func (m *MockCatalogService) CreateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	return m.category(m.Called(ctx, category))
}

func (m *MockCatalogService) UpdateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	return m.category(m.Called(ctx, category))
}

func (m *MockCatalogService) DeleteCategory(ctx context.Context, id int) (*entity.Category, error) {
	return m.category(m.Called(ctx, id))
}

func (m *MockCatalogService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	return m.products(m.Called(ctx))
}

func (m *MockCatalogService) GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error) {
	return m.products(m.Called(ctx, categoryID))
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	return m.product(m.Called(ctx, id))
}

func (m *MockCatalogService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	return m.product(m.Called(ctx, product))
}

func (m *MockCatalogService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	return m.product(m.Called(ctx, product))
}

func (m *MockCatalogService) PatchProduct(ctx context.Context, id int, patch jsonpatch.Patch) (*entity.Product, error) {
	return m.product(m.Called(ctx, id, patch))
}

func (m *MockCatalogService) DeleteProduct(ctx context.Context, id int) (*entity.Product, error) {
	return m.product(m.Called(ctx, id))
}
