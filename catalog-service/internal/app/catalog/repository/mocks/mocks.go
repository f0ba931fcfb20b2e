package mocks

import (
	"context"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/catalog-service/internal/app/catalog/repository"

	"github.com/stretchr/testify/mock"
)

// MockUnitOfWork мок для UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	CategoryRepo *MockCategoryRepository
	ProductRepo  *MockProductRepository
}

// NewMockUnitOfWork создает мок с пустыми моками репозиториев
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		CategoryRepo: new(MockCategoryRepository),
		ProductRepo:  new(MockProductRepository),
	}
}

// Factory возвращает фабрику, всегда отдающую этот мок
func (m *MockUnitOfWork) Factory() repository.UnitOfWorkFactory {
	return func() repository.UnitOfWork {
		return m
	}
}

func (m *MockUnitOfWork) Categories() repository.CategoryRepository {
	return m.CategoryRepo
}

func (m *MockUnitOfWork) Products() repository.ProductRepository {
	return m.ProductRepo
}

func (m *MockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Close() {
	m.Called()
}

// MockCategoryRepository мок для CategoryRepository
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) GetAll(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Get(ctx context.Context, predicate repository.Predicate) (*entity.Category, error) {
	args := m.Called(ctx, predicate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Category), args.Error(1)
}

func (m *MockCategoryRepository) Create(category *entity.Category) (*entity.Category, error) {
	args := m.Called(category)
	return category, args.Error(0)
}

func (m *MockCategoryRepository) Update(category *entity.Category) (*entity.Category, error) {
	args := m.Called(category)
	return category, args.Error(0)
}

func (m *MockCategoryRepository) Delete(category *entity.Category) (*entity.Category, error) {
	args := m.Called(category)
	return category, args.Error(0)
}

func (m *MockCategoryRepository) GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

// MockProductRepository мок для ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetAll(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductRepository) Get(ctx context.Context, predicate repository.Predicate) (*entity.Product, error) {
	args := m.Called(ctx, predicate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductRepository) Create(product *entity.Product) (*entity.Product, error) {
	args := m.Called(product)
	return product, args.Error(0)
}

func (m *MockProductRepository) Update(product *entity.Product) (*entity.Product, error) {
	args := m.Called(product)
	return product, args.Error(0)
}

func (m *MockProductRepository) Delete(product *entity.Product) (*entity.Product, error) {
	args := m.Called(product)
	return product, args.Error(0)
}

func (m *MockProductRepository) GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error) {
	args := m.Called(ctx, categoryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

// MockCategoryCache мок для util.CategoryCache
type MockCategoryCache struct {
	mock.Mock
}

func (m *MockCategoryCache) SetCategories(ctx context.Context, categories []entity.Category, ttl time.Duration) error {
	args := m.Called(ctx, categories, ttl)
	return args.Error(0)
}

func (m *MockCategoryCache) GetCategories(ctx context.Context) ([]entity.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Category), args.Error(1)
}

func (m *MockCategoryCache) DeleteCategories(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCategoryCache) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockMessagePublisher мок для util.MessagePublisher
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) PublishMessage(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}
