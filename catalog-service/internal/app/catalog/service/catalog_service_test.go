package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/catalog-service/internal/app/catalog/repository"
	"apicatalogo/catalog-service/internal/app/catalog/repository/mocks"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testCacheTTL = 10 * time.Minute

// Хелперы для создания тестовых данных

type testDeps struct {
	uow       *mocks.MockUnitOfWork
	cache     *mocks.MockCategoryCache
	publisher *mocks.MockMessagePublisher
	service   *CatalogService
}

func newTestDeps() *testDeps {
	uow := mocks.NewMockUnitOfWork()
	uow.On("Close").Return().Maybe()

	cache := new(mocks.MockCategoryCache)
	publisher := new(mocks.MockMessagePublisher)

	return &testDeps{
		uow:       uow,
		cache:     cache,
		publisher: publisher,
		service:   NewCatalogService(uow.Factory(), cache, publisher, testCacheTTL),
	}
}

func (d *testDeps) assertExpectations(t *testing.T) {
	d.uow.AssertExpectations(t)
	d.uow.CategoryRepo.AssertExpectations(t)
	d.uow.ProductRepo.AssertExpectations(t)
	d.cache.AssertExpectations(t)
	d.publisher.AssertExpectations(t)
}

func newTestCategory() *entity.Category {
	return &entity.Category{
		ID:       1,
		Name:     "Bebidas",
		ImageURL: "https://img/bebidas.png",
	}
}

func newTestProduct() *entity.Product {
	return &entity.Product{
		ID:           5,
		Name:         "Coca-Cola",
		Description:  "Refrigerante de cola 350ml",
		Price:        decimal.RequireFromString("5.45"),
		ImageURL:     "https://img/coca.png",
		Stock:        50,
		RegisteredAt: time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC),
		CategoryID:   1,
	}
}

func eventOfType(eventType string) interface{} {
	return mock.MatchedBy(func(value []byte) bool {
		return strings.Contains(string(value), `"event_type":"`+eventType+`"`)
	})
}

func mustPatch(t *testing.T, doc string) jsonpatch.Patch {
	t.Helper()
	patch, err := jsonpatch.DecodePatch([]byte(doc))
	require.NoError(t, err)
	return patch
}

// ==================== Category Tests ====================

func TestCatalogService_GetCategories_CacheHit(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newTestDeps()
	cached := []entity.Category{*newTestCategory()}
	d.cache.On("GetCategories", ctx).Return(cached, nil)

	// Act
	categories, err := d.service.GetCategories(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, cached, categories)
	d.uow.CategoryRepo.AssertNotCalled(t, "GetAll", mock.Anything)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategories_CacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newTestDeps()
	fromDB := []entity.Category{*newTestCategory()}
	d.cache.On("GetCategories", ctx).Return(nil, nil)
	d.uow.CategoryRepo.On("GetAll", ctx).Return(fromDB, nil)
	d.cache.On("SetCategories", ctx, fromDB, testCacheTTL).Return(nil)

	// Act
	categories, err := d.service.GetCategories(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, fromDB, categories)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategories_CacheErrorFallsBackToDB(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	fromDB := []entity.Category{*newTestCategory()}
	d.cache.On("GetCategories", ctx).Return(nil, errors.New("redis down"))
	d.uow.CategoryRepo.On("GetAll", ctx).Return(fromDB, nil)
	d.cache.On("SetCategories", ctx, fromDB, testCacheTTL).Return(errors.New("redis down"))

	categories, err := d.service.GetCategories(ctx)

	require.NoError(t, err)
	assert.Len(t, categories, 1)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategories_EmptyNotCached(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.cache.On("GetCategories", ctx).Return(nil, nil)
	d.uow.CategoryRepo.On("GetAll", ctx).Return([]entity.Category{}, nil)

	categories, err := d.service.GetCategories(ctx)

	require.NoError(t, err)
	assert.Empty(t, categories)
	d.cache.AssertNotCalled(t, "SetCategories", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_GetCategories_InvalidatedDuringReadNotCached(t *testing.T) {
	// Arrange: категория создается параллельно, пока список читается из БД
	ctx := context.Background()
	d := newTestDeps()
	stale := []entity.Category{*newTestCategory()}
	d.cache.On("GetCategories", ctx).Return(nil, nil)
	d.cache.On("DeleteCategories", ctx).Return(nil).Once()
	d.uow.CategoryRepo.On("GetAll", ctx).
		Run(func(args mock.Arguments) { d.service.invalidateCategories(ctx) }).
		Return(stale, nil)

	// Act
	categories, err := d.service.GetCategories(ctx)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, stale, categories)
	d.cache.AssertNotCalled(t, "SetCategories", mock.Anything, mock.Anything, mock.Anything)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategories_InvalidatedDuringCacheWriteDropped(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	stale := []entity.Category{*newTestCategory()}
	d.cache.On("GetCategories", ctx).Return(nil, nil)
	d.uow.CategoryRepo.On("GetAll", ctx).Return(stale, nil)
	d.cache.On("SetCategories", ctx, stale, testCacheTTL).
		Run(func(args mock.Arguments) { d.service.cacheGeneration.Add(1) }).
		Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil).Once()

	_, err := d.service.GetCategories(ctx)

	require.NoError(t, err)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategoriesWithProducts(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	category := newTestCategory()
	category.Products = []entity.Product{*newTestProduct()}
	d.uow.CategoryRepo.On("GetCategoriesWithProducts", ctx).Return([]entity.Category{*category}, nil)

	categories, err := d.service.GetCategoriesWithProducts(ctx)

	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Len(t, categories[0].Products, 1)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategory_Success(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.CategoryRepo.On("Get", ctx, repository.Where("categoria_id = ?", 1)).Return(newTestCategory(), nil)

	category, err := d.service.GetCategory(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, "Bebidas", category.Name)
	d.assertExpectations(t)
}

func TestCatalogService_GetCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.CategoryRepo.On("Get", ctx, repository.Where("categoria_id = ?", 99)).Return(nil, repository.ErrNotFound)

	category, err := d.service.GetCategory(ctx, 99)

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, category)
}

func TestCatalogService_GetCategory_DBError(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.CategoryRepo.On("Get", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := d.service.GetCategory(ctx, 1)

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCategoryNotFound)
	assert.Contains(t, err.Error(), "failed to get category")
}

func TestCatalogService_CreateCategory_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newTestDeps()
	category := &entity.Category{ID: 77, Name: "Lanches", ImageURL: "https://img/lanches.png"}

	d.uow.CategoryRepo.On("Create", category).Return(nil)
	d.uow.On("Commit", ctx).Run(func(mock.Arguments) {
		// Идентификатор назначает база при фиксации
		category.ID = 3
	}).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)

	// Act
	created, err := d.service.CreateCategory(ctx, category)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, created.ID)
	d.assertExpectations(t)
}

func TestCatalogService_CreateCategory_CacheErrorIgnored(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	category := newTestCategory()

	d.uow.CategoryRepo.On("Create", category).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(errors.New("redis down"))

	created, err := d.service.CreateCategory(ctx, category)

	require.NoError(t, err)
	assert.NotNil(t, created)
	d.assertExpectations(t)
}

func TestCatalogService_CreateCategory_CommitError(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	category := newTestCategory()

	d.uow.CategoryRepo.On("Create", category).Return(nil)
	d.uow.On("Commit", ctx).Return(errors.New("connection reset"))

	created, err := d.service.CreateCategory(ctx, category)

	assert.Error(t, err)
	assert.Nil(t, created)
	assert.Contains(t, err.Error(), "failed to save changes")
	d.cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

func TestCatalogService_UpdateCategory_Success(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	updated := &entity.Category{ID: 1, Name: "Bebidas geladas", ImageURL: "https://img/geladas.png"}

	d.uow.CategoryRepo.On("Get", ctx, repository.Where("categoria_id = ?", 1)).Return(newTestCategory(), nil)
	d.uow.CategoryRepo.On("Update", updated).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)

	category, err := d.service.UpdateCategory(ctx, updated)

	require.NoError(t, err)
	assert.Equal(t, "Bebidas geladas", category.Name)
	d.assertExpectations(t)
}

func TestCatalogService_UpdateCategory_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.CategoryRepo.On("Get", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

	category, err := d.service.UpdateCategory(ctx, &entity.Category{ID: 42, Name: "Nada"})

	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Nil(t, category)
	d.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCatalogService_DeleteCategory_ReturnsDeleted(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	existing := newTestCategory()

	d.uow.CategoryRepo.On("Get", ctx, repository.Where("categoria_id = ?", 1)).Return(existing, nil)
	d.uow.CategoryRepo.On("Delete", existing).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.cache.On("DeleteCategories", ctx).Return(nil)

	deleted, err := d.service.DeleteCategory(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, existing, deleted)
	d.uow.ProductRepo.AssertNotCalled(t, "Delete", mock.Anything)
	d.assertExpectations(t)
}

func TestCatalogService_DeleteCategory_WithProductsFailsOnForeignKey(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	existing := newTestCategory()

	d.uow.CategoryRepo.On("Get", ctx, mock.Anything).Return(existing, nil)
	d.uow.CategoryRepo.On("Delete", existing).Return(nil)
	d.uow.On("Commit", ctx).Return(fmt.Errorf("%w: fk_categorias_products", repository.ErrForeignKeyViolation))

	deleted, err := d.service.DeleteCategory(ctx, 1)

	assert.ErrorIs(t, err, repository.ErrForeignKeyViolation)
	assert.Nil(t, deleted)
	d.cache.AssertNotCalled(t, "DeleteCategories", mock.Anything)
}

// ==================== Product Tests ====================

func TestCatalogService_GetProducts(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("GetAll", ctx).Return([]entity.Product{*newTestProduct()}, nil)

	products, err := d.service.GetProducts(ctx)

	require.NoError(t, err)
	assert.Len(t, products, 1)
	d.assertExpectations(t)
}

func TestCatalogService_GetProductsByCategory(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("GetProductsByCategory", ctx, 1).Return([]entity.Product{*newTestProduct()}, nil)

	products, err := d.service.GetProductsByCategory(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, 1, products[0].CategoryID)
	d.assertExpectations(t)
}

func TestCatalogService_GetProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, repository.Where("produto_id = ?", 9)).Return(nil, repository.ErrNotFound)

	product, err := d.service.GetProduct(ctx, 9)

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
}

func TestCatalogService_CreateProduct_PublishesEvent(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newTestDeps()
	product := newTestProduct()
	product.ID = 0

	d.uow.ProductRepo.On("Create", product).Return(nil)
	d.uow.On("Commit", ctx).Run(func(mock.Arguments) { product.ID = 12 }).Return(nil)
	d.publisher.On("PublishMessage", ctx, "12", eventOfType(EventProductCreated)).Return(nil)

	// Act
	created, err := d.service.CreateProduct(ctx, product)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 12, created.ID)
	d.assertExpectations(t)
}

func TestCatalogService_CreateProduct_UnknownCategoryFailsAtCommit(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	product := newTestProduct()
	product.CategoryID = 999

	d.uow.ProductRepo.On("Create", product).Return(nil)
	d.uow.On("Commit", ctx).Return(fmt.Errorf("%w: fk_categorias_products", repository.ErrForeignKeyViolation))

	created, err := d.service.CreateProduct(ctx, product)

	assert.ErrorIs(t, err, repository.ErrForeignKeyViolation)
	assert.Nil(t, created)
	d.publisher.AssertNotCalled(t, "PublishMessage", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalogService_UpdateProduct_Success(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	updated := newTestProduct()
	updated.Price = decimal.RequireFromString("6.10")

	d.uow.ProductRepo.On("Get", ctx, repository.Where("produto_id = ?", 5)).Return(newTestProduct(), nil)
	d.uow.ProductRepo.On("Update", updated).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, "5", eventOfType(EventProductUpdated)).Return(nil)

	product, err := d.service.UpdateProduct(ctx, updated)

	require.NoError(t, err)
	assert.True(t, product.Price.Equal(decimal.RequireFromString("6.10")))
	d.assertExpectations(t)
}

func TestCatalogService_UpdateProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

	product, err := d.service.UpdateProduct(ctx, newTestProduct())

	assert.ErrorIs(t, err, ErrProductNotFound)
	assert.Nil(t, product)
	d.uow.ProductRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestCatalogService_UpdateProduct_RowVanishedBeforeCommit(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	updated := newTestProduct()

	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(newTestProduct(), nil)
	d.uow.ProductRepo.On("Update", updated).Return(nil)
	d.uow.On("Commit", ctx).Return(repository.ErrNotFound)

	_, err := d.service.UpdateProduct(ctx, updated)

	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCatalogService_DeleteProduct_KafkaErrorIgnored(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	existing := newTestProduct()

	d.uow.ProductRepo.On("Get", ctx, repository.Where("produto_id = ?", 5)).Return(existing, nil)
	d.uow.ProductRepo.On("Delete", existing).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, "5", eventOfType(EventProductDeleted)).Return(errors.New("broker unavailable"))

	deleted, err := d.service.DeleteProduct(ctx, 5)

	require.NoError(t, err)
	assert.Equal(t, existing, deleted)
	d.assertExpectations(t)
}

// ==================== Patch Tests ====================

func TestCatalogService_PatchProduct_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newTestDeps()
	existing := newTestProduct()

	d.uow.ProductRepo.On("Get", ctx, repository.Where("produto_id = ?", 5)).Return(existing, nil)
	d.uow.ProductRepo.On("Update", mock.MatchedBy(func(p *entity.Product) bool {
		return p.Stock == 25 && p.RegisteredAt.Year() == 2025
	})).Return(nil)
	d.uow.On("Commit", ctx).Return(nil)
	d.publisher.On("PublishMessage", ctx, "5", eventOfType(EventProductUpdated)).Return(nil)

	patch := mustPatch(t, `[
		{"op": "replace", "path": "/estoque", "value": 25},
		{"op": "replace", "path": "/dataCadastro", "value": "2025-06-01T00:00:00Z"}
	]`)

	// Act
	product, err := d.service.PatchProduct(ctx, 5, patch)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, float32(25), product.Stock)
	assert.Equal(t, "Coca-Cola", product.Name)
	d.assertExpectations(t)
}

func TestCatalogService_PatchProduct_InvalidMergedStateNotPersisted(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(newTestProduct(), nil)

	patch := mustPatch(t, `[{"op": "replace", "path": "/estoque", "value": 20000}]`)

	product, err := d.service.PatchProduct(ctx, 5, patch)

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "estoque")
	assert.Nil(t, product)
	d.uow.ProductRepo.AssertNotCalled(t, "Update", mock.Anything)
	d.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCatalogService_PatchProduct_ZeroRegistrationDate(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(newTestProduct(), nil)

	patch := mustPatch(t, `[{"op": "replace", "path": "/dataCadastro", "value": "0001-01-01T00:00:00Z"}]`)

	_, err := d.service.PatchProduct(ctx, 5, patch)

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "dataCadastro")
	d.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCatalogService_PatchProduct_MergedEntityRevalidated(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	// Строка, заведенная до появления ограничения цены
	legacy := newTestProduct()
	legacy.Price = decimal.NewFromInt(150000)
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(legacy, nil)

	patch := mustPatch(t, `[{"op": "replace", "path": "/estoque", "value": 1}]`)

	_, err := d.service.PatchProduct(ctx, 5, patch)

	var validationErr *entity.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Fields(), "preco")
	d.uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestCatalogService_PatchProduct_FieldOutsideUpdateDocument(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(newTestProduct(), nil)

	patch := mustPatch(t, `[{"op": "add", "path": "/preco", "value": 1}]`)

	_, err := d.service.PatchProduct(ctx, 5, patch)

	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestCatalogService_PatchProduct_MissingPath(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(newTestProduct(), nil)

	patch := mustPatch(t, `[{"op": "remove", "path": "/nome"}]`)

	_, err := d.service.PatchProduct(ctx, 5, patch)

	assert.ErrorIs(t, err, ErrInvalidPatch)
}

func TestCatalogService_PatchProduct_NotFound(t *testing.T) {
	ctx := context.Background()
	d := newTestDeps()
	d.uow.ProductRepo.On("Get", ctx, mock.Anything).Return(nil, repository.ErrNotFound)

	_, err := d.service.PatchProduct(ctx, 404, mustPatch(t, `[]`))

	assert.ErrorIs(t, err, ErrProductNotFound)
}
