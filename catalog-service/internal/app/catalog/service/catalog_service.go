package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/catalog-service/internal/app/catalog/repository"
	"apicatalogo/catalog-service/internal/app/catalog/util"
	"apicatalogo/pkg/logger"
	"apicatalogo/pkg/metrics"

	jsonpatch "github.com/evanphx/json-patch/v5"
)

var (
	// Ошибки бизнес-логики для обработки в handlers
	ErrCategoryNotFound = errors.New("category not found")
	ErrProductNotFound  = errors.New("product not found")
	ErrInvalidPatch     = errors.New("invalid patch document")
)

const (
	EventProductCreated = "PRODUCT_CREATED"
	EventProductUpdated = "PRODUCT_UPDATED"
	EventProductDeleted = "PRODUCT_DELETED"
)

// CatalogService обрабатывает бизнес-логику каталога
// Каждый вызов работает в собственном UnitOfWork, кеш и события обновляются только после успешного Commit
type CatalogService struct {
	newUnitOfWork repository.UnitOfWorkFactory
	cache         util.CategoryCache    // Кеш списка категорий
	publisher     util.MessagePublisher // Producer событий о товарах
	cacheTTL      time.Duration

	// Растет при каждой инвалидации; список из БД кладется в кеш только если поколение не изменилось
	cacheGeneration atomic.Uint64
}

// NewCatalogService создает новый сервис каталога с внедрением зависимостей
func NewCatalogService(
	newUnitOfWork repository.UnitOfWorkFactory,
	cache util.CategoryCache,
	publisher util.MessagePublisher,
	cacheTTL time.Duration,
) *CatalogService {
	return &CatalogService{
		newUnitOfWork: newUnitOfWork,
		cache:         cache,
		publisher:     publisher,
		cacheTTL:      cacheTTL,
	}
}

// === CATEGORIES ===

// GetCategories получает все категории, сначала из кеша
func (s *CatalogService) GetCategories(ctx context.Context) ([]entity.Category, error) {
	categories, err := s.cache.GetCategories(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to read categories from cache")
	} else if len(categories) > 0 {
		return categories, nil
	}

	generation := s.cacheGeneration.Load()

	uow := s.newUnitOfWork()
	defer uow.Close()

	categories, err = uow.Categories().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	if len(categories) > 0 {
		s.fillCategoriesCache(ctx, generation, categories)
	}

	return categories, nil
}

// GetCategoriesWithProducts получает категории вместе с товарами, без кеша
func (s *CatalogService) GetCategoriesWithProducts(ctx context.Context) ([]entity.Category, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	categories, err := uow.Categories().GetCategoriesWithProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories with products: %w", err)
	}

	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id int) (*entity.Category, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	return findCategory(ctx, uow, id)
}

// CreateCategory создает категорию; идентификатор назначается базой при Commit
func (s *CatalogService) CreateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	category.ID = 0
	category.Products = nil
	if _, err := uow.Categories().Create(category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	if err := commit(ctx, uow, ErrCategoryNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("category", "create")
	s.invalidateCategories(ctx)
	return category, nil
}

// UpdateCategory полностью заменяет поля существующей категории
func (s *CatalogService) UpdateCategory(ctx context.Context, category *entity.Category) (*entity.Category, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	if _, err := findCategory(ctx, uow, category.ID); err != nil {
		return nil, err
	}

	category.Products = nil
	if _, err := uow.Categories().Update(category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	if err := commit(ctx, uow, ErrCategoryNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("category", "update")
	s.invalidateCategories(ctx)
	return category, nil
}

// DeleteCategory удаляет только строку категории и возвращает удаленную категорию
// Товары категории не трогаются: если они есть, Commit упадет на внешнем ключе
func (s *CatalogService) DeleteCategory(ctx context.Context, id int) (*entity.Category, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	category, err := findCategory(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	if _, err := uow.Categories().Delete(category); err != nil {
		return nil, fmt.Errorf("failed to delete category: %w", err)
	}

	if err := commit(ctx, uow, ErrCategoryNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("category", "delete")
	s.invalidateCategories(ctx)
	return category, nil
}

// === PRODUCTS ===

func (s *CatalogService) GetProducts(ctx context.Context) ([]entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	products, err := uow.Products().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}

	return products, nil
}

// GetProductsByCategory получает товары категории; для неизвестной категории список пуст
func (s *CatalogService) GetProductsByCategory(ctx context.Context, categoryID int) ([]entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	products, err := uow.Products().GetProductsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get products by category: %w", err)
	}

	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	return findProduct(ctx, uow, id)
}

// CreateProduct создает товар
// Существование категории не проверяется заранее: это делает внешний ключ при Commit
func (s *CatalogService) CreateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	product.ID = 0
	product.Category = nil
	if _, err := uow.Products().Create(product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	if err := commit(ctx, uow, ErrProductNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("product", "create")
	s.publishProductEvent(ctx, EventProductCreated, product)
	return product, nil
}

// UpdateProduct полностью заменяет поля существующего товара
func (s *CatalogService) UpdateProduct(ctx context.Context, product *entity.Product) (*entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	if _, err := findProduct(ctx, uow, product.ID); err != nil {
		return nil, err
	}

	product.Category = nil
	if _, err := uow.Products().Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := commit(ctx, uow, ErrProductNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("product", "update")
	s.publishProductEvent(ctx, EventProductUpdated, product)
	return product, nil
}

// PatchProduct применяет JSON Patch (RFC 6902) к ProductUpdateRequest товара
// Результат проверяется целиком до записи; невалидное состояние не сохраняется
func (s *CatalogService) PatchProduct(ctx context.Context, id int, patch jsonpatch.Patch) (*entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	product, err := findProduct(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	current, err := json.Marshal(entity.NewProductUpdateRequest(product))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal product update request: %w", err)
	}

	patched, err := patch.Apply(current)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	var req entity.ProductUpdateRequest
	decoder := json.NewDecoder(bytes.NewReader(patched))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPatch, err)
	}

	if err := entity.Validate(&req); err != nil {
		return nil, err
	}

	req.ApplyTo(product)
	if err := entity.Validate(product); err != nil {
		return nil, err
	}

	if _, err := uow.Products().Update(product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	if err := commit(ctx, uow, ErrProductNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("product", "patch")
	s.publishProductEvent(ctx, EventProductUpdated, product)
	return product, nil
}

// DeleteProduct удаляет товар и возвращает удаленный товар
func (s *CatalogService) DeleteProduct(ctx context.Context, id int) (*entity.Product, error) {
	uow := s.newUnitOfWork()
	defer uow.Close()

	product, err := findProduct(ctx, uow, id)
	if err != nil {
		return nil, err
	}

	if _, err := uow.Products().Delete(product); err != nil {
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}

	if err := commit(ctx, uow, ErrProductNotFound); err != nil {
		return nil, err
	}

	metrics.RecordEntityChange("product", "delete")
	s.publishProductEvent(ctx, EventProductDeleted, product)
	return product, nil
}

// === HELPERS ===

func findCategory(ctx context.Context, uow repository.UnitOfWork, id int) (*entity.Category, error) {
	category, err := uow.Categories().Get(ctx, repository.Where("categoria_id = ?", id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

func findProduct(ctx context.Context, uow repository.UnitOfWork, id int) (*entity.Product, error) {
	product, err := uow.Products().Get(ctx, repository.Where("produto_id = ?", id))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return product, nil
}

// commit фиксирует UnitOfWork; строка, исчезнувшая между чтением и записью, дает notFound
func commit(ctx context.Context, uow repository.UnitOfWork, notFound error) error {
	if err := uow.Commit(ctx); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound
		}
		return fmt.Errorf("failed to save changes: %w", err)
	}
	return nil
}

// invalidateCategories сбрасывает кеш после изменения категорий
// Ошибка только логируется: данные уже записаны, кеш истечет по TTL
func (s *CatalogService) invalidateCategories(ctx context.Context) {
	s.cacheGeneration.Add(1)
	if err := s.cache.DeleteCategories(ctx); err != nil {
		logger.Warn().Err(err).Msg("Failed to invalidate categories cache")
	}
}

// fillCategoriesCache кладет прочитанный список в кеш, если за время чтения не было инвалидации
// Если инвалидация успела пройти между проверкой и записью, запись сразу удаляется
func (s *CatalogService) fillCategoriesCache(ctx context.Context, generation uint64, categories []entity.Category) {
	if s.cacheGeneration.Load() != generation {
		logger.Debug().Msg("Categories changed during read, cache not filled")
		return
	}

	if err := s.cache.SetCategories(ctx, categories, s.cacheTTL); err != nil {
		logger.Warn().Err(err).Msg("Failed to cache categories")
		return
	}

	if s.cacheGeneration.Load() != generation {
		if err := s.cache.DeleteCategories(ctx); err != nil {
			logger.Warn().Err(err).Msg("Failed to drop stale categories cache")
		}
	}
}

// publishProductEvent отправляет событие о товаре в Kafka с ключом ProductID
// Ошибки отправки не отменяют уже зафиксированное изменение
func (s *CatalogService) publishProductEvent(ctx context.Context, eventType string, product *entity.Product) {
	event := entity.ProductEvent{
		EventType:  eventType,
		ProductID:  product.ID,
		Name:       product.Name,
		Price:      product.Price,
		CategoryID: product.CategoryID,
		Timestamp:  time.Now(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Int("product_id", product.ID).Msg("Failed to marshal product event")
		return
	}

	if err := s.publisher.PublishMessage(ctx, strconv.Itoa(product.ID), data); err != nil {
		logger.Warn().Err(err).
			Str("event_type", eventType).
			Int("product_id", product.ID).
			Msg("Failed to publish product event")
	}
}
