package handler

import (
	"errors"
	"fmt"
	"net/http"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/catalog-service/internal/app/catalog/service"
	"apicatalogo/pkg/logger"

	"github.com/gin-gonic/gin"
)

// CategoryHandler обрабатывает HTTP запросы /categorias
type CategoryHandler struct {
	catalogService service.CatalogServiceInterface
}

// NewCategoryHandler создает новый обработчик категорий
func NewCategoryHandler(catalogService service.CatalogServiceInterface) *CategoryHandler {
	return &CategoryHandler{catalogService: catalogService}
}

// GetCategories обрабатывает GET /categorias
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	categories, err := h.catalogService.GetCategories(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to get categories")
		return
	}

	if len(categories) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, entity.NewCategoryDTOs(categories))
}

// GetCategoriesWithProducts обрабатывает GET /categorias/produtos
func (h *CategoryHandler) GetCategoriesWithProducts(c *gin.Context) {
	categories, err := h.catalogService.GetCategoriesWithProducts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to get categories with products")
		return
	}

	if len(categories) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	for i := range categories {
		if categories[i].Products == nil {
			categories[i].Products = []entity.Product{}
		}
	}

	c.JSON(http.StatusOK, categories)
}

// GetCategory обрабатывает GET /categorias/:id
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	category, err := h.catalogService.GetCategory(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id, "Failed to get category")
		return
	}

	c.JSON(http.StatusOK, entity.NewCategoryDTO(category))
}

// CreateCategory обрабатывает POST /categorias
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var dto entity.CategoryDTO
	if !bindJSON(c, &dto) {
		return
	}

	if err := entity.Validate(&dto); err != nil {
		if !respondValidationError(c, "category", err) {
			respondInternalError(c, err, "Failed to validate category")
		}
		return
	}

	category := dto.ToCategory()
	created, err := h.catalogService.CreateCategory(c.Request.Context(), &category)
	if err != nil {
		respondInternalError(c, err, "Failed to create category")
		return
	}

	logger.Info().Int("categoria_id", created.ID).Msg("Category created")
	c.Header("Location", fmt.Sprintf("/categorias/%d", created.ID))
	c.JSON(http.StatusCreated, entity.NewCategoryDTO(created))
}

// UpdateCategory обрабатывает PUT /categorias/:id
// Полностью заменяет категорию; id в теле должен совпадать с id в маршруте
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var dto entity.CategoryDTO
	if !bindJSON(c, &dto) {
		return
	}

	if dto.ID != id {
		logger.Warn().Int("route_id", id).Int("body_id", dto.ID).Msg("Category id mismatch")
		respondError(c, http.StatusBadRequest, "Id in route does not match id in body")
		return
	}

	if err := entity.Validate(&dto); err != nil {
		if !respondValidationError(c, "category", err) {
			respondInternalError(c, err, "Failed to validate category")
		}
		return
	}

	category := dto.ToCategory()
	updated, err := h.catalogService.UpdateCategory(c.Request.Context(), &category)
	if err != nil {
		h.handleError(c, err, id, "Failed to update category")
		return
	}

	c.JSON(http.StatusOK, entity.NewCategoryDTO(updated))
}

// DeleteCategory обрабатывает DELETE /categorias/:id и возвращает удаленную категорию
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.catalogService.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id, "Failed to delete category")
		return
	}

	logger.Info().Int("categoria_id", id).Msg("Category deleted")
	c.JSON(http.StatusOK, entity.NewCategoryDTO(deleted))
}

func (h *CategoryHandler) handleError(c *gin.Context, err error, id int, msg string) {
	if errors.Is(err, service.ErrCategoryNotFound) {
		logger.Warn().Int("categoria_id", id).Msg("Category not found")
		respondError(c, http.StatusNotFound, fmt.Sprintf("Category with id=%d not found", id))
		return
	}
	respondInternalError(c, err, msg)
}
