package handler

import (
	"errors"
	"fmt"
	"net/http"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/catalog-service/internal/app/catalog/service"
	"apicatalogo/pkg/logger"

	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/gin-gonic/gin"
)

// ProductHandler обрабатывает HTTP запросы /produtos
type ProductHandler struct {
	catalogService service.CatalogServiceInterface
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(catalogService service.CatalogServiceInterface) *ProductHandler {
	return &ProductHandler{catalogService: catalogService}
}

// GetProducts обрабатывает GET /produtos
func (h *ProductHandler) GetProducts(c *gin.Context) {
	products, err := h.catalogService.GetProducts(c.Request.Context())
	if err != nil {
		respondInternalError(c, err, "Failed to get products")
		return
	}

	if len(products) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, entity.NewProductDTOs(products))
}

// GetProductsByCategory обрабатывает GET /produtos/produtos/:id, где id - идентификатор категории
func (h *ProductHandler) GetProductsByCategory(c *gin.Context) {
	categoryID, ok := parseID(c)
	if !ok {
		return
	}

	products, err := h.catalogService.GetProductsByCategory(c.Request.Context(), categoryID)
	if err != nil {
		respondInternalError(c, err, "Failed to get products by category")
		return
	}

	if len(products) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, entity.NewProductDTOs(products))
}

// GetProduct обрабатывает GET /produtos/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id, "Failed to get product")
		return
	}

	c.JSON(http.StatusOK, entity.NewProductDTO(product))
}

// CreateProduct обрабатывает POST /produtos
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var dto entity.ProductDTO
	if !bindJSON(c, &dto) {
		return
	}

	if err := entity.Validate(&dto); err != nil {
		if !respondValidationError(c, "product", err) {
			respondInternalError(c, err, "Failed to validate product")
		}
		return
	}

	product := dto.ToProduct()
	created, err := h.catalogService.CreateProduct(c.Request.Context(), &product)
	if err != nil {
		respondInternalError(c, err, "Failed to create product")
		return
	}

	logger.Info().Int("produto_id", created.ID).Int("categoria_id", created.CategoryID).Msg("Product created")
	c.Header("Location", fmt.Sprintf("/produtos/%d", created.ID))
	c.JSON(http.StatusCreated, entity.NewProductDTO(created))
}

// UpdateProduct обрабатывает PUT /produtos/:id
// Полностью заменяет товар; id в теле должен совпадать с id в маршруте
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	var dto entity.ProductDTO
	if !bindJSON(c, &dto) {
		return
	}

	if dto.ID != id {
		logger.Warn().Int("route_id", id).Int("body_id", dto.ID).Msg("Product id mismatch")
		respondError(c, http.StatusBadRequest, "Id in route does not match id in body")
		return
	}

	if err := entity.Validate(&dto); err != nil {
		if !respondValidationError(c, "product", err) {
			respondInternalError(c, err, "Failed to validate product")
		}
		return
	}

	product := dto.ToProduct()
	updated, err := h.catalogService.UpdateProduct(c.Request.Context(), &product)
	if err != nil {
		h.handleError(c, err, id, "Failed to update product")
		return
	}

	c.JSON(http.StatusOK, entity.NewProductDTO(updated))
}

// PatchProduct обрабатывает PATCH /produtos/:id/UpdatePartial
// Тело - JSON Patch (RFC 6902) над полями estoque и dataCadastro
func (h *ProductHandler) PatchProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if id <= 0 {
		respondError(c, http.StatusBadRequest, "Invalid id: must be positive")
		return
	}

	body, err := c.GetRawData()
	if err != nil || len(body) == 0 {
		respondError(c, http.StatusBadRequest, "Patch document is required")
		return
	}

	patch, err := jsonpatch.DecodePatch(body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid patch document")
		return
	}

	updated, err := h.catalogService.PatchProduct(c.Request.Context(), id, patch)
	if err != nil {
		if respondValidationError(c, "product", err) {
			return
		}
		if errors.Is(err, service.ErrInvalidPatch) {
			logger.Warn().Err(err).Int("produto_id", id).Msg("Patch could not be applied")
			respondError(c, http.StatusBadRequest, "Patch could not be applied to product")
			return
		}
		h.handleError(c, err, id, "Failed to patch product")
		return
	}

	c.JSON(http.StatusOK, entity.NewProductDTO(updated))
}

// DeleteProduct обрабатывает DELETE /produtos/:id и возвращает удаленный товар
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	deleted, err := h.catalogService.DeleteProduct(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err, id, "Failed to delete product")
		return
	}

	logger.Info().Int("produto_id", id).Msg("Product deleted")
	c.JSON(http.StatusOK, entity.NewProductDTO(deleted))
}

func (h *ProductHandler) handleError(c *gin.Context, err error, id int, msg string) {
	if errors.Is(err, service.ErrProductNotFound) {
		logger.Warn().Int("produto_id", id).Msg("Product not found")
		respondError(c, http.StatusNotFound, fmt.Sprintf("Product with id=%d not found", id))
		return
	}
	respondInternalError(c, err, msg)
}
