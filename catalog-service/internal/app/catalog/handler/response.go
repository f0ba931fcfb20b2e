package handler

import (
	"errors"
	"net/http"
	"strconv"

	"apicatalogo/catalog-service/internal/app/catalog/entity"
	"apicatalogo/pkg/logger"
	"apicatalogo/pkg/metrics"

	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "An error occurred while processing your request. Please try again later."

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, entity.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
	})
}

// respondInternalError логирует исходную ошибку, клиенту уходит только общее сообщение
func respondInternalError(c *gin.Context, err error, msg string) {
	event := logger.Error().
		Err(err).
		Str("request_id", logger.RequestID(c)).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path)
	if id := c.Param("id"); id != "" {
		event = event.Str("id", id)
	}
	event.Msg(msg)

	respondError(c, http.StatusInternalServerError, internalErrorMessage)
}

// respondValidationError отвечает 400 с ошибками по полям
// Возвращает false, если err не является ошибкой валидации
func respondValidationError(c *gin.Context, entityName string, err error) bool {
	var validationErr *entity.ValidationError
	if !errors.As(err, &validationErr) {
		return false
	}

	metrics.RecordValidationFailure(entityName)
	logger.Warn().
		Str("request_id", logger.RequestID(c)).
		Str("entity", entityName).
		Interface("errors", validationErr.Fields()).
		Msg("Validation failed")

	c.JSON(http.StatusBadRequest, entity.ErrorResponse{
		Error:   http.StatusText(http.StatusBadRequest),
		Message: "Validation failed",
		Errors:  validationErr.Fields(),
	})
	return true
}

// parseID читает целочисленный :id из маршрута, при ошибке сам отвечает 400
func parseID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid id: must be an integer")
		return 0, false
	}
	return id, true
}

// bindJSON декодирует тело запроса, при ошибке сам отвечает 400
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		logger.Warn().Err(err).Str("request_id", logger.RequestID(c)).Msg("Invalid request body")
		respondError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
