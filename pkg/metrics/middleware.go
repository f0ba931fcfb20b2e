package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// =============================================================================
// Gin Middleware (для всех сервисов)
// =============================================================================

// GinPrometheusMiddleware возвращает Gin middleware,
// который собирает метрики http_requests_total и http_request_duration_seconds
func GinPrometheusMiddleware(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Пропускаем метрики для /metrics и /health endpoints
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/health" {
			c.Next()
			return
		}

		start := time.Now()

		// Увеличиваем счётчик активных запросов
		HttpRequestsInFlight.WithLabelValues(serviceName).Inc()
		defer HttpRequestsInFlight.WithLabelValues(serviceName).Dec()

		// Выполняем запрос
		c.Next()

		// Записываем метрики
		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())
		path := normalizePath(c.FullPath())

		HttpRequestsTotal.WithLabelValues(serviceName, c.Request.Method, path, status).Inc()
		HttpRequestDuration.WithLabelValues(serviceName, c.Request.Method, path).Observe(duration)
	}
}

// =============================================================================
// Helpers
// =============================================================================

// normalizePath возвращает шаблон маршрута gin (/produtos/:id) вместо фактического пути
func normalizePath(route string) string {
	if route != "" {
		return route
	}

	// Маршрут не найден: все такие запросы попадают в одну серию
	return "unmatched"
}
