package handler

import (
	"net/http"
	"time"

	"apicatalogo/pkg/logger"
	"apicatalogo/pkg/metrics"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes настраивает все маршруты Catalog Service
func SetupRoutes(categoryHandler *CategoryHandler, productHandler *ProductHandler) *gin.Engine {
	router := gin.New()

	// Recovery middleware для обработки panic
	router.Use(gin.Recovery())

	router.Use(logger.GinLoggerMiddleware())

	router.Use(metrics.GinPrometheusMiddleware("catalog-service"))

	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Accept", "Content-Type", logger.RequestIDHeader},
		ExposeHeaders:   []string{"Location", logger.RequestIDHeader},
		MaxAge:          5 * time.Minute,
	}))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": "catalog-service",
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	categories := router.Group("/categorias")
	{
		categories.GET("", categoryHandler.GetCategories)
		categories.GET("/produtos", categoryHandler.GetCategoriesWithProducts) // Категории вместе с товарами
		categories.GET("/:id", categoryHandler.GetCategory)
		categories.POST("", categoryHandler.CreateCategory)
		categories.PUT("/:id", categoryHandler.UpdateCategory)
		categories.DELETE("/:id", categoryHandler.DeleteCategory)
	}

	products := router.Group("/produtos")
	{
		products.GET("", productHandler.GetProducts)
		products.GET("/produtos/:id", productHandler.GetProductsByCategory) // id - идентификатор категории
		products.GET("/:id", productHandler.GetProduct)
		products.POST("", productHandler.CreateProduct)
		products.PUT("/:id", productHandler.UpdateProduct)
		products.PATCH("/:id/UpdatePartial", productHandler.PatchProduct)
		products.DELETE("/:id", productHandler.DeleteProduct)
	}

	return router
}
