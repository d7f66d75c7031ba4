package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/CoolCoder0110/Movie-API/pkg/metrics"
	"github.com/CoolCoder0110/Movie-API/pkg/middleware"
)

// APIDocsFile is the OpenAPI document served verbatim at /api/docs.
var APIDocsFile = "openapi.yaml"

// NewRouter creates and configures the Gin router.
func NewRouter(h *UserHandler) *gin.Engine {
	r := gin.Default()

	// Middleware
	r.Use(middleware.CorrelationID())
	r.Use(middleware.RequestLatency())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus exposition, also available on the dedicated metrics port
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// API documentation: the raw OpenAPI document plus the Swagger UI
	r.GET("/api/docs", func(c *gin.Context) {
		c.Header("Content-Type", "text/yaml")
		c.File(APIDocsFile)
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// User routes
	r.POST("/api/users", h.CreateUser)
	r.GET("/api/users", h.ListUsers)
	r.GET("/api/users/movies", h.ListUsersWithMovies)
	r.GET("/api/users/:user_id", h.GetUser)
	r.PUT("/api/users/:user_id", h.UpdateUser)
	r.DELETE("/api/users/:user_id", h.DeleteUser)

	return r
}
