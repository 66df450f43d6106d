package rest

import (
	"context"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Josh-IE/risk-management/internal/interfaces/middleware"
)

// HealthChecker reports whether the store is reachable
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps carries everything the HTTP surface is built from
type RouterDeps struct {
	Schemas        SchemaService
	Submissions    SubmissionService
	Projector      ProjectionService
	Health         HealthChecker
	OpenAPI        *openapi3.T
	MaxUploadBytes int64

	// MediaURL and MediaRoot serve locally stored files; leave MediaRoot
	// empty when files live in a remote store
	MediaURL  string
	MediaRoot string
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.Cors())
	router.Use(middleware.Metrics(deps.MediaURL))
	router.MaxMultipartMemory = deps.MaxUploadBytes

	router.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health.Ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if deps.OpenAPI != nil {
		router.GET("/openapi.json", func(c *gin.Context) {
			c.JSON(http.StatusOK, deps.OpenAPI)
		})
	}
	if deps.MediaRoot != "" && deps.MediaURL != "" {
		router.Static(deps.MediaURL, deps.MediaRoot)
	}

	schemaHandler := NewSchemaHandler(deps.Schemas)
	submissionHandler := NewSubmissionHandler(deps.Submissions, deps.Projector, deps.MaxUploadBytes)

	api := router.Group("/api/v1")
	{
		riskModels := api.Group("/risk_model")
		{
			riskModels.GET("", schemaHandler.List)
			riskModels.POST("", schemaHandler.Create)
			riskModels.GET("/field_types", schemaHandler.FieldTypes)
			riskModels.GET("/:id", schemaHandler.Get)
			riskModels.PUT("/:id", schemaHandler.Update)
		}

		api.POST("/risk_data", submissionHandler.Submit)
		api.GET("/risk_data/:id", submissionHandler.Get)
		api.GET("/risk_data_log", submissionHandler.Log)
	}

	return router
}
