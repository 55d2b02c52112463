// Package router sets up all HTTP routes for the web page and the API.
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/handlers"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/metrics"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/middleware"
)

// Setup creates and configures the Gin router with all routes.
// Routes that call the model API share rl; m may be nil.
func Setup(h *handlers.Handler, m *metrics.Metrics, rl *middleware.RateLimiter, allowedOrigins []string) *gin.Engine {
	r := gin.Default()
	// Multipart parts beyond this spill to disk instead of memory.
	r.MaxMultipartMemory = 8 << 20

	r.Use(middleware.RequestID())
	r.Use(middleware.CORS(allowedOrigins))
	r.Use(m.Middleware())

	// --- Web page ---
	r.GET("/", h.Index)
	r.POST("/", rl.RateLimit(), h.SummarizeForm)

	// --- Operational endpoints ---
	r.GET("/api/v1/health", h.HealthCheck)
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	// API Documentation
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)

	// --- JSON API ---
	api := r.Group("/api/v1")
	{
		api.POST("/extract", h.ExtractPDF)
		api.POST("/summaries/export", h.ExportSummary)
	}

	// Summaries cost a model call each, so they are rate limited per client.
	limited := r.Group("/api/v1")
	limited.Use(rl.RateLimit())
	{
		limited.POST("/summaries", h.SummarizePDF)
	}

	return r
}
