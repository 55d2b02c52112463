// Package handlers contains HTTP handler functions for the web page and the API.
//
// Go Pattern: Handlers in Gin receive a *gin.Context which provides:
// - Request data (params, query, form, body, headers)
// - Response methods (JSON, Data, Status)
// - Middleware data (c.Get/c.Set)
//
// We group related handlers into a struct (Handler) that holds shared dependencies.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/render"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

// Version is reported by the health check.
const Version = "1.0.0"

// Handler holds shared dependencies for all HTTP handlers.
// Go Pattern: Dependency injection via struct fields. Tests build a Handler
// around a fake summary provider and real PDFs.
type Handler struct {
	Pipeline       *pipeline.Pipeline
	Summarizer     *summary.Service
	Renderer       *render.Renderer
	MaxUploadBytes int64
}

// NewHandler creates a new handler with all dependencies.
func NewHandler(p *pipeline.Pipeline, s *summary.Service, r *render.Renderer, maxUploadBytes int64) *Handler {
	return &Handler{
		Pipeline:       p,
		Summarizer:     s,
		Renderer:       r,
		MaxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the service status and the summary provider's state.
// GET /api/v1/health
func (h *Handler) HealthCheck(c *gin.Context) {
	status := "ok"
	if !h.Summarizer.IsConfigured() || h.Summarizer.BreakerState() == "open" {
		status = "degraded"
	}

	c.JSON(http.StatusOK, models.HealthResponse{
		Status:     status,
		Version:    Version,
		Provider:   h.Summarizer.ProviderName(),
		Model:      h.Summarizer.Model(),
		Configured: h.Summarizer.IsConfigured(),
		Breaker:    h.Summarizer.BreakerState(),
	})
}
