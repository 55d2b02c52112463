// summarize.go handles the summarization API.
//
// POST /api/v1/summaries : upload a PDF, get its text and a summary back
package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/middleware"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

// SummarizePDF uploads, extracts and summarizes a PDF in one synchronous call.
// POST /api/v1/summaries
//
// Multipart fields: file (required), length (50-500, default 200),
// style (bullet|paragraph, default bullet), model (optional override).
//
// Status codes:
//   - 200 completed
//   - 422 insufficient_text (too little text, no summary attempted)
//   - 422 extraction_failed (unreadable PDF)
//   - 502 summary_failed, 503 provider_unavailable, 504 summary_timeout
func (h *Handler) SummarizePDF(c *gin.Context) {
	up, reqErr := h.openUpload(c)
	if reqErr != nil {
		c.JSON(reqErr.status, reqErr.response())
		return
	}
	defer up.Close()

	opts, reqErr := parseOptions(c)
	if reqErr != nil {
		c.JSON(reqErr.status, reqErr.response())
		return
	}

	out, err := h.Pipeline.Process(c.Request.Context(), up.filename, up.body, opts)
	if err != nil {
		log.Printf("❌ [%s] Processing failed for %s: %v", middleware.GetRequestID(c), up.filename, err)
		resp := processingError(err)
		c.JSON(resp.Code, resp)
		return
	}

	resp := summaryResponse(out)
	switch {
	case out.Summarized():
		c.JSON(http.StatusOK, resp)
	case out.Warning != "":
		resp.Status = models.StatusInsufficientText
		resp.Error = "insufficient_text"
		resp.Message = out.Warning
		c.JSON(http.StatusUnprocessableEntity, resp)
	default:
		code, status := summaryErrorCode(out.SummaryErr)
		resp.Status = models.StatusFailed
		resp.Error = code
		resp.Message = "Error generating summary: " + out.SummaryErr.Error()
		c.JSON(status, resp)
	}
}

// summaryResponse copies a pipeline outcome into the API shape.
func summaryResponse(out *pipeline.Outcome) models.SummaryResponse {
	resp := models.SummaryResponse{
		Status:        models.StatusCompleted,
		Filename:      out.Filename,
		PageCount:     out.PageCount,
		CharCount:     out.CharCount,
		WordCount:     out.WordCount,
		ExtractedText: out.Text,
		Words:         out.Options.Words,
		Style:         string(out.Options.Style),
		Progress:      out.Progress,
		ProcessTimeMs: out.Elapsed.Milliseconds(),
	}
	if out.Summary != nil {
		resp.Summary = out.Summary.Summary
		resp.Model = out.Summary.Model
		resp.Provider = out.Summary.Provider
	}
	return resp
}

// summaryErrorCode classifies a summarization failure for the API.
func summaryErrorCode(err error) (string, int) {
	switch {
	case errors.Is(err, summary.ErrProviderUnavailable):
		return "provider_unavailable", http.StatusServiceUnavailable
	case errors.Is(err, summary.ErrNotConfigured):
		return "provider_not_configured", http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return "summary_timeout", http.StatusGatewayTimeout
	default:
		return "summary_failed", http.StatusBadGateway
	}
}
