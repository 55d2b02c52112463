// pdf.go handles PDF uploads and the extraction-only endpoint.
//
// POST /api/v1/extract : upload a PDF and get its text back, no summary
package handlers

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/middleware"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
	pdfservice "github.com/Shimizu-Technology/pdf-summarizer/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

// requestError is a client mistake found while reading the upload form.
// It maps one-to-one onto models.ErrorResponse.
type requestError struct {
	status  int
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func (e *requestError) response() models.ErrorResponse {
	return models.ErrorResponse{Error: e.code, Message: e.message, Code: e.status}
}

// upload is an accepted PDF ready to be handed to the pipeline.
type upload struct {
	file     multipart.File
	filename string
	body     io.Reader // Positioned at the start of the file, magic bytes included
}

func (u *upload) Close() error { return u.file.Close() }

// openUpload reads the "file" form field and checks that it is a PDF.
// The caller must Close the returned upload.
func (h *Handler) openUpload(c *gin.Context) (*upload, *requestError) {
	// Limit request body size
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, &requestError{
				status:  http.StatusRequestEntityTooLarge,
				code:    "file_too_large",
				message: fmt.Sprintf("The PDF is larger than the %s limit.", formatSize(h.MaxUploadBytes)),
			}
		}
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    "invalid_request",
			message: fmt.Sprintf("No PDF file provided. Upload a file with the field name 'file'. Max size: %s.", formatSize(h.MaxUploadBytes)),
		}
	}

	// Validate file extension
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		file.Close()
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    "invalid_file_type",
			message: fmt.Sprintf("Unsupported file format '%s'. Only .pdf files are accepted.", ext),
		}
	}

	// Validate PDF magic bytes without reading the whole file into memory.
	br := bufio.NewReader(file)
	head, _ := br.Peek(5)
	if !pdfservice.ValidatePDF(head) {
		file.Close()
		return nil, &requestError{
			status:  http.StatusBadRequest,
			code:    "invalid_pdf",
			message: "The uploaded file does not appear to be a valid PDF",
		}
	}

	return &upload{file: file, filename: filepath.Base(header.Filename), body: br}, nil
}

// formatSize renders an upload limit in the largest whole unit.
func formatSize(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%d MB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%d KB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

// parseOptions reads the summary settings from the form. Missing fields
// fall back to the defaults (200 words, bullet points).
func parseOptions(c *gin.Context) (summary.Options, *requestError) {
	opts := summary.Options{Words: summary.DefaultWords}

	if raw := strings.TrimSpace(c.PostForm("length")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return opts, &requestError{
				status:  http.StatusBadRequest,
				code:    "invalid_length",
				message: fmt.Sprintf("length must be a whole number of words, got %q", raw),
			}
		}
		opts.Words = n
	}

	style, err := summary.ParseStyle(c.PostForm("style"))
	if err != nil {
		return opts, &requestError{status: http.StatusBadRequest, code: "invalid_style", message: err.Error()}
	}
	opts.Style = style
	opts.Model = strings.TrimSpace(c.PostForm("model"))

	if err := opts.Validate(); err != nil {
		return opts, &requestError{status: http.StatusBadRequest, code: "invalid_options", message: err.Error()}
	}
	return opts, nil
}

// processingError maps an upload or extraction failure to an API error.
func processingError(err error) models.ErrorResponse {
	if errors.Is(err, pdfservice.ErrUnreadablePDF) {
		return models.ErrorResponse{
			Error:   "extraction_failed",
			Message: "PDF text extraction failed: " + err.Error(),
			Code:    http.StatusUnprocessableEntity,
		}
	}
	return models.ErrorResponse{
		Error:   "processing_error",
		Message: "Failed to process the uploaded file",
		Code:    http.StatusInternalServerError,
	}
}

// ExtractPDF handles PDF file upload and text extraction.
// POST /api/v1/extract
//
// Accepts multipart file upload with field name "file".
// Only .pdf files are accepted. Processing is synchronous.
func (h *Handler) ExtractPDF(c *gin.Context) {
	up, reqErr := h.openUpload(c)
	if reqErr != nil {
		c.JSON(reqErr.status, reqErr.response())
		return
	}
	defer up.Close()

	result, err := h.Pipeline.Extract(up.filename, up.body)
	if err != nil {
		log.Printf("❌ [%s] PDF extraction failed for %s: %v", middleware.GetRequestID(c), up.filename, err)
		resp := processingError(err)
		c.JSON(resp.Code, resp)
		return
	}

	c.JSON(http.StatusOK, models.ExtractionResponse{
		Filename:  up.filename,
		PageCount: result.PageCount,
		CharCount: result.CharCount,
		WordCount: result.WordCount,
		Text:      result.Text,
	})
}
