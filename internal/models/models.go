// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with JSON tags for serialization.
// Nothing here is persisted; these are the request/response shapes of the
// HTTP API and the view model of the HTML page.
package models

// SummaryStatus describes how far a summarization request got.
type SummaryStatus string

const (
	StatusCompleted        SummaryStatus = "completed"
	StatusInsufficientText SummaryStatus = "insufficient_text"
	StatusFailed           SummaryStatus = "failed"
)

// SummaryResponse is returned by POST /api/v1/summaries.
type SummaryResponse struct {
	Status        SummaryStatus `json:"status"`
	Filename      string        `json:"filename"`
	PageCount     int           `json:"page_count"`
	CharCount     int           `json:"char_count"`
	WordCount     int           `json:"word_count"`
	ExtractedText string        `json:"extracted_text"`
	Summary       string        `json:"summary,omitempty"`
	Model         string        `json:"model,omitempty"`
	Provider      string        `json:"provider,omitempty"`
	Words         int           `json:"words"` // Requested summary length
	Style         string        `json:"style"` // "bullet" or "paragraph"
	Progress      int           `json:"progress"`
	ProcessTimeMs int64         `json:"process_time_ms"`

	// Set when Status is not completed.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ExtractionResponse is returned by POST /api/v1/extract.
type ExtractionResponse struct {
	Filename  string `json:"filename"`
	PageCount int    `json:"page_count"`
	CharCount int    `json:"char_count"`
	WordCount int    `json:"word_count"`
	Text      string `json:"text"`
}

// ExportSummaryRequest is the JSON body for POST /api/v1/summaries/export.
// The client sends back the summary it already has; nothing is stored server-side.
type ExportSummaryRequest struct {
	Summary  string `json:"summary" binding:"required"`
	Filename string `json:"filename,omitempty"` // Original PDF name, used to name the download
}

// ErrorResponse is a standard error format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	Provider   string `json:"provider"`
	Model      string `json:"model"`
	Configured bool   `json:"configured"`
	Breaker    string `json:"breaker"`
}
