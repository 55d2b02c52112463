package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pdf/pdftest"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/render"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const longPage = "The quarterly report covers revenue growth across all regions and explains the drivers behind each number in detail, region by region and quarter by quarter."

// fakeProvider stands in for the remote model API.
type fakeProvider struct {
	reply    string
	err      error
	prompts  []string
	unconfig bool
}

func (f *fakeProvider) Name() string     { return "fake" }
func (f *fakeProvider) Model() string    { return "fake-model" }
func (f *fakeProvider) Configured() bool { return !f.unconfig }

func (f *fakeProvider) Generate(_ context.Context, prompt, _ string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.reply, f.err
}

// newTestHandler wires a real extractor and pipeline around fp. The
// returned directory is where uploads are spooled.
func newTestHandler(t *testing.T, fp *fakeProvider) (*Handler, string) {
	t.Helper()
	dir := t.TempDir()
	svc := summary.New(fp, time.Second, summary.BreakerConfig{FailureThreshold: 1, OpenTimeout: time.Minute})
	p := pipeline.New(pdf.NewExtractor(), svc, nil, pipeline.Config{TempDir: dir, MinTextChars: 100})
	return NewHandler(p, svc, render.New(), 10<<20), dir
}

func newTestRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.GET("/", h.Index)
	r.POST("/", h.SummarizeForm)
	r.GET("/api/docs", h.ServeSwaggerUI)
	r.GET("/api/docs/openapi.yaml", h.ServeOpenAPISpec)
	v1 := r.Group("/api/v1")
	v1.GET("/health", h.HealthCheck)
	v1.POST("/summaries", h.SummarizePDF)
	v1.POST("/summaries/export", h.ExportSummary)
	v1.POST("/extract", h.ExtractPDF)
	return r
}

// multipartRequest builds a form upload with the given file and fields.
func multipartRequest(t *testing.T, path, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField() error = %v", err)
		}
	}
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatalf("CreateFormFile() error = %v", err)
		}
		fw.Write(content)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func assertNoTempFiles(t *testing.T, dir string) {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("temp dir still holds %d file(s)", len(entries))
	}
}

func TestSummarizePDF(t *testing.T) {
	fp := &fakeProvider{reply: "- growth everywhere"}
	h, dir := newTestHandler(t, fp)
	r := newTestRouter(h)

	req := multipartRequest(t, "/api/v1/summaries", "report.pdf", pdftest.Build(longPage),
		map[string]string{"length": "120", "style": "paragraph"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}

	var resp models.SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.StatusCompleted || resp.Summary != "- growth everywhere" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Progress != pipeline.ProgressDone || resp.Words != 120 || resp.Style != "paragraph" {
		t.Errorf("progress/words/style = %d/%d/%s", resp.Progress, resp.Words, resp.Style)
	}
	if !strings.Contains(resp.ExtractedText, "quarterly report") {
		t.Errorf("ExtractedText = %q", resp.ExtractedText)
	}

	if len(fp.prompts) != 1 {
		t.Fatalf("provider called %d times, want 1", len(fp.prompts))
	}
	if !strings.HasPrefix(fp.prompts[0], "Summarize the following PDF content in a concise paragraph (aim for ~120 words):\n\n") {
		t.Errorf("prompt = %q", fp.prompts[0])
	}
	assertNoTempFiles(t, dir)
}

func TestSummarizePDFInsufficientText(t *testing.T) {
	fp := &fakeProvider{reply: "unused"}
	h, dir := newTestHandler(t, fp)
	r := newTestRouter(h)

	req := multipartRequest(t, "/api/v1/summaries", "short.pdf", pdftest.Build("Too short"), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	var resp models.SummaryResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != models.StatusInsufficientText || resp.Error != "insufficient_text" {
		t.Errorf("response = %+v", resp)
	}
	if len(fp.prompts) != 0 {
		t.Errorf("provider called %d times, want 0", len(fp.prompts))
	}
	assertNoTempFiles(t, dir)
}

func TestSummarizePDFProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		provider   *fakeProvider
		wantStatus int
		wantError  string
	}{
		{
			name:       "upstream failure",
			provider:   &fakeProvider{err: &summary.StatusError{Provider: "fake", StatusCode: 500, Body: "boom"}},
			wantStatus: http.StatusBadGateway,
			wantError:  "summary_failed",
		},
		{
			name:       "not configured",
			provider:   &fakeProvider{unconfig: true},
			wantStatus: http.StatusServiceUnavailable,
			wantError:  "provider_not_configured",
		},
		{
			name:       "timeout",
			provider:   &fakeProvider{err: context.DeadlineExceeded},
			wantStatus: http.StatusGatewayTimeout,
			wantError:  "summary_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, dir := newTestHandler(t, tt.provider)
			r := newTestRouter(h)

			req := multipartRequest(t, "/api/v1/summaries", "report.pdf", pdftest.Build(longPage), nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp models.SummaryResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantError || resp.Status != models.StatusFailed {
				t.Errorf("error/status = %q/%q", resp.Error, resp.Status)
			}
			if resp.Progress != pipeline.ProgressReset {
				t.Errorf("Progress = %d, want 0", resp.Progress)
			}
			if !strings.HasPrefix(resp.Message, "Error generating summary: ") {
				t.Errorf("Message = %q", resp.Message)
			}
			assertNoTempFiles(t, dir)
		})
	}
}

func TestSummarizePDFBreakerOpen(t *testing.T) {
	fp := &fakeProvider{err: errors.New("connection refused")}
	h, _ := newTestHandler(t, fp) // FailureThreshold 1
	r := newTestRouter(h)

	send := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, multipartRequest(t, "/api/v1/summaries", "report.pdf", pdftest.Build(longPage), nil))
		return w
	}

	if w := send(); w.Code != http.StatusBadGateway {
		t.Fatalf("first call status = %d, want 502", w.Code)
	}
	if w := send(); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("second call status = %d, want 503", w.Code)
	}
	if len(fp.prompts) != 1 {
		t.Errorf("provider called %d times, want 1", len(fp.prompts))
	}
}

func TestUploadValidation(t *testing.T) {
	oversized := append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 4096)...)

	tests := []struct {
		name       string
		filename   string
		content    []byte
		fields     map[string]string
		maxBytes   int64
		wantStatus int
		wantError  string
	}{
		{"missing file", "", nil, nil, 0, http.StatusBadRequest, "invalid_request"},
		{"wrong extension", "notes.txt", []byte("hello"), nil, 0, http.StatusBadRequest, "invalid_file_type"},
		{"not a pdf", "fake.pdf", []byte("<html></html>"), nil, 0, http.StatusBadRequest, "invalid_pdf"},
		{"length too small", "doc.pdf", pdftest.Build(longPage), map[string]string{"length": "10"}, 0, http.StatusBadRequest, "invalid_options"},
		{"length not a number", "doc.pdf", pdftest.Build(longPage), map[string]string{"length": "lots"}, 0, http.StatusBadRequest, "invalid_length"},
		{"unknown style", "doc.pdf", pdftest.Build(longPage), map[string]string{"style": "haiku"}, 0, http.StatusBadRequest, "invalid_style"},
		{"too large", "big.pdf", oversized, nil, 1024, http.StatusRequestEntityTooLarge, "file_too_large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fp := &fakeProvider{reply: "unused"}
			h, dir := newTestHandler(t, fp)
			if tt.maxBytes > 0 {
				h.MaxUploadBytes = tt.maxBytes
			}
			r := newTestRouter(h)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, "/api/v1/summaries", tt.filename, tt.content, tt.fields))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			var resp models.ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Error != tt.wantError {
				t.Errorf("error = %q, want %q", resp.Error, tt.wantError)
			}
			if tt.maxBytes > 0 && !strings.Contains(resp.Message, "1 KB limit") {
				t.Errorf("message = %q, want the limit in KB", resp.Message)
			}
			if len(fp.prompts) != 0 {
				t.Error("provider must not be called for rejected uploads")
			}
			assertNoTempFiles(t, dir)
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{10 << 20, "10 MB"},
		{1 << 20, "1 MB"},
		{512 << 10, "512 KB"},
		{1536 << 10, "1536 KB"},
		{1000, "1000 bytes"},
	}
	for _, tt := range tests {
		if got := formatSize(tt.n); got != tt.want {
			t.Errorf("formatSize(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestExtractPDF(t *testing.T) {
	fp := &fakeProvider{reply: "unused"}
	h, dir := newTestHandler(t, fp)
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/extract", "doc.pdf", pdftest.Build("First page", "Second page"), nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	var resp models.ExtractionResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.PageCount != 2 || !strings.Contains(resp.Text, "Second page") {
		t.Errorf("response = %+v", resp)
	}
	if len(fp.prompts) != 0 {
		t.Error("extraction must not call the provider")
	}
	assertNoTempFiles(t, dir)
}

func TestExtractPDFUnreadable(t *testing.T) {
	h, dir := newTestHandler(t, &fakeProvider{})
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, "/api/v1/extract", "broken.pdf", []byte("%PDF-1.4\nthis is not really a pdf"), nil))

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 (body %s)", w.Code, w.Body.String())
	}
	var resp models.ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "extraction_failed" {
		t.Errorf("error = %q, want extraction_failed", resp.Error)
	}
	assertNoTempFiles(t, dir)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		provider   *fakeProvider
		wantStatus string
	}{
		{"configured", &fakeProvider{}, "ok"},
		{"missing key", &fakeProvider{unconfig: true}, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, tt.provider)
			r := newTestRouter(h)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

			var resp models.HealthResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Status != tt.wantStatus || resp.Provider != "fake" || resp.Breaker != "closed" {
				t.Errorf("response = %+v", resp)
			}
		})
	}
}

func TestDocs(t *testing.T) {
	h, _ := newTestHandler(t, &fakeProvider{})
	r := newTestRouter(h)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/docs/openapi.yaml", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "/api/v1/summaries") {
		t.Errorf("openapi.yaml status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/docs", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "swagger-ui") {
		t.Errorf("docs status = %d", w.Code)
	}
}
