// ui.go serves the single-page summarizer UI.
//
// GET  /  : Settings sidebar and upload form
// POST /  : Process the upload and render the same page with the results
//
// The page works without JavaScript: the form posts back to "/" and the
// server renders progress, warnings, the summary and a data: URI download
// link. Script is only used for drag-and-drop polish and the confetti burst.
package handlers

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/middleware"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pipeline"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
)

//go:embed templates/index.html
var templatesFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

// User-facing banner texts.
const (
	msgUploaded = "✅ PDF uploaded successfully! Let's dive in..."
	msgIdle     = "🎯 Upload a PDF to unlock the magic!"
)

// styleOption is one entry of the style dropdown.
type styleOption struct {
	Value    string
	Label    string
	Selected bool
}

// pageView is everything index.html renders.
type pageView struct {
	Words    int
	MinWords int
	MaxWords int
	Styles   []styleOption
	Model    string
	MaxSize  string

	Uploaded  bool
	Filename  string
	Progress  int
	PageCount int
	CharCount int
	Text      string

	Idle    string
	Success string
	Warning string
	Error   string

	SummaryHTML template.HTML
	DownloadURL template.URL
	Confetti    bool
}

// newPageView returns the page in its initial state for the given settings.
func (h *Handler) newPageView(opts summary.Options) *pageView {
	opts = opts.WithDefaults()

	styles := []styleOption{
		{Value: string(summary.StyleBullet), Label: summary.StyleBullet.Label()},
		{Value: string(summary.StyleParagraph), Label: summary.StyleParagraph.Label()},
	}
	for i := range styles {
		styles[i].Selected = styles[i].Value == string(opts.Style)
	}

	return &pageView{
		Words:    opts.Words,
		MinWords: summary.MinWords,
		MaxWords: summary.MaxWords,
		Styles:   styles,
		Model:    h.Summarizer.Model(),
		MaxSize:  formatSize(h.MaxUploadBytes),
		Idle:     msgIdle,
	}
}

// Index renders the empty page.
// GET /
func (h *Handler) Index(c *gin.Context) {
	h.renderPage(c, http.StatusOK, h.newPageView(summary.Options{}))
}

// formOptions keeps whatever settings of a rejected form are still usable
// so the error page does not reset the sidebar. Invalid values fall back
// to the defaults.
func formOptions(c *gin.Context) summary.Options {
	var opts summary.Options
	if n, err := strconv.Atoi(strings.TrimSpace(c.PostForm("length"))); err == nil &&
		n >= summary.MinWords && n <= summary.MaxWords {
		opts.Words = n
	}
	if style, err := summary.ParseStyle(c.PostForm("style")); err == nil {
		opts.Style = style
	}
	return opts
}

// SummarizeForm processes an upload from the HTML form.
// POST /
func (h *Handler) SummarizeForm(c *gin.Context) {
	up, reqErr := h.openUpload(c)
	if reqErr != nil {
		view := h.newPageView(formOptions(c))
		view.Error = "❌ " + reqErr.message
		h.renderPage(c, reqErr.status, view)
		return
	}
	defer up.Close()

	opts, reqErr := parseOptions(c)
	if reqErr != nil {
		view := h.newPageView(formOptions(c))
		view.Error = "❌ " + reqErr.message
		h.renderPage(c, reqErr.status, view)
		return
	}

	view := h.newPageView(opts)
	view.Idle = ""
	view.Uploaded = true
	view.Filename = up.filename

	out, err := h.Pipeline.Process(c.Request.Context(), up.filename, up.body, opts)
	if err != nil {
		log.Printf("❌ [%s] Processing failed for %s: %v", middleware.GetRequestID(c), up.filename, err)
		resp := processingError(err)
		view.Error = "❌ " + resp.Message
		view.Progress = pipeline.ProgressReset
		h.renderPage(c, resp.Code, view)
		return
	}

	view.Success = msgUploaded
	view.Progress = out.Progress
	view.PageCount = out.PageCount
	view.CharCount = out.CharCount
	view.Text = out.Text

	switch {
	case out.Summarized():
		view.SummaryHTML = h.Renderer.HTML(out.Summary.Summary)
		view.DownloadURL = downloadURL(out.Summary.Summary)
		view.Confetti = true
	case out.Warning != "":
		view.Warning = "⚠️ " + out.Warning
	default:
		view.Error = "❌ Error generating summary: " + out.SummaryErr.Error()
	}

	h.renderPage(c, http.StatusOK, view)
}

// downloadURL encodes the summary as a text/plain data URI for summary.txt.
func downloadURL(text string) template.URL {
	// The value is built entirely from base64 output, so it cannot break out of the href.
	return template.URL("data:text/plain;charset=utf-8;base64," + base64.StdEncoding.EncodeToString([]byte(text))) //nolint:gosec
}

func (h *Handler) renderPage(c *gin.Context, status int, view *pageView) {
	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, view); err != nil {
		log.Printf("❌ Failed to render page: %v", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}
