// export.go handles summary downloads in multiple formats.
//
// Supported formats:
//   - txt: plain text summary (summary.txt)
//   - md:  Markdown with a small metadata header
//
// Nothing is stored server-side, so the client posts back the summary it
// received from POST /api/v1/summaries and gets it back as an attachment.
package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/models"
)

// defaultExportName is the download name used when no PDF name is given.
const defaultExportName = "summary"

// ExportSummary returns a summary as a file download.
// POST /api/v1/summaries/export?format=txt|md
//
// Response headers are set for file download:
//   - Content-Type: appropriate MIME type
//   - Content-Disposition: attachment with filename
func (h *Handler) ExportSummary(c *gin.Context) {
	format := c.DefaultQuery("format", "txt")

	// Validate format before reading the body
	validFormats := map[string]bool{"txt": true, "md": true}
	if !validFormats[format] {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_format",
			Message: "Supported formats: txt, md",
			Code:    http.StatusBadRequest,
		})
		return
	}

	var req models.ExportSummaryRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Summary) == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Request body must be JSON with a non-empty 'summary' field",
			Code:    http.StatusBadRequest,
		})
		return
	}

	switch format {
	case "txt":
		exportTXT(c, req.Summary)
	case "md":
		exportMarkdown(c, req, exportName(req.Filename))
	}
}

// exportTXT returns the summary exactly as generated, as summary.txt.
func exportTXT(c *gin.Context, text string) {
	c.Header("Content-Disposition", `attachment; filename="summary.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(text))
}

// exportMarkdown returns the summary as Markdown with a metadata header.
func exportMarkdown(c *gin.Context, req models.ExportSummaryRequest, filename string) {
	var sb strings.Builder

	title := "Summary"
	if req.Filename != "" {
		title = "Summary of " + req.Filename
	}
	sb.WriteString(fmt.Sprintf("# %s\n\n", title))
	sb.WriteString(fmt.Sprintf("_Exported %s_\n\n", time.Now().UTC().Format("2006-01-02 15:04:05 MST")))
	sb.WriteString("---\n\n")
	sb.WriteString(strings.TrimSpace(req.Summary))
	sb.WriteString("\n")

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-summary.md"`, filename))
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(sb.String()))
}

// exportName derives a download name from the original PDF name.
func exportName(pdfName string) string {
	name := strings.TrimSuffix(pdfName, filepath.Ext(pdfName))
	name = sanitizeFilename(name)
	if name == "" {
		return defaultExportName
	}
	return name
}

// sanitizeFilename removes characters that aren't safe for filenames.
// Go Pattern: Keep it simple. Replace unsafe characters with hyphens
// and trim the result. We don't need a full filesystem-safe sanitizer
// since this is just for the Content-Disposition header.
func sanitizeFilename(name string) string {
	// Replace common unsafe characters
	replacer := strings.NewReplacer(
		"/", "-", "\\", "-", ":", "-", "*", "-",
		"?", "-", "\"", "-", "<", "-", ">", "-",
		"|", "-", "\n", " ", "\r", "",
	)
	name = replacer.Replace(name)

	// Collapse multiple hyphens/spaces
	for strings.Contains(name, "  ") {
		name = strings.ReplaceAll(name, "  ", " ")
	}
	for strings.Contains(name, "--") {
		name = strings.ReplaceAll(name, "--", "-")
	}

	name = strings.TrimSpace(name)

	// Limit length without splitting a multi-byte character
	if len(name) > 100 {
		n := 100
		for n > 0 && !utf8.RuneStart(name[n]) {
			n--
		}
		name = name[:n]
	}

	return name
}
