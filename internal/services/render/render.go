// Package render turns model output into safe HTML for the web page.
//
// Models answer in Markdown ("- point", "**bold**"). The text is rendered
// with goldmark and then passed through a bluemonday UGC policy, because the
// model can echo anything that was in the PDF, including raw HTML.
package render

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Renderer converts Markdown to sanitized HTML. It is safe for concurrent use.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
}

// New creates a renderer with GitHub-flavoured tables, strikethrough and autolinks.
func New() *Renderer {
	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy: policy,
	}
}

// HTML renders src. On a Markdown error the text is shown escaped inside <pre>.
func (r *Renderer) HTML(src string) template.HTML {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return template.HTML("<pre>" + template.HTMLEscapeString(src) + "</pre>")
	}
	// Sanitized output is the only thing we ever mark as trusted HTML.
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) //nolint:gosec
}
