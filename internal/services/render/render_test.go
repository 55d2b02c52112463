package render

import (
	"strings"
	"testing"
)

func TestHTML(t *testing.T) {
	r := New()

	tests := []struct {
		name    string
		input   string
		want    []string
		notWant []string
	}{
		{
			name:  "bullet list",
			input: "- first point\n- second point",
			want:  []string{"<ul>", "<li>first point</li>", "<li>second point</li>"},
		},
		{
			name:  "emphasis",
			input: "A **bold** claim.",
			want:  []string{"<strong>bold</strong>"},
		},
		{
			name:    "script is stripped",
			input:   "Hello <script>alert(1)</script> world",
			notWant: []string{"<script", "alert(1)</script>"},
		},
		{
			name:    "event handlers are stripped",
			input:   `<img src="x.png" onerror="alert(1)">`,
			notWant: []string{"onerror"},
		},
		{
			name:    "javascript links are stripped",
			input:   "[click](javascript:alert(1))",
			notWant: []string{"javascript:"},
		},
		{
			name:  "external links get nofollow",
			input: "[site](https://example.com)",
			want:  []string{`href="https://example.com"`, `rel="nofollow`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.HTML(tt.input))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("HTML(%q) = %q, missing %q", tt.input, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("HTML(%q) = %q, should not contain %q", tt.input, got, nw)
				}
			}
		})
	}
}

func TestHTMLEmpty(t *testing.T) {
	if got := New().HTML("  \n "); got != "" {
		t.Errorf("HTML(blank) = %q, want empty", got)
	}
}
