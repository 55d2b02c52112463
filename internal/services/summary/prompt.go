package summary

import (
	"fmt"
	"strings"
)

// Style selects the shape of the generated summary.
type Style string

const (
	StyleBullet    Style = "bullet"
	StyleParagraph Style = "paragraph"
)

// Summary length bounds, in words. These match the settings slider.
const (
	MinWords     = 50
	MaxWords     = 500
	DefaultWords = 200
)

// ParseStyle accepts the API values ("bullet", "paragraph") as well as the
// labels shown in the settings panel ("Bullet Points", "Paragraph").
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bullet", "bullets", "bullet points":
		return StyleBullet, nil
	case "paragraph":
		return StyleParagraph, nil
	}
	return "", fmt.Errorf("unsupported summary style %q; use bullet or paragraph", s)
}

// Label is the human-readable name of the style.
func (s Style) Label() string {
	if s == StyleParagraph {
		return "Paragraph"
	}
	return "Bullet Points"
}

// instruction is the phrase interpolated into the prompt.
func (s Style) instruction() string {
	if s == StyleParagraph {
		return "a concise paragraph"
	}
	return "simple bullet points"
}

// Options configures how the summary should be generated.
type Options struct {
	Words int    // Target summary length in words
	Style Style  // Bullet points or paragraph
	Model string // Override the provider's default model
}

// Validate checks the options against the allowed ranges.
func (o Options) Validate() error {
	if o.Words < MinWords || o.Words > MaxWords {
		return fmt.Errorf("summary length must be between %d and %d words, got %d", MinWords, MaxWords, o.Words)
	}
	if o.Style != StyleBullet && o.Style != StyleParagraph {
		return fmt.Errorf("unsupported summary style %q", o.Style)
	}
	return nil
}

// WithDefaults fills zero values with the default length and style.
func (o Options) WithDefaults() Options {
	if o.Words == 0 {
		o.Words = DefaultWords
	}
	if o.Style == "" {
		o.Style = StyleBullet
	}
	return o
}

// BuildPrompt interpolates the style and word count into the fixed template.
// The document text is included in full; very large documents are left to
// the remote API's own limits.
func BuildPrompt(text string, opts Options) string {
	opts = opts.WithDefaults()
	return fmt.Sprintf("Summarize the following PDF content in %s (aim for ~%d words):\n\n%s",
		opts.Style.instruction(), opts.Words, text)
}
