// Package pdf provides PDF text extraction.
//
// We use the ledongthuc/pdf library for text extraction.
// It's a pure Go implementation; no CGO or external dependencies required.
// pdfcpu is used alongside it only to read the page tree, because it copes
// with damaged cross-reference tables better than ledongthuc/pdf does.
package pdf

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnreadablePDF is returned when the file cannot be parsed as a PDF at all.
var ErrUnreadablePDF = errors.New("unreadable PDF")

// ExtractionResult holds the output from a PDF text extraction.
type ExtractionResult struct {
	Text      string // Concatenated plain text of every page, in page order
	PageCount int    // Number of pages
	WordCount int    // Word count
	CharCount int    // Characters (Unicode code points) in Text
}

// Extractor pulls plain text out of a PDF file on disk.
type Extractor struct{}

var disableConfigDir sync.Once

// NewExtractor creates a new extractor.
func NewExtractor() *Extractor {
	// pdfcpu would otherwise create ~/.config/pdfcpu on first use.
	disableConfigDir.Do(api.DisableConfigDir)
	return &Extractor{}
}

// ExtractFile opens the PDF at path and concatenates the plain text of every
// page in order. Pages without extractable text (scans, images) contribute
// nothing. There is no OCR fallback and no layout awareness.
func (e *Extractor) ExtractFile(path string) (result *ExtractionResult, err error) {
	// ledongthuc/pdf panics on some malformed inputs instead of returning errors.
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %v", ErrUnreadablePDF, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	if n, err := probePageCount(path); err == nil {
		pageCount = n
	} else {
		log.Printf("⚠️  pdfcpu could not read page tree (%v); using %d pages", err, pageCount)
	}

	var allText strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			// Some pages have images only; skip them rather than fail the document.
			log.Printf("⚠️  Page %d: text extraction failed: %v", i, err)
			continue
		}
		allText.WriteString(text)
	}

	text := allText.String()
	return &ExtractionResult{
		Text:      text,
		PageCount: pageCount,
		WordCount: countWords(text),
		CharCount: utf8.RuneCountInString(text),
	}, nil
}

// probePageCount reads the page count with pdfcpu.
func probePageCount(path string) (int, error) {
	return api.PageCountFile(path)
}

// countWords counts the number of words in a text string.
func countWords(text string) int {
	return len(strings.Fields(text))
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
