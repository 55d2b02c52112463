// Package pipeline runs one upload through the whole flow:
// temp file -> text extraction -> length check -> summarization.
//
// Processing is synchronous and scoped to a single request. The temp file
// is always removed before Process returns, whatever happened in between.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/Shimizu-Technology/pdf-summarizer/internal/metrics"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/summary"
	"github.com/Shimizu-Technology/pdf-summarizer/internal/services/upload"
)

// Progress milestones shown by the UI.
const (
	ProgressReset     = 0
	ProgressUploaded  = 10
	ProgressExtracted = 50
	ProgressDone      = 100
)

// InsufficientTextWarning is shown when a PDF has too little text to summarize.
const InsufficientTextWarning = "The PDF doesn't have enough readable text for summarization."

// TextExtractor pulls plain text from a PDF on disk.
type TextExtractor interface {
	ExtractFile(path string) (*pdf.ExtractionResult, error)
}

// Summarizer produces a summary from extracted text.
type Summarizer interface {
	Summarize(ctx context.Context, text string, opts summary.Options) (*summary.Result, error)
	ProviderName() string
}

// Config holds the pipeline's tunables.
type Config struct {
	TempDir      string // Where uploads are spooled; OS default when empty
	MinTextChars int    // Summaries are attempted only at or above this length
}

// Pipeline wires the extractor and the summarizer together.
type Pipeline struct {
	extractor  TextExtractor
	summarizer Summarizer
	metrics    *metrics.Metrics
	cfg        Config
}

// New creates a pipeline. m may be nil.
func New(ext TextExtractor, sum Summarizer, m *metrics.Metrics, cfg Config) *Pipeline {
	return &Pipeline{extractor: ext, summarizer: sum, metrics: m, cfg: cfg}
}

// Outcome is everything the presentation layer needs to render a result.
type Outcome struct {
	Filename  string
	PageCount int
	CharCount int
	WordCount int
	Text      string
	Options   summary.Options
	Progress  int

	// Warning is set when the text was too short and no summary was attempted.
	Warning string
	// Exactly one of Summary and SummaryErr is set when summarization ran.
	Summary    *summary.Result
	SummaryErr error

	Elapsed time.Duration
}

// Summarized reports whether a summary was produced.
func (o *Outcome) Summarized() bool { return o.Summary != nil }

// Process spools r to a temp file, extracts its text and, when there is
// enough of it, asks the summarizer for exactly one summary. Upload and
// extraction failures are returned as errors; a failed summary is reported
// in Outcome.SummaryErr with progress reset to zero.
func (p *Pipeline) Process(ctx context.Context, filename string, r io.Reader, opts summary.Options) (*Outcome, error) {
	start := time.Now()
	opts = opts.WithDefaults()

	out := &Outcome{Filename: filename, Options: opts, Progress: ProgressReset}

	res, err := p.extract(filename, r, func() { out.Progress = ProgressUploaded })
	if err != nil {
		p.metrics.RecordUpload(metrics.OutcomeExtractionFailed)
		return nil, err
	}

	out.Progress = ProgressExtracted
	out.Text = res.Text
	out.PageCount = res.PageCount
	out.CharCount = res.CharCount
	out.WordCount = res.WordCount

	if res.CharCount < p.cfg.MinTextChars {
		log.Printf("⚠️  %s: only %d characters of text; skipping summary", filename, res.CharCount)
		out.Warning = InsufficientTextWarning
		out.Elapsed = time.Since(start)
		p.metrics.RecordUpload(metrics.OutcomeInsufficientText)
		return out, nil
	}

	sumStart := time.Now()
	result, err := p.summarizer.Summarize(ctx, res.Text, opts)
	p.metrics.RecordSummary(p.summarizer.ProviderName(), err == nil, time.Since(sumStart))
	if err != nil {
		log.Printf("❌ Summary failed for %s: %v", filename, err)
		out.SummaryErr = err
		out.Progress = ProgressReset
		out.Elapsed = time.Since(start)
		p.metrics.RecordUpload(metrics.OutcomeSummaryFailed)
		return out, nil
	}

	out.Summary = result
	out.Progress = ProgressDone
	out.Elapsed = time.Since(start)
	p.metrics.RecordUpload(metrics.OutcomeSummarized)
	log.Printf("✅ Summarized %s (%d pages, %d chars) in %s", filename, res.PageCount, res.CharCount, out.Elapsed.Round(time.Millisecond))
	return out, nil
}

// Extract spools r to a temp file and returns its text without summarizing.
func (p *Pipeline) Extract(filename string, r io.Reader) (*pdf.ExtractionResult, error) {
	res, err := p.extract(filename, r, nil)
	if err != nil {
		p.metrics.RecordUpload(metrics.OutcomeExtractionFailed)
		return nil, err
	}
	p.metrics.RecordUpload(metrics.OutcomeExtracted)
	return res, nil
}

// extract owns the temp file lifecycle: create, extract, remove.
func (p *Pipeline) extract(filename string, r io.Reader, uploaded func()) (*pdf.ExtractionResult, error) {
	tf, err := upload.SaveTemp(p.cfg.TempDir, r)
	if err != nil {
		return nil, fmt.Errorf("save upload %s: %w", filename, err)
	}
	defer func() {
		if err := tf.Remove(); err != nil {
			log.Printf("⚠️  %v", err)
		}
	}()

	if uploaded != nil {
		uploaded()
	}
	log.Printf("📄 Received %s (%d bytes)", filename, tf.Size)

	res, err := p.extractor.ExtractFile(tf.Path)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", filename, err)
	}
	p.metrics.RecordExtraction(res.CharCount)
	return res, nil
}
