package ocr

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/quotation-tracker/constants"
)

type Config struct {
	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	MaxPages  int    // 0 = no limit
	TempDir   string // where uploaded bytes are spooled; "" = os.TempDir()
}

type ExtractionResult struct {
	Text       string
	Pages      int
	SourceType string // constants.PDF
	Method     string // "pdf-text"
	Duration   time.Duration
	Warnings   []string
}

// Extractor turns supplier quote PDFs into text with poppler's pdftotext.
type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftotext == "" {
		cfg.Pdftotext = "pdftotext"
	}
	return &Extractor{cfg: cfg, runner: newExecRunner(logger), logger: logger}
}

// WithRunner swaps the command runner, for tests.
func (e *Extractor) WithRunner(r Runner) *Extractor {
	e.runner = r
	return e
}

// ExtractPDF decodes a PDF held in memory.
func (e *Extractor) ExtractPDF(ctx context.Context, data []byte) (ExtractionResult, error) {
	start := time.Now()
	e.logger.Debug("starting pdf text extraction", "bytes", len(data))
	res, err := e.extractPDF(ctx, data)
	res.SourceType = constants.PDF
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Error("pdf text extraction failed", "bytes", len(data), "error", err)
		return res, err
	}
	e.logger.Debug("pdf text extraction ok",
		"pages", res.Pages,
		"runes", len([]rune(res.Text)),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
