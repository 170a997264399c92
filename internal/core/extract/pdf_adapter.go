package extract

import (
	"context"
	"log/slog"
)

// PDFAdapter exposes a TextExtractor as the matcher's document decoder.
type PDFAdapter struct {
	extractor TextExtractor
	logger    *slog.Logger
}

func NewPDFAdapter(e TextExtractor, l *slog.Logger) *PDFAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &PDFAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *PDFAdapter) DecodeText(ctx context.Context, document []byte) (string, error) {
	r, err := a.extractor.ExtractPDF(ctx, document)
	if err != nil {
		return "", err
	}
	if len(r.Warnings) > 0 {
		a.logger.Warn("pdf extracted with warnings", "pages", r.Pages, "warnings", r.Warnings)
	}
	a.logger.Debug("pdf decoded",
		"pages", r.Pages,
		"method", r.Method,
		"duration_ms", r.Duration.Milliseconds(),
	)
	return r.Text, nil
}
