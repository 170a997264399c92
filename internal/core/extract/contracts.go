package extract

import (
	"context"

	"github.com/joseph-ayodele/quotation-tracker/internal/core/ocr"
)

// TextExtractor turns document bytes into text.
type TextExtractor interface {
	ExtractPDF(ctx context.Context, data []byte) (ocr.ExtractionResult, error)
}
