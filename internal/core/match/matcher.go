package match

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/quotation-tracker/constants"
	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

// Decoder turns a document's bytes into its text, pages concatenated in order.
type Decoder interface {
	DecodeText(ctx context.Context, document []byte) (string, error)
}

// Matcher locates each purchase-order line item's quoted price in a supplier document.
// It holds no state between calls and is safe for concurrent use if its Decoder is.
type Matcher struct {
	decoder Decoder
	logger  *slog.Logger
}

func NewMatcher(decoder Decoder, logger *slog.Logger) *Matcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Matcher{decoder: decoder, logger: logger}
}

// Parse decodes document and matches items against its text.
// A document that cannot be decoded yields an error wrapping
// common.ErrDecodeFailure and no result. A document without text is not an
// error: the result has TextExtracted=false.
func (m *Matcher) Parse(ctx context.Context, document []byte, items []entity.LineItem) (entity.DocumentParseResult, error) {
	start := time.Now()
	text, err := m.decoder.DecodeText(ctx, document)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return entity.DocumentParseResult{}, ctxErr
		}
		if !errors.Is(err, common.ErrDecodeFailure) && !errors.Is(err, common.ErrDecoderUnavailable) {
			err = fmt.Errorf("%w: %w", common.ErrDecodeFailure, err)
		}
		m.logger.Warn("document decode failed", "bytes", len(document), "error", err)
		return entity.DocumentParseResult{}, err
	}
	if err := ctx.Err(); err != nil {
		return entity.DocumentParseResult{}, err
	}

	res := m.ParseText(text, items)
	m.logger.Debug("document parsed",
		"items", len(items),
		"matched", res.MatchedCount(),
		"text_extracted", res.TextExtracted,
		"text_runes", len([]rune(text)),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ParseText matches items against already extracted text.
func (m *Matcher) ParseText(text string, items []entity.LineItem) entity.DocumentParseResult {
	if strings.TrimSpace(text) == "" {
		return noText(items)
	}

	doc := NewDocument(text)
	res := entity.DocumentParseResult{
		PerItem:       make([]entity.MatchResult, 0, len(items)),
		TextExtracted: true,
	}
	for _, it := range items {
		res.PerItem = append(res.PerItem, doc.matchItem(it))
	}
	res.PaymentTerms = doc.Field(PaymentTermKeywords)
	res.DeliveryTerm = doc.Field(DeliveryTermKeywords)
	return res
}

func (d Document) matchItem(it entity.LineItem) entity.MatchResult {
	out := entity.MatchResult{LineItemID: it.ID, Confidence: constants.ConfidenceNone}

	c, found := Locate(d.Folded, Tokens(it.Description))
	out.Confidence = ClassifyCluster(c, found)
	if !found {
		return out
	}
	if prices := ExtractPrices(d.slice(c.Position, PriceWindow)); len(prices) > 0 {
		out.UnitPrice = prices[0]
		out.Matched = true
	}
	return out
}

func noText(items []entity.LineItem) entity.DocumentParseResult {
	res := entity.DocumentParseResult{PerItem: make([]entity.MatchResult, len(items))}
	for i, it := range items {
		res.PerItem[i] = entity.MatchResult{LineItemID: it.ID, Confidence: constants.ConfidenceNone}
	}
	return res
}
