package quotation

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/quotation-tracker/constants"
	"github.com/joseph-ayodele/quotation-tracker/internal/common"
	"github.com/joseph-ayodele/quotation-tracker/internal/entity"
)

// ApplyParseResult merges a parsed document into a supplier sheet and returns
// the merged copy. Only matched prices are written, so a price typed in by
// hand survives a later parse that could not find that item. Non-empty terms
// replace the sheet's terms.
func ApplyParseResult(sheet entity.SupplierSheet, result entity.DocumentParseResult) entity.SupplierSheet {
	out := sheet
	out.ItemPrices = append([]entity.ItemPrice(nil), sheet.ItemPrices...)
	if !result.TextExtracted {
		return out
	}

	byID := result.ByLineItem()
	seen := make(map[string]struct{}, len(out.ItemPrices))
	for i, p := range out.ItemPrices {
		seen[p.LineItemID] = struct{}{}
		if m, ok := byID[p.LineItemID]; ok && m.Matched {
			out.ItemPrices[i].UnitPrice = m.UnitPrice
		}
	}
	for _, m := range result.PerItem {
		if _, ok := seen[m.LineItemID]; !ok && m.Matched {
			out.ItemPrices = append(out.ItemPrices, entity.ItemPrice{LineItemID: m.LineItemID, UnitPrice: m.UnitPrice})
		}
	}

	if result.PaymentTerms != "" {
		out.PaymentTerms = result.PaymentTerms
	}
	if result.DeliveryTerm != "" {
		out.DeliveryTerm = result.DeliveryTerm
	}
	return out
}

type saveOptions struct {
	payment  *string
	delivery *string
	now      func() time.Time
}

// SaveOption tunes SaveSheet.
type SaveOption func(*saveOptions)

// WithTerms sets the sheet's payment and delivery terms along with the prices.
func WithTerms(payment, delivery string) SaveOption {
	return func(o *saveOptions) {
		o.payment = &payment
		o.delivery = &delivery
	}
}

// WithClock overrides time.Now for the responded/updated timestamps.
func WithClock(now func() time.Time) SaveOption {
	return func(o *saveOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// SaveSheet records a supplier's final prices and returns the updated
// quotation. q is left untouched: totals, winner flags and status of the
// returned value are recomputed together, so no caller ever sees a sheet
// saved with a stale total or status.
func SaveSheet(q *entity.Quotation, supplierID string, prices []entity.ItemPrice, opts ...SaveOption) (*entity.Quotation, error) {
	o := saveOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	idx := q.Sheet(supplierID)
	if idx < 0 {
		return nil, fmt.Errorf("supplier %q in quotation %s: %w", supplierID, q.ID, common.ErrNotFound)
	}
	if err := validatePrices(q, prices); err != nil {
		return nil, err
	}

	now := o.now()
	out := q.Clone()
	sheet := &out.SupplierSheets[idx]
	sheet.ItemPrices = alignPrices(out.LineItems, prices)
	if o.payment != nil {
		sheet.PaymentTerms = *o.payment
	}
	if o.delivery != nil {
		sheet.DeliveryTerm = *o.delivery
	}
	sheet.Total = SheetTotal(out.LineItems, sheet.ItemPrices)
	if !sheet.Responded {
		sheet.RespondedAt = &now
	}
	sheet.Responded = true

	RecomputeWinners(out)
	out.Status = RecomputeStatus(out.SupplierSheets)
	out.UpdatedAt = now
	return out, nil
}

func validatePrices(q *entity.Quotation, prices []entity.ItemPrice) error {
	known := make(map[string]struct{}, len(q.LineItems))
	for _, it := range q.LineItems {
		known[it.ID] = struct{}{}
	}
	v := common.NewValidator()
	seen := make(map[string]struct{}, len(prices))
	for i, p := range prices {
		v.Field(fmt.Sprintf("item_prices[%d].line_item_id", i), p.LineItemID, common.Required, common.OneOf(known))
		v.Field(fmt.Sprintf("item_prices[%d].unit_price", i), p.UnitPrice, common.NonNegative)
		if _, dup := seen[p.LineItemID]; dup {
			v.Field(fmt.Sprintf("item_prices[%d].line_item_id", i), p.LineItemID, duplicate)
		}
		seen[p.LineItemID] = struct{}{}
	}
	return v.Error()
}

func duplicate(fieldName string, value interface{}) *common.ValidationError {
	return &common.ValidationError{Field: fieldName, Value: value, Message: "appears more than once"}
}

// alignPrices returns one price per line item in line item order; items
// without a price get 0.
func alignPrices(items []entity.LineItem, prices []entity.ItemPrice) []entity.ItemPrice {
	byID := make(map[string]float64, len(prices))
	for _, p := range prices {
		byID[p.LineItemID] = p.UnitPrice
	}
	out := make([]entity.ItemPrice, len(items))
	for i, it := range items {
		out[i] = entity.ItemPrice{LineItemID: it.ID, UnitPrice: byID[it.ID]}
	}
	return out
}

// SheetTotal is Σ quantity × unit price over the line items, rounded to cents.
func SheetTotal(items []entity.LineItem, prices []entity.ItemPrice) float64 {
	byID := make(map[string]float64, len(prices))
	for _, p := range prices {
		byID[p.LineItemID] = p.UnitPrice
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(decimal.NewFromFloat(it.Quantity).Mul(decimal.NewFromFloat(byID[it.ID])))
	}
	return total.Round(2).InexactFloat64()
}

// RecomputeStatus derives the quotation status from which sheets responded.
// It is the only place a status is computed.
func RecomputeStatus(sheets []entity.SupplierSheet) constants.QuotationStatus {
	responded := 0
	for _, s := range sheets {
		if s.Responded {
			responded++
		}
	}
	switch {
	case responded == 0:
		return constants.StatusNotStarted
	case responded < len(sheets):
		return constants.StatusPartial
	default:
		return constants.StatusComplete
	}
}

// RecomputeWinners flags the overall winner and clears every other sheet.
func RecomputeWinners(q *entity.Quotation) {
	w := overallWinner(q.SupplierSheets)
	for i := range q.SupplierSheets {
		q.SupplierSheets[i].IsWinner = i == w
	}
}

// OverallWinner returns the responded sheet with the lowest positive total.
// On equal totals the sheet stored first wins.
func OverallWinner(q *entity.Quotation) (entity.SupplierSheet, bool) {
	w := overallWinner(q.SupplierSheets)
	if w < 0 {
		return entity.SupplierSheet{}, false
	}
	return q.SupplierSheets[w], true
}

func overallWinner(sheets []entity.SupplierSheet) int {
	best := -1
	for i, s := range sheets {
		if !s.Responded || s.Total <= 0 {
			continue
		}
		if best < 0 || s.Total < sheets[best].Total {
			best = i
		}
	}
	return best
}

// ItemBid is one supplier's price for one line item.
type ItemBid struct {
	SupplierID string
	UnitPrice  float64
}

// ItemWinner returns the cheapest positive unit price quoted for a line item
// among responded sheets, first sheet winning ties. It is derived on demand
// and never stored.
func ItemWinner(q *entity.Quotation, lineItemID string) (ItemBid, bool) {
	var best ItemBid
	found := false
	for _, s := range q.SupplierSheets {
		if !s.Responded {
			continue
		}
		p := s.PriceFor(lineItemID)
		if p <= 0 {
			continue
		}
		if !found || p < best.UnitPrice {
			best = ItemBid{SupplierID: s.SupplierID, UnitPrice: p}
			found = true
		}
	}
	return best, found
}
