package entity

import (
	"time"

	"github.com/joseph-ayodele/quotation-tracker/constants"
)

// ItemPrice is a supplier's unit price for one line item, referenced by id.
type ItemPrice struct {
	LineItemID string  `json:"line_item_id"`
	UnitPrice  float64 `json:"unit_price"`
}

// SupplierSheet is one invited supplier's answer within a quotation.
// Total and IsWinner are derived and recomputed whenever any sheet changes.
type SupplierSheet struct {
	SupplierID   string      `json:"supplier_id"`
	SupplierName string      `json:"supplier_name,omitempty"`
	ItemPrices   []ItemPrice `json:"item_prices"`
	PaymentTerms string      `json:"payment_terms"`
	DeliveryTerm string      `json:"delivery_term"`
	Total        float64     `json:"total"`
	Responded    bool        `json:"responded"`
	IsWinner     bool        `json:"is_winner"`
	RespondedAt  *time.Time  `json:"responded_at,omitempty"`
}

// PriceFor returns the sheet's unit price for a line item, or 0.
func (s SupplierSheet) PriceFor(lineItemID string) float64 {
	for _, p := range s.ItemPrices {
		if p.LineItemID == lineItemID {
			return p.UnitPrice
		}
	}
	return 0
}

// Quotation is a request for prices against one purchase order, sent to
// several suppliers. It owns its line items and supplier sheets.
type Quotation struct {
	ID             string                    `json:"id"`
	Number         string                    `json:"number"`
	LineItems      []LineItem                `json:"line_items"`
	SupplierSheets []SupplierSheet           `json:"supplier_sheets"`
	Status         constants.QuotationStatus `json:"status"`
	CreatedAt      time.Time                 `json:"created_at"`
	UpdatedAt      time.Time                 `json:"updated_at"`
}

// Sheet returns the index of a supplier's sheet, or -1.
func (q *Quotation) Sheet(supplierID string) int {
	for i := range q.SupplierSheets {
		if q.SupplierSheets[i].SupplierID == supplierID {
			return i
		}
	}
	return -1
}

// LineItem looks up a line item by id.
func (q *Quotation) LineItem(id string) (LineItem, bool) {
	for _, it := range q.LineItems {
		if it.ID == id {
			return it, true
		}
	}
	return LineItem{}, false
}

// Clone returns a deep copy so callers can mutate without touching q.
func (q *Quotation) Clone() *Quotation {
	c := *q
	c.LineItems = append([]LineItem(nil), q.LineItems...)
	c.SupplierSheets = make([]SupplierSheet, len(q.SupplierSheets))
	for i, s := range q.SupplierSheets {
		s.ItemPrices = append([]ItemPrice(nil), s.ItemPrices...)
		if s.RespondedAt != nil {
			t := *s.RespondedAt
			s.RespondedAt = &t
		}
		c.SupplierSheets[i] = s
	}
	return &c
}
