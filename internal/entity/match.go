package entity

import "github.com/joseph-ayodele/quotation-tracker/constants"

// MatchResult is the outcome of locating one line item's price in a document.
type MatchResult struct {
	LineItemID string               `json:"line_item_id"`
	UnitPrice  float64              `json:"unit_price"`
	Matched    bool                 `json:"matched"`
	Confidence constants.Confidence `json:"confidence"`
}

// DocumentParseResult is the output of parsing one supplier document.
// PerItem has the same order and length as the line items it was parsed for.
// When TextExtracted is false every other field is meaningless.
type DocumentParseResult struct {
	PerItem       []MatchResult `json:"per_item"`
	PaymentTerms  string        `json:"payment_terms"`
	DeliveryTerm  string        `json:"delivery_term"`
	TextExtracted bool          `json:"text_extracted"`
}

// ByLineItem indexes PerItem by line item id.
func (r DocumentParseResult) ByLineItem() map[string]MatchResult {
	out := make(map[string]MatchResult, len(r.PerItem))
	for _, m := range r.PerItem {
		out[m.LineItemID] = m
	}
	return out
}

// MatchedCount returns how many items got a price.
func (r DocumentParseResult) MatchedCount() int {
	n := 0
	for _, m := range r.PerItem {
		if m.Matched {
			n++
		}
	}
	return n
}
