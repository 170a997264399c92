package entity

// LineItem is one expected purchase-order line. It is supplied by the purchase
// order and never mutated here; identity is ID.
type LineItem struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
}
