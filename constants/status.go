package constants

// QuotationStatus is the lifecycle state of a quotation, derived from which
// supplier sheets have responded.
type QuotationStatus string

// Stable values (store these exact strings in DB).
const (
	StatusNotStarted QuotationStatus = "not-started" // no supplier responded yet
	StatusPartial    QuotationStatus = "partial"     // some, not all, responded
	StatusComplete   QuotationStatus = "complete"    // every invited supplier responded
)

// Valid reports whether s is one of the known statuses.
func (s QuotationStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusPartial, StatusComplete:
		return true
	}
	return false
}
