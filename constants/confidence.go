package constants

// Confidence grades how well a line item's description was found in a document.
// It says nothing about whether a price was extracted.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// Recall thresholds for the confidence tiers. Boundaries belong to the higher tier.
const (
	HighRecallThreshold   = 0.8
	MediumRecallThreshold = 0.5
)

var confidenceRank = map[Confidence]int{
	ConfidenceNone:   0,
	ConfidenceLow:    1,
	ConfidenceMedium: 2,
	ConfidenceHigh:   3,
}

// AtLeast reports whether c is the same tier as min or a higher one.
func (c Confidence) AtLeast(min Confidence) bool {
	return confidenceRank[c] >= confidenceRank[min]
}
