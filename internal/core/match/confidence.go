package match

import "github.com/joseph-ayodele/quotation-tracker/constants"

// Classify maps a recall score to its confidence tier.
func Classify(recall float64) constants.Confidence {
	switch {
	case recall >= constants.HighRecallThreshold:
		return constants.ConfidenceHigh
	case recall >= constants.MediumRecallThreshold:
		return constants.ConfidenceMedium
	case recall > 0:
		return constants.ConfidenceLow
	default:
		return constants.ConfidenceNone
	}
}

// ClassifyCluster is Classify for a Locate result.
func ClassifyCluster(c Cluster, found bool) constants.Confidence {
	if !found {
		return constants.ConfidenceNone
	}
	return Classify(c.Recall)
}
