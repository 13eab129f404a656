package analysis

import "math"

// FusionPolicy names a score fusion formula. The two policies come
// from different generations of the scoring pipeline and are not
// equivalent, so the active one is an explicit configuration choice.
type FusionPolicy string

const (
	// FusionTwoFactor fuses recognizer confidence with the acoustic
	// score. Used when no validation gate precedes scoring.
	FusionTwoFactor FusionPolicy = "two_factor"

	// FusionThreeFactor additionally weighs the validation score in.
	// The production default.
	FusionThreeFactor FusionPolicy = "three_factor"
)

// Acoustic fallback when the phoneme sequence was empty
const emptySequenceAcoustic = 0.7

// Fuse combines recognizer confidence, acoustic score, and validation
// score into the final overall score according to the policy
func Fuse(policy FusionPolicy, confidence, acoustic, validation float64) float64 {
	switch policy {
	case FusionTwoFactor:
		return 0.4*confidence + 0.6*acoustic
	default:
		return 0.3*confidence + 0.5*acoustic + 0.2*validation
	}
}

// AcousticScore reduces per-phoneme scores to the fusion input: the
// mean score, or the fixed fallback for an empty sequence
func AcousticScore(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return emptySequenceAcoustic
	}

	sum := 0.0
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}

// Grade maps an overall score to its letter grade. Thresholds are
// exact: 0.9 is an A, anything below is a B at best.
func Grade(overall float64) string {
	switch {
	case overall >= 0.9:
		return "A"
	case overall >= 0.8:
		return "B"
	case overall >= 0.7:
		return "C"
	case overall >= 0.6:
		return "D"
	default:
		return "F"
	}
}

// Round3 rounds to three decimals for output
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
