package analysis

import (
	"strings"

	"github.com/antzucaro/matchr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Validation gate thresholds
const (
	silenceEnergyThreshold = 0.001
	minDurationSeconds     = 0.3
	maxDurationSeconds     = 5.0
	minSimilarity          = 0.4
)

// ValidationOutcome is the terminal result of the pre-scoring sanity
// checks. On a failed outcome the caller reports Score directly as the
// overall score and skips phoneme scoring.
type ValidationOutcome struct {
	Passed bool    `json:"passed"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`

	// Levenshtein distance between the folded strings, kept as a
	// diagnostic only; it does not influence the score
	EditDistance int `json:"edit_distance"`
}

var turkishLower = cases.Lower(language.Turkish)

// foldTurkish lowercases with Turkish casing rules so dotted and
// dotless I compare correctly
func foldTurkish(s string) string {
	return turkishLower.String(strings.TrimSpace(s))
}

// Validate runs the ordered gate rules; the first failing rule wins.
func Validate(features *AudioFeatures, recognized, target string) ValidationOutcome {
	if features.EnergyMean < silenceEnergyThreshold {
		return ValidationOutcome{Passed: false, Score: 0.0, Reason: "no speech detected"}
	}
	if features.Duration < minDurationSeconds {
		return ValidationOutcome{Passed: false, Score: 0.1, Reason: "audio too short"}
	}
	if features.Duration > maxDurationSeconds {
		return ValidationOutcome{Passed: false, Score: 0.2, Reason: "audio too long"}
	}

	rec := foldTurkish(recognized)
	tgt := foldTurkish(target)

	if rec == "" {
		return ValidationOutcome{Passed: false, Score: 0.0, Reason: "speech not recognized"}
	}

	distance := matchr.Levenshtein(rec, tgt)

	if rec == tgt {
		return ValidationOutcome{Passed: true, Score: 1.0, EditDistance: distance}
	}
	if strings.Contains(rec, tgt) || strings.Contains(tgt, rec) {
		return ValidationOutcome{Passed: true, Score: 0.9, EditDistance: distance}
	}

	similarity := TextSimilarity(rec, tgt)
	if similarity < minSimilarity {
		return ValidationOutcome{Passed: false, Score: 0.3, Reason: "word mismatch", EditDistance: distance}
	}

	return ValidationOutcome{Passed: true, Score: 0.5 + 0.5*similarity, EditDistance: distance}
}

// TextSimilarity counts how many target characters appear in the
// recognized text and divides by the longer string's length. Inputs
// are expected to be case folded already.
func TextSimilarity(recognized, target string) float64 {
	recRunes := []rune(recognized)
	tgtRunes := []rune(target)

	longer := len(recRunes)
	if len(tgtRunes) > longer {
		longer = len(tgtRunes)
	}
	if longer == 0 {
		return 0
	}

	present := make(map[rune]bool, len(recRunes))
	for _, r := range recRunes {
		present[r] = true
	}

	matched := 0
	for _, r := range tgtRunes {
		if present[r] {
			matched++
		}
	}

	return float64(matched) / float64(longer)
}

// ConfidenceProxy manufactures a confidence value from text
// similarity. Recognizer engines used here expose no genuine
// posterior confidence, so the output carries a confidence_source
// label downstream.
func ConfidenceProxy(recognized, target string) float64 {
	rec := foldTurkish(recognized)
	tgt := foldTurkish(target)

	if rec == "" {
		return 0.0
	}
	if rec == tgt {
		return 0.95
	}
	if strings.Contains(rec, tgt) || strings.Contains(tgt, rec) {
		return 0.90
	}

	return 0.5 + 0.4*TextSimilarity(rec, tgt)
}
