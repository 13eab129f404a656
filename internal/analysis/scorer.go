package analysis

import (
	"math"
)

// Phoneme score bounds. The floor keeps one bad descriptor match from
// zeroing an entire utterance.
const (
	baseScore  = 0.7
	scoreFloor = 0.3
	scoreCeil  = 1.0
)

// ScoringStrategy scores a single phoneme against the whole-utterance
// feature bundle. Implementations must be deterministic.
type ScoringStrategy interface {
	Name() string
	Score(phoneme string, features *AudioFeatures) float64
}

// HeuristicScorer scores phonemes from formant proximity (vowels) and
// class-specific spectral evidence (consonants). Every phoneme is
// scored against the same global feature bundle; there is no temporal
// alignment of phonemes to audio.
type HeuristicScorer struct{}

// NewHeuristicScorer creates the default scoring strategy
func NewHeuristicScorer() *HeuristicScorer {
	return &HeuristicScorer{}
}

func (s *HeuristicScorer) Name() string {
	return "heuristic"
}

// Score returns a value in [0.3, 1.0]. Never fails; unknown symbols
// receive the base score.
func (s *HeuristicScorer) Score(phoneme string, features *AudioFeatures) float64 {
	score := baseScore

	if target, ok := VowelTarget(phoneme); ok {
		// Formant data is a stronger vowel cue than the base prior,
		// but only when the estimator produced usable values
		if features.Formants.F1Mean > 0 {
			e1 := math.Abs(features.Formants.F1Mean-target.F1) / target.F1
			e2 := math.Abs(features.Formants.F2Mean-target.F2) / target.F2
			formantScore := 1.0 - math.Min(1.0, (e1+e2)/2.0)
			score = 0.3*baseScore + 0.7*formantScore
		}
	} else {
		if IsPlosive(phoneme) && features.EnergyMean > plosiveEnergyThreshold {
			score += 0.1
		}
		if IsFricative(phoneme) && features.SpectralCentroid > fricativeCentroidMinHertz {
			score += 0.1
		}
		if IsNasal(phoneme) && features.SpectralCentroid < nasalCentroidMaxHertz {
			score += 0.1
		}
	}

	return clamp(score, scoreFloor, scoreCeil)
}

// ScoreSequence scores every phoneme of the target sequence. Duplicate
// symbols collapse to one entry.
func ScoreSequence(strategy ScoringStrategy, phonemes []string, features *AudioFeatures) map[string]float64 {
	scores := make(map[string]float64, len(phonemes))
	for _, p := range phonemes {
		scores[p] = strategy.Score(p, features)
	}
	return scores
}

// AggregateScores combines per-phoneme scores into one utterance
// score, weighting the worst phoneme more heavily than the average so
// one badly mispronounced phoneme lowers the total. Empty input
// yields 0.
func AggregateScores(scores map[string]float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	lowest := math.Inf(1)
	for _, s := range scores {
		sum += s
		if s < lowest {
			lowest = s
		}
	}
	mean := sum / float64(len(scores))

	return 0.7*mean + 0.3*lowest
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
