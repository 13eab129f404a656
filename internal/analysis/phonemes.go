package analysis

// FormantTarget holds the expected first and second formant centers
// for a vowel, in Hz
type FormantTarget struct {
	F1 float64 `json:"f1"`
	F2 float64 `json:"f2"`
}

// turkishVowelFormants maps Turkish vowel IPA symbols to typical adult
// formant centers. Values follow published Turkish vowel space
// measurements.
var turkishVowelFormants = map[string]FormantTarget{
	"a": {F1: 800, F2: 1300},
	"e": {F1: 550, F2: 1900},
	"ɛ": {F1: 650, F2: 1800},
	"i": {F1: 300, F2: 2300},
	"o": {F1: 500, F2: 900},
	"u": {F1: 350, F2: 800},
	"y": {F1: 300, F2: 1800},
	"ɯ": {F1: 400, F2: 1200},
	"ø": {F1: 450, F2: 1500},
}

// Consonant classes with their acoustic evidence thresholds
var (
	plosives   = map[string]bool{"p": true, "t": true, "k": true, "b": true, "d": true, "ɡ": true}
	fricatives = map[string]bool{"f": true, "s": true, "ʃ": true, "v": true, "z": true, "ʒ": true, "h": true}
	nasals     = map[string]bool{"m": true, "n": true}
)

// Evidence thresholds for consonant class bonuses
const (
	plosiveEnergyThreshold    = 0.01
	fricativeCentroidMinHertz = 2000.0
	nasalCentroidMaxHertz     = 1500.0
)

// VowelTarget returns the formant target for a vowel symbol
func VowelTarget(phoneme string) (FormantTarget, bool) {
	target, ok := turkishVowelFormants[phoneme]
	return target, ok
}

// IsPlosive reports whether the symbol belongs to the plosive class
func IsPlosive(phoneme string) bool { return plosives[phoneme] }

// IsFricative reports whether the symbol belongs to the fricative class
func IsFricative(phoneme string) bool { return fricatives[phoneme] }

// IsNasal reports whether the symbol belongs to the nasal class
func IsNasal(phoneme string) bool { return nasals[phoneme] }
