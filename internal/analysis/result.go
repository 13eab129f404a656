package analysis

// FeatureSummary is the compact feature view included in results
type FeatureSummary struct {
	Duration   float64 `json:"duration"`
	PitchMean  float64 `json:"pitch_mean"`
	EnergyMean float64 `json:"energy_mean"`
	F1         float64 `json:"f1"`
	F2         float64 `json:"f2"`
	F3         float64 `json:"f3"`
}

// AnalysisResult is the output record of one analysis request. Built
// entirely within the request and never mutated afterwards;
// persistence is the caller's concern.
type AnalysisResult struct {
	Word           string `json:"word"`
	RecognizedText string `json:"recognized_text"`

	// Manufactured from text similarity, not a model posterior
	Confidence       float64 `json:"confidence"`
	ConfidenceSource string  `json:"confidence_source"`

	Phonemes      []string           `json:"phonemes"`
	PhonemeScores map[string]float64 `json:"phoneme_scores"`
	PhonemeCount  int                `json:"phoneme_count"`

	Overall float64 `json:"overall_score"`
	Grade   string  `json:"grade"`

	Features FeatureSummary `json:"features"`
	Method   string         `json:"analysis_method"`

	// Set when the validation gate rejected the attempt
	ValidationMessage string `json:"validation_message,omitempty"`
}

func summarize(f *AudioFeatures) FeatureSummary {
	return FeatureSummary{
		Duration:   Round3(f.Duration),
		PitchMean:  Round3(f.PitchMean),
		EnergyMean: Round3(f.EnergyMean),
		F1:         Round3(f.Formants.F1),
		F2:         Round3(f.Formants.F2),
		F3:         Round3(f.Formants.F3),
	}
}
