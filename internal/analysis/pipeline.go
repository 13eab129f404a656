package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

const confidenceSourceLabel = "text_similarity"

// Recognizer converts audio to free text. A no-match result is empty
// text with a nil error; an error means the engine itself is
// unavailable.
type Recognizer interface {
	Recognize(ctx context.Context, clip *audio.Clip) (string, error)
}

// Phonemizer converts a target word to its reference phoneme sequence
type Phonemizer interface {
	Phonemize(ctx context.Context, word string) ([]string, error)
}

// PipelineOptions configures an analysis pipeline
type PipelineOptions struct {
	// Fusion policy; three-factor is the production default
	Policy FusionPolicy

	// When false the validation gate is skipped and the legacy
	// two-factor path always scores
	ValidationEnabled bool

	// Extraction rate, framing and descriptor widths; zero fields use
	// the production defaults
	Extractor ExtractorConfig
}

// Pipeline wires the extraction, validation, scoring, and fusion
// stages with the recognizer and phonemizer collaborators
type Pipeline struct {
	extractor  *FeatureExtractor
	scorer     ScoringStrategy
	recognizer Recognizer
	phonemizer Phonemizer
	opts       PipelineOptions
	logger     logging.Logger
}

// NewPipeline creates an analysis pipeline
func NewPipeline(recognizer Recognizer, phonemizer Phonemizer, scorer ScoringStrategy, opts PipelineOptions) *Pipeline {
	if scorer == nil {
		scorer = NewHeuristicScorer()
	}
	if opts.Policy == "" {
		opts.Policy = FusionThreeFactor
	}

	return &Pipeline{
		extractor:  NewFeatureExtractor(opts.Extractor),
		scorer:     scorer,
		recognizer: recognizer,
		phonemizer: phonemizer,
		opts:       opts,
		logger: logging.WithFields(logging.Fields{
			"component": "analysis_pipeline",
			"policy":    string(opts.Policy),
		}),
	}
}

// Analyze runs the full pipeline for one recording. targetPhonemes may
// be nil, in which case the phonemizer collaborator provides the
// sequence. All data is request-local; the returned result is not
// retained.
func (p *Pipeline) Analyze(ctx context.Context, clip *audio.Clip, word string, targetPhonemes []string) (*AnalysisResult, error) {
	logger := p.logger.WithFields(logging.Fields{
		"function": "Analyze",
		"word":     word,
	})
	logger.Debug("starting analysis")

	// Recognition and feature extraction are independent; run them in
	// parallel. Scoring needs both.
	var (
		features   *AudioFeatures
		recognized string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		f, err := p.extractor.Extract(clip)
		if err != nil {
			return err
		}
		features = f
		return nil
	})
	g.Go(func() error {
		if p.recognizer == nil {
			return NewAnalysisError(word, ErrCodeRecognizerUnavailable, "no recognizer configured", nil)
		}
		text, err := p.recognizer.Recognize(gctx, clip)
		if err != nil {
			return NewAnalysisError(word, ErrCodeRecognizerUnavailable, "recognizer failed", err)
		}
		recognized = text
		return nil
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, NewAnalysisError(word, ErrCodeTimeout, "analysis deadline exceeded", ctx.Err())
		}
		return nil, err
	}

	phonemes := targetPhonemes
	if len(phonemes) == 0 {
		if p.phonemizer == nil {
			return nil, NewAnalysisError(word, ErrCodePhonemizerUnavailable, "no phonemizer configured", nil)
		}
		seq, err := p.phonemizer.Phonemize(ctx, word)
		if err != nil {
			return nil, NewAnalysisError(word, ErrCodePhonemizerUnavailable, "phonemizer failed", err)
		}
		phonemes = seq
	}

	confidence := ConfidenceProxy(recognized, word)

	result := &AnalysisResult{
		Word:             word,
		RecognizedText:   recognized,
		Confidence:       Round3(confidence),
		ConfidenceSource: confidenceSourceLabel,
		Phonemes:         phonemes,
		PhonemeCount:     len(phonemes),
		Features:         summarize(features),
		Method:           p.methodTag(),
	}

	if p.opts.ValidationEnabled {
		outcome := Validate(features, recognized, word)
		if !outcome.Passed {
			// Rejection is a normal low-scoring outcome, not an error
			result.Overall = Round3(outcome.Score)
			result.Grade = "F"
			result.ValidationMessage = outcome.Reason
			logger.Info("attempt rejected by validation gate", logging.Fields{
				"reason": outcome.Reason,
				"score":  outcome.Score,
			})
			return result, nil
		}

		result.PhonemeScores = roundScores(ScoreSequence(p.scorer, phonemes, features))
		acoustic := AcousticScore(result.PhonemeScores)
		result.Overall = Round3(Fuse(p.opts.Policy, confidence, acoustic, outcome.Score))
	} else {
		result.PhonemeScores = roundScores(ScoreSequence(p.scorer, phonemes, features))
		acoustic := AcousticScore(result.PhonemeScores)
		result.Overall = Round3(Fuse(FusionTwoFactor, confidence, acoustic, 0))
	}

	result.Grade = Grade(result.Overall)

	logger.Info("analysis complete", logging.Fields{
		"overall":    result.Overall,
		"grade":      result.Grade,
		"recognized": recognized,
	})

	return result, nil
}

// ScoreOnly runs the heuristic path without recognition or
// validation: extract features, score the given phonemes, and apply
// the worst-phoneme weighted aggregate. Used by the offline feature
// inspection command and as the legacy scoring mode.
func (p *Pipeline) ScoreOnly(clip *audio.Clip, word string, phonemes []string) (*AnalysisResult, error) {
	features, err := p.extractor.Extract(clip)
	if err != nil {
		return nil, err
	}

	scores := roundScores(ScoreSequence(p.scorer, phonemes, features))
	overall := Round3(AggregateScores(scores))

	return &AnalysisResult{
		Word:          word,
		Phonemes:      phonemes,
		PhonemeCount:  len(phonemes),
		PhonemeScores: scores,
		Overall:       overall,
		Grade:         Grade(overall),
		Features:      summarize(features),
		Method:        "heuristic",
	}, nil
}

// ExtractFeatures exposes bare feature extraction for diagnostics
func (p *Pipeline) ExtractFeatures(clip *audio.Clip) (*AudioFeatures, error) {
	return p.extractor.Extract(clip)
}

func (p *Pipeline) methodTag() string {
	if p.opts.ValidationEnabled {
		return "stt_hybrid_" + string(p.opts.Policy) + "_" + p.scorer.Name()
	}
	return "stt_hybrid_" + string(FusionTwoFactor) + "_" + p.scorer.Name()
}

func roundScores(scores map[string]float64) map[string]float64 {
	rounded := make(map[string]float64, len(scores))
	for k, v := range scores {
		rounded[k] = Round3(v)
	}
	return rounded
}
