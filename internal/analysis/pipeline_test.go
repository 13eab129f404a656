package analysis

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akustiklab/telaffuz/pkg/audio"
)

type stubRecognizer struct {
	text string
	err  error
}

func (s *stubRecognizer) Recognize(ctx context.Context, clip *audio.Clip) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.text, s.err
}

type stubPhonemizer struct {
	phonemes []string
	err      error
}

func (s *stubPhonemizer) Phonemize(ctx context.Context, word string) ([]string, error) {
	return s.phonemes, s.err
}

// toneClip synthesizes a sine tone loud enough to pass the silence gate
func toneClip(freq, seconds float64) *audio.Clip {
	rate := 16000
	n := int(seconds * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.3 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &audio.Clip{Samples: samples, SampleRate: rate}
}

func silentClip(seconds float64) *audio.Clip {
	rate := 16000
	return &audio.Clip{Samples: make([]float64, int(seconds*float64(rate))), SampleRate: rate}
}

var pencerePhonemes = []string{"p", "e", "n", "d͡ʒ", "e", "ɾ", "e"}

func TestPipelineAnalyzeExactMatch(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	result, err := p.Analyze(context.Background(), toneClip(220, 1.0), "pencere", nil)
	require.NoError(t, err)

	assert.Equal(t, "pencere", result.Word)
	assert.Equal(t, "pencere", result.RecognizedText)
	assert.Equal(t, 0.95, result.Confidence)
	assert.Equal(t, "text_similarity", result.ConfidenceSource)
	assert.Equal(t, 7, result.PhonemeCount)
	assert.Len(t, result.PhonemeScores, 5) // unique symbols
	assert.Empty(t, result.ValidationMessage)
	assert.Equal(t, "stt_hybrid_three_factor_heuristic", result.Method)

	assert.Greater(t, result.Overall, 0.0)
	assert.LessOrEqual(t, result.Overall, 1.0)
	assert.NotEmpty(t, result.Grade)
}

func TestPipelineAnalyzeExplicitPhonemesSkipPhonemizer(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "kedi"},
		nil, // would fail if consulted
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	result, err := p.Analyze(context.Background(), toneClip(220, 1.0), "kedi",
		[]string{"k", "e", "d", "i"})
	require.NoError(t, err)
	assert.Equal(t, 4, result.PhonemeCount)
}

func TestPipelineAnalyzeSilenceRejected(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	result, err := p.Analyze(context.Background(), silentClip(1.0), "pencere", nil)
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Overall)
	assert.Equal(t, "F", result.Grade)
	assert.Equal(t, "no speech detected", result.ValidationMessage)
	assert.Empty(t, result.PhonemeScores)
}

func TestPipelineAnalyzeShortClipRejected(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	result, err := p.Analyze(context.Background(), toneClip(220, 0.1), "pencere", nil)
	require.NoError(t, err)

	assert.Equal(t, 0.1, result.Overall)
	assert.Equal(t, "F", result.Grade)
	assert.Equal(t, "audio too short", result.ValidationMessage)
}

func TestPipelineAnalyzeValidationDisabledUsesTwoFactor(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: false},
	)

	// A clip the gate would reject still gets scored
	result, err := p.Analyze(context.Background(), toneClip(220, 0.1), "pencere", nil)
	require.NoError(t, err)

	assert.Empty(t, result.ValidationMessage)
	assert.NotEmpty(t, result.PhonemeScores)
	assert.Equal(t, "stt_hybrid_two_factor_heuristic", result.Method)
}

func TestPipelineAnalyzeRecognizerFailure(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{err: errors.New("credentials missing")},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	_, err := p.Analyze(context.Background(), toneClip(220, 1.0), "pencere", nil)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrCodeRecognizerUnavailable, analysisErr.Code)
}

func TestPipelineAnalyzeNilRecognizer(t *testing.T) {
	p := NewPipeline(nil, &stubPhonemizer{phonemes: pencerePhonemes}, nil,
		PipelineOptions{ValidationEnabled: true})

	_, err := p.Analyze(context.Background(), toneClip(220, 1.0), "pencere", nil)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrCodeRecognizerUnavailable, analysisErr.Code)
}

func TestPipelineAnalyzePhonemizerFailure(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{err: errors.New("espeak exploded")},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	_, err := p.Analyze(context.Background(), toneClip(220, 1.0), "pencere", nil)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrCodePhonemizerUnavailable, analysisErr.Code)
}

func TestPipelineAnalyzeCancelledContext(t *testing.T) {
	p := NewPipeline(
		&stubRecognizer{text: "pencere"},
		&stubPhonemizer{phonemes: pencerePhonemes},
		nil,
		PipelineOptions{ValidationEnabled: true},
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Analyze(ctx, toneClip(220, 1.0), "pencere", nil)
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrCodeTimeout, analysisErr.Code)
}

func TestPipelineScoreOnly(t *testing.T) {
	p := NewPipeline(nil, nil, nil, PipelineOptions{})

	result, err := p.ScoreOnly(toneClip(220, 1.0), "pencere", pencerePhonemes)
	require.NoError(t, err)

	assert.Equal(t, "heuristic", result.Method)
	assert.Equal(t, 7, result.PhonemeCount)
	assert.NotEmpty(t, result.PhonemeScores)
	assert.Equal(t, Grade(result.Overall), result.Grade)
	assert.GreaterOrEqual(t, result.Overall, 0.3)
	assert.LessOrEqual(t, result.Overall, 1.0)
}

func TestPipelineExtractFeaturesEmptyClip(t *testing.T) {
	p := NewPipeline(nil, nil, nil, PipelineOptions{})

	_, err := p.ExtractFeatures(&audio.Clip{SampleRate: 16000})
	require.Error(t, err)

	var analysisErr *AnalysisError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, ErrCodeExtraction, analysisErr.Code)
}
