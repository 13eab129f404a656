package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/akustiklab/telaffuz/pkg/audio"
	"github.com/akustiklab/telaffuz/pkg/audio/analyzers"
	"github.com/akustiklab/telaffuz/pkg/logging"
)

// Analysis rate and framing defaults. All expectation-table thresholds
// assume the 16 kHz rate, so every clip is resampled to the configured
// rate before measurement.
const (
	TargetSampleRate        = 16000
	defaultFrameMillis      = 25
	defaultHopMillis        = 10
	defaultMFCCCount        = 13
	defaultRolloffThreshold = 0.85
)

// ExtractorConfig controls the analysis rate, framing and descriptor
// widths of feature extraction. Zero fields fall back to the defaults.
type ExtractorConfig struct {
	SampleRate       int
	FrameMillis      int
	HopMillis        int
	MFCCCoefficients int
	RolloffThreshold float64
}

// DefaultExtractorConfig returns the production extraction settings
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		SampleRate:       TargetSampleRate,
		FrameMillis:      defaultFrameMillis,
		HopMillis:        defaultHopMillis,
		MFCCCoefficients: defaultMFCCCount,
		RolloffThreshold: defaultRolloffThreshold,
	}
}

func (c ExtractorConfig) withDefaults() ExtractorConfig {
	d := DefaultExtractorConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = d.SampleRate
	}
	if c.FrameMillis <= 0 {
		c.FrameMillis = d.FrameMillis
	}
	if c.HopMillis <= 0 {
		c.HopMillis = d.HopMillis
	}
	if c.MFCCCoefficients <= 0 {
		c.MFCCCoefficients = d.MFCCCoefficients
	}
	if c.RolloffThreshold <= 0 {
		c.RolloffThreshold = d.RolloffThreshold
	}
	return c
}

// AudioFeatures is the fixed-shape acoustic descriptor bundle computed
// once per analysis. Immutable after extraction.
type AudioFeatures struct {
	Duration float64 `json:"duration"`

	// Per-coefficient statistics over frames
	MFCCMean []float64 `json:"mfcc_mean"`
	MFCCStd  []float64 `json:"mfcc_std"`

	// Voiced-frame statistics; zero when no voiced frame was found
	PitchMean float64 `json:"pitch_mean"`
	PitchStd  float64 `json:"pitch_std"`

	Formants analyzers.FormantSet `json:"formants"`

	EnergyMean float64 `json:"energy_mean"`
	EnergyStd  float64 `json:"energy_std"`

	SpectralCentroid  float64 `json:"spectral_centroid"`
	SpectralRolloff   float64 `json:"spectral_rolloff"`
	SpectralBandwidth float64 `json:"spectral_bandwidth"`
	ZeroCrossingRate  float64 `json:"zero_crossing_rate"`
}

// FeatureExtractor computes AudioFeatures from a decoded clip
type FeatureExtractor struct {
	cfg      ExtractorConfig
	spectral *analyzers.SpectralAnalyzer
	mfcc     *analyzers.MFCCAnalyzer
	pitch    *analyzers.PitchTracker
	formant  *analyzers.FormantAnalyzer
	logger   logging.Logger
}

// NewFeatureExtractor creates an extractor for the given configuration;
// zero fields use the production defaults
func NewFeatureExtractor(cfg ExtractorConfig) *FeatureExtractor {
	cfg = cfg.withDefaults()

	return &FeatureExtractor{
		cfg:      cfg,
		spectral: analyzers.NewSpectralAnalyzer(cfg.SampleRate),
		mfcc:     analyzers.NewMFCCAnalyzer(cfg.MFCCCoefficients),
		pitch:    analyzers.NewPitchTracker(cfg.SampleRate),
		formant:  analyzers.NewFormantAnalyzer(cfg.SampleRate),
		logger: logging.WithFields(logging.Fields{
			"component":   "feature_extractor",
			"sample_rate": cfg.SampleRate,
		}),
	}
}

// Extract computes the full descriptor bundle. The clip is resampled
// to the configured analysis rate first. Fails when the clip is empty;
// formant estimation is best effort and never fails the extraction.
func (fe *FeatureExtractor) Extract(clip *audio.Clip) (*AudioFeatures, error) {
	if clip == nil || len(clip.Samples) == 0 {
		return nil, NewAnalysisError("", ErrCodeExtraction, "empty audio input", nil)
	}
	if clip.SampleRate <= 0 {
		return nil, NewAnalysisError("", ErrCodeExtraction, "invalid sample rate", nil)
	}

	resampled := audio.Resample(clip, fe.cfg.SampleRate)
	samples := resampled.Samples

	logger := fe.logger.WithFields(logging.Fields{
		"function":    "Extract",
		"samples":     len(samples),
		"source_rate": clip.SampleRate,
	})
	logger.Debug("extracting acoustic features")

	frameSize := fe.cfg.SampleRate * fe.cfg.FrameMillis / 1000
	hopSize := fe.cfg.SampleRate * fe.cfg.HopMillis / 1000

	features := &AudioFeatures{
		Duration: resampled.Seconds(),
	}

	spectrogram, err := fe.spectral.ComputeSpectrogram(samples, frameSize, hopSize)
	if err != nil {
		return nil, NewAnalysisError("", ErrCodeExtraction, "spectrogram computation failed", err)
	}

	mfccFrames, err := fe.mfcc.Compute(spectrogram)
	if err != nil {
		return nil, NewAnalysisError("", ErrCodeExtraction, "mfcc computation failed", err)
	}
	features.MFCCMean, features.MFCCStd = coefficientStats(mfccFrames, fe.cfg.MFCCCoefficients)

	// Pitch over voiced frames only
	track := fe.pitch.Track(samples, frameSize, hopSize)
	features.PitchMean, features.PitchStd = track.VoicedStats()

	// Frame energies and zero crossings share the spectrogram framing
	energies := make([]float64, spectrogram.TimeFrames)
	zcrs := make([]float64, spectrogram.TimeFrames)
	for t := range spectrogram.TimeFrames {
		start := t * hopSize
		end := min(start+frameSize, len(samples))
		if start >= end {
			continue
		}
		frame := samples[start:end]
		energies[t] = analyzers.CalculateRMSEnergy(frame)
		zcrs[t] = analyzers.CalculateZeroCrossingRate(frame)
	}
	features.EnergyMean = stat.Mean(energies, nil)
	features.EnergyStd = stat.StdDev(energies, nil)
	if math.IsNaN(features.EnergyStd) {
		features.EnergyStd = 0
	}
	features.ZeroCrossingRate = stat.Mean(zcrs, nil)

	// Spectral descriptors averaged over frames
	centroids := make([]float64, spectrogram.TimeFrames)
	rolloffs := make([]float64, spectrogram.TimeFrames)
	bandwidths := make([]float64, spectrogram.TimeFrames)
	for t := range spectrogram.TimeFrames {
		frame := fe.spectral.ExtractFrameFeatures(spectrogram.Magnitude[t], fe.cfg.RolloffThreshold)
		centroids[t] = frame.SpectralCentroid
		rolloffs[t] = frame.SpectralRolloff
		bandwidths[t] = frame.SpectralBandwidth
	}
	features.SpectralCentroid = stat.Mean(centroids, nil)
	features.SpectralRolloff = stat.Mean(rolloffs, nil)
	features.SpectralBandwidth = stat.Mean(bandwidths, nil)

	// Best effort; an all-zero set means estimation failed
	features.Formants = fe.formant.Estimate(samples)

	logger.Debug("feature extraction complete", logging.Fields{
		"duration":    features.Duration,
		"energy_mean": features.EnergyMean,
		"pitch_mean":  features.PitchMean,
		"f1":          features.Formants.F1,
		"f2":          features.Formants.F2,
	})

	return features, nil
}

// coefficientStats computes per-coefficient mean and standard deviation
// across frames, always returning vectors of the requested width
func coefficientStats(frames [][]float64, width int) (means, stds []float64) {
	means = make([]float64, width)
	stds = make([]float64, width)
	if len(frames) == 0 {
		return means, stds
	}

	column := make([]float64, len(frames))
	for c := range width {
		for t, frame := range frames {
			if c < len(frame) {
				column[t] = frame[c]
			} else {
				column[t] = 0
			}
		}
		means[c] = stat.Mean(column, nil)
		if len(column) > 1 {
			stds[c] = stat.StdDev(column, nil)
			if math.IsNaN(stds[c]) {
				stds[c] = 0
			}
		}
	}

	return means, stds
}
