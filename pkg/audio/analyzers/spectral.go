package analyzers

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// SpectralAnalyzer provides STFT and frame-level spectral analysis
type SpectralAnalyzer struct {
	windowGenerator *WindowGenerator
	sampleRate      int
	logger          logging.Logger
}

// SpectrogramResult holds the result of STFT analysis
type SpectrogramResult struct {
	Magnitude      [][]float64 `json:"magnitude"`       // Time x Frequency magnitude matrix
	TimeFrames     int         `json:"time_frames"`     // Number of time frames
	FreqBins       int         `json:"freq_bins"`       // Number of frequency bins
	SampleRate     int         `json:"sample_rate"`     // Sample rate
	WindowSize     int         `json:"window_size"`     // FFT window size
	HopSize        int         `json:"hop_size"`        // Hop size between frames
	FreqResolution float64     `json:"freq_resolution"` // Frequency resolution (Hz/bin)
	TimeResolution float64     `json:"time_resolution"` // Time resolution (seconds/frame)
}

// FrameFeatures holds frequency-domain characteristics of a single frame
type FrameFeatures struct {
	SpectralCentroid  float64 `json:"spectral_centroid"`
	SpectralRolloff   float64 `json:"spectral_rolloff"`
	SpectralBandwidth float64 `json:"spectral_bandwidth"`
	Energy            float64 `json:"energy"`
}

// NewSpectralAnalyzer creates a new spectral analyzer
func NewSpectralAnalyzer(sampleRate int) *SpectralAnalyzer {
	return &SpectralAnalyzer{
		windowGenerator: NewWindowGenerator(),
		sampleRate:      sampleRate,
		logger: logging.WithFields(logging.Fields{
			"component":   "spectral_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// ComputeSpectrogram computes the STFT magnitude spectrogram using a
// Hamming window. The final partial frame is zero padded.
func (sa *SpectralAnalyzer) ComputeSpectrogram(signal []float64, windowSize, hopSize int) (*SpectrogramResult, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if windowSize <= 0 || hopSize <= 0 {
		return nil, fmt.Errorf("invalid framing: window=%d hop=%d", windowSize, hopSize)
	}

	logger := sa.logger.WithFields(logging.Fields{
		"function":      "ComputeSpectrogram",
		"signal_length": len(signal),
		"window_size":   windowSize,
		"hop_size":      hopSize,
	})
	logger.Debug("Computing spectrogram")

	timeFrames := 1
	if len(signal) > windowSize {
		timeFrames = (len(signal)-windowSize)/hopSize + 1
	}
	freqBins := windowSize/2 + 1
	window := sa.windowGenerator.Hamming(windowSize)

	magnitude := make([][]float64, timeFrames)
	for t := range timeFrames {
		start := t * hopSize
		frame := make([]float64, windowSize)
		copyLen := min(windowSize, len(signal)-start)
		copy(frame, signal[start:start+copyLen])

		windowed := sa.windowGenerator.Apply(frame, window)
		spectrum := sa.FFT(windowed)

		magnitude[t] = make([]float64, freqBins)
		for f := range freqBins {
			magnitude[t][f] = cmplx.Abs(spectrum[f])
		}
	}

	result := &SpectrogramResult{
		Magnitude:      magnitude,
		TimeFrames:     timeFrames,
		FreqBins:       freqBins,
		SampleRate:     sa.sampleRate,
		WindowSize:     windowSize,
		HopSize:        hopSize,
		FreqResolution: float64(sa.sampleRate) / float64(windowSize),
		TimeResolution: float64(hopSize) / float64(sa.sampleRate),
	}

	logger.Debug("Spectrogram computed", logging.Fields{
		"time_frames": result.TimeFrames,
		"freq_bins":   result.FreqBins,
	})

	return result, nil
}

// FFT computes the Fast Fourier Transform using mjibson/go-dsp
func (sa *SpectralAnalyzer) FFT(x []float64) []complex128 {
	if len(x) == 0 {
		return []complex128{}
	}
	return fft.FFTReal(x)
}

// GetFrequencyBins returns frequency values for each spectrogram bin
func (sa *SpectralAnalyzer) GetFrequencyBins(numBins int) []float64 {
	freqs := make([]float64, numBins)
	for i := range numBins {
		freqs[i] = float64(i) * float64(sa.sampleRate) / float64((numBins-1)*2)
	}
	return freqs
}

// ExtractFrameFeatures extracts frequency domain features from a single
// magnitude spectrum. rolloffThreshold is the fraction of spectral
// energy below the reported rolloff frequency.
func (sa *SpectralAnalyzer) ExtractFrameFeatures(magnitudeSpectrum []float64, rolloffThreshold float64) *FrameFeatures {
	features := &FrameFeatures{}
	if len(magnitudeSpectrum) == 0 {
		return features
	}

	freqs := sa.GetFrequencyBins(len(magnitudeSpectrum))

	features.SpectralCentroid = sa.SpectralCentroid(magnitudeSpectrum, freqs)
	features.SpectralRolloff = sa.SpectralRolloff(magnitudeSpectrum, freqs, rolloffThreshold)
	features.SpectralBandwidth = sa.spectralBandwidth(magnitudeSpectrum, freqs, features.SpectralCentroid)
	features.Energy = sa.energy(magnitudeSpectrum)

	return features
}

// SpectralCentroid computes the magnitude-weighted mean frequency
func (sa *SpectralAnalyzer) SpectralCentroid(spectrum, freqs []float64) float64 {
	numerator := 0.0
	denominator := 0.0

	for i := 0; i < len(spectrum) && i < len(freqs); i++ {
		numerator += freqs[i] * spectrum[i]
		denominator += spectrum[i]
	}

	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

// SpectralRolloff computes the frequency below which the given fraction
// of total spectral energy is contained
func (sa *SpectralAnalyzer) SpectralRolloff(spectrum, freqs []float64, threshold float64) float64 {
	totalEnergy := 0.0
	for _, mag := range spectrum {
		totalEnergy += mag * mag
	}
	if totalEnergy == 0 {
		return 0
	}

	targetEnergy := threshold * totalEnergy
	cumulativeEnergy := 0.0

	for i := 0; i < len(spectrum) && i < len(freqs); i++ {
		cumulativeEnergy += spectrum[i] * spectrum[i]
		if cumulativeEnergy >= targetEnergy {
			return freqs[i]
		}
	}

	if len(freqs) > 0 {
		return freqs[len(freqs)-1]
	}
	return 0
}

func (sa *SpectralAnalyzer) spectralBandwidth(spectrum, freqs []float64, centroid float64) float64 {
	numerator := 0.0
	denominator := 0.0

	for i := 0; i < len(spectrum) && i < len(freqs); i++ {
		diff := freqs[i] - centroid
		numerator += diff * diff * spectrum[i]
		denominator += spectrum[i]
	}

	if denominator == 0 {
		return 0
	}
	return math.Sqrt(numerator / denominator)
}

func (sa *SpectralAnalyzer) energy(spectrum []float64) float64 {
	energy := 0.0
	for _, mag := range spectrum {
		energy += mag * mag
	}
	return energy
}

// CalculateZeroCrossingRate computes the fraction of adjacent sample
// pairs whose signs differ
func CalculateZeroCrossingRate(frame []float64) float64 {
	if len(frame) < 2 {
		return 0
	}

	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i] >= 0) != (frame[i-1] >= 0) {
			crossings++
		}
	}

	return float64(crossings) / float64(len(frame)-1)
}

// CalculateRMSEnergy computes root-mean-square energy of a frame
func CalculateRMSEnergy(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}

	sum := 0.0
	for _, sample := range frame {
		sum += sample * sample
	}
	return math.Sqrt(sum / float64(len(frame)))
}
