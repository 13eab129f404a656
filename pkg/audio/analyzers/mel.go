package analyzers

import (
	"fmt"
	"math"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// MFCCAnalyzer computes mel-frequency cepstral coefficients from a
// magnitude spectrogram
type MFCCAnalyzer struct {
	numCoefficients int
	numMelFilters   int
	lowFreq         float64
	highFreq        float64
	logger          logging.Logger
}

// NewMFCCAnalyzer creates an MFCC analyzer with the standard speech
// configuration: 26 mel filters over 300 Hz to 4 kHz
func NewMFCCAnalyzer(numCoefficients int) *MFCCAnalyzer {
	if numCoefficients <= 0 {
		numCoefficients = 13
	}

	return &MFCCAnalyzer{
		numCoefficients: numCoefficients,
		numMelFilters:   26,
		lowFreq:         300.0,
		highFreq:        4000.0,
		logger: logging.WithFields(logging.Fields{
			"component": "mfcc_analyzer",
		}),
	}
}

// NumCoefficients returns the configured coefficient count
func (m *MFCCAnalyzer) NumCoefficients() int {
	return m.numCoefficients
}

// Compute calculates MFCC frames from a spectrogram. Output is one
// coefficient vector per time frame.
func (m *MFCCAnalyzer) Compute(spectrogram *SpectrogramResult) ([][]float64, error) {
	if spectrogram == nil || spectrogram.TimeFrames == 0 {
		return nil, fmt.Errorf("empty spectrogram")
	}
	if m.numCoefficients < 1 || m.numCoefficients > 50 {
		return nil, fmt.Errorf("invalid number of MFCC coefficients: %d (should be 1-50)", m.numCoefficients)
	}

	highFreq := math.Min(m.highFreq, float64(spectrogram.SampleRate)/2.0)
	filterBank, err := m.createMelFilterBank(m.numMelFilters, m.lowFreq, highFreq, spectrogram.FreqBins, spectrogram.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create mel filter bank: %w", err)
	}

	mfcc := make([][]float64, spectrogram.TimeFrames)
	for t := range spectrogram.TimeFrames {
		magnitude := spectrogram.Magnitude[t]
		if len(magnitude) == 0 {
			mfcc[t] = make([]float64, m.numCoefficients)
			continue
		}

		melSpectrum := m.applyMelFilters(magnitude, filterBank)
		logMelSpectrum := m.computeLogMelSpectrum(melSpectrum)
		frame := m.applyDCT(logMelSpectrum, m.numCoefficients)
		mfcc[t] = m.applyLiftering(frame)
	}

	mfcc = m.normalize(mfcc)

	if err := m.validate(mfcc); err != nil {
		return nil, fmt.Errorf("MFCC validation failed: %w", err)
	}

	return mfcc, nil
}

func hzToMel(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

func melToHz(mel float64) float64 {
	return 700.0 * (math.Pow(10, mel/2595.0) - 1.0)
}

func (m *MFCCAnalyzer) createMelFilterBank(numFilters int, lowFreq, highFreq float64, freqBins, sampleRate int) ([][]float64, error) {
	if numFilters <= 0 || freqBins <= 1 || sampleRate <= 0 {
		return nil, fmt.Errorf("invalid parameters: filters=%d, bins=%d, rate=%d", numFilters, freqBins, sampleRate)
	}

	nyquist := float64(sampleRate) / 2.0
	if highFreq > nyquist {
		highFreq = nyquist
	}

	lowMel := hzToMel(lowFreq)
	highMel := hzToMel(highFreq)

	// Equally spaced points on the mel scale, mapped back to Hz
	melPoints := make([]float64, numFilters+2)
	melStep := (highMel - lowMel) / float64(numFilters+1)
	for i := range melPoints {
		melPoints[i] = lowMel + float64(i)*melStep
	}

	freqPoints := make([]float64, len(melPoints))
	for i, mel := range melPoints {
		freqPoints[i] = melToHz(mel)
	}

	freqResolution := float64(sampleRate) / float64(2*(freqBins-1))

	filterBank := make([][]float64, numFilters)
	for i := range numFilters {
		filter := make([]float64, freqBins)
		filterSum := 0.0

		leftFreq := freqPoints[i]
		centerFreq := freqPoints[i+1]
		rightFreq := freqPoints[i+2]

		for j := range freqBins {
			freq := float64(j) * freqResolution

			if freq >= leftFreq && freq <= rightFreq {
				var weight float64
				if freq <= centerFreq {
					if centerFreq > leftFreq {
						weight = (freq - leftFreq) / (centerFreq - leftFreq)
					}
				} else {
					if rightFreq > centerFreq {
						weight = (rightFreq - freq) / (rightFreq - centerFreq)
					}
				}
				filter[j] = weight
				filterSum += weight
			}
		}

		// Normalize filter to preserve energy
		if filterSum > 0 {
			for j := range filter {
				filter[j] /= filterSum
			}
		}

		filterBank[i] = filter
	}

	return filterBank, nil
}

func (m *MFCCAnalyzer) applyMelFilters(magnitude []float64, filterBank [][]float64) []float64 {
	melSpectrum := make([]float64, len(filterBank))

	for i, filter := range filterBank {
		sum := 0.0
		for j := 0; j < len(filter) && j < len(magnitude); j++ {
			sum += magnitude[j] * filter[j]
		}

		// Floor prevents log blowup on silent bands
		if sum < 1e-8 {
			sum = 1e-8
		}

		melSpectrum[i] = sum
	}

	return melSpectrum
}

func (m *MFCCAnalyzer) computeLogMelSpectrum(melSpectrum []float64) []float64 {
	logMelSpectrum := make([]float64, len(melSpectrum))
	for i, val := range melSpectrum {
		logMelSpectrum[i] = math.Log(val)
	}
	return logMelSpectrum
}

func (m *MFCCAnalyzer) applyDCT(logMelSpectrum []float64, numCoeffs int) []float64 {
	if len(logMelSpectrum) == 0 {
		return make([]float64, numCoeffs)
	}

	mfcc := make([]float64, numCoeffs)
	N := float64(len(logMelSpectrum))

	for k := range numCoeffs {
		sum := 0.0
		for n := range logMelSpectrum {
			sum += logMelSpectrum[n] * math.Cos(math.Pi*float64(k)*(float64(n)+0.5)/N)
		}

		normFactor := math.Sqrt(2.0 / N)
		if k == 0 {
			normFactor = math.Sqrt(1.0 / N)
		}

		mfcc[k] = sum * normFactor
	}

	return mfcc
}

func (m *MFCCAnalyzer) applyLiftering(mfcc []float64) []float64 {
	L := 22.0
	liftered := make([]float64, len(mfcc))

	for i := range mfcc {
		if i == 0 {
			liftered[i] = mfcc[i]
		} else {
			lifter := 1.0 + L/2.0*math.Sin(math.Pi*float64(i)/L)
			liftered[i] = mfcc[i] * lifter
		}
	}

	return liftered
}

// normalize applies coefficient-wise clamping and z-score rescaling of
// coefficients whose spread got out of hand
func (m *MFCCAnalyzer) normalize(mfcc [][]float64) [][]float64 {
	if len(mfcc) == 0 {
		return mfcc
	}

	numCoeffs := len(mfcc[0])
	coeffStats := make([]struct{ mean, std float64 }, numCoeffs)

	for c := range numCoeffs {
		values := make([]float64, len(mfcc))
		for t := range mfcc {
			values[t] = mfcc[t][c]
		}
		coeffStats[c].mean = mean(values)
		coeffStats[c].std = math.Sqrt(variance(values))
	}

	for t := range mfcc {
		for c := range numCoeffs {
			if c == 0 {
				// C0 carries overall energy; clamp only
				mfcc[t][c] = clampValue(mfcc[t][c], -20, 20)
			} else {
				if coeffStats[c].std > 15 {
					mfcc[t][c] = (mfcc[t][c] - coeffStats[c].mean) / coeffStats[c].std * 5.0
				}
				mfcc[t][c] = clampValue(mfcc[t][c], -15, 15)
			}

			if math.IsNaN(mfcc[t][c]) || math.IsInf(mfcc[t][c], 0) {
				mfcc[t][c] = 0.0
			}
		}
	}

	return mfcc
}

func (m *MFCCAnalyzer) validate(mfcc [][]float64) error {
	if len(mfcc) == 0 {
		return fmt.Errorf("empty MFCC array")
	}

	for t, frame := range mfcc {
		for c, coeff := range frame {
			if math.IsNaN(coeff) || math.IsInf(coeff, 0) {
				return fmt.Errorf("invalid MFCC at frame %d, coeff %d: %f", t, c, coeff)
			}
			if math.Abs(coeff) > 200 {
				return fmt.Errorf("extreme MFCC at frame %d, coeff %d: %f", t, c, coeff)
			}
		}
	}

	return nil
}

func clampValue(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func variance(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mu := mean(values)
	v := 0.0
	for _, val := range values {
		diff := val - mu
		v += diff * diff
	}
	return v / float64(len(values))
}
