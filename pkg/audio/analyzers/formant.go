package analyzers

import (
	"math"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// FormantSet holds formant estimates for an utterance. The primary
// values are sampled at the utterance midpoint; the means cover every
// analyzable frame and serve as fallback when the midpoint frame is
// silent or unstable.
type FormantSet struct {
	F1     float64 `json:"f1"`
	F2     float64 `json:"f2"`
	F3     float64 `json:"f3"`
	F1Mean float64 `json:"f1_mean"`
	F2Mean float64 `json:"f2_mean"`
	F3Mean float64 `json:"f3_mean"`
}

// FormantAnalyzer estimates vowel formants from the LPC spectral
// envelope computed with the Burg method.
type FormantAnalyzer struct {
	sampleRate int
	lpcOrder   int
	logger     logging.Logger
}

// Search ranges for the first three formants
var formantRanges = [3][2]float64{
	{200, 1000},  // F1
	{800, 2500},  // F2
	{1500, 4000}, // F3
}

// NewFormantAnalyzer creates a formant analyzer. The LPC order follows
// the usual rule of two poles per kHz plus two.
func NewFormantAnalyzer(sampleRate int) *FormantAnalyzer {
	return &FormantAnalyzer{
		sampleRate: sampleRate,
		lpcOrder:   2 + sampleRate/1000,
		logger: logging.WithFields(logging.Fields{
			"component":   "formant_analyzer",
			"sample_rate": sampleRate,
		}),
	}
}

// Estimate computes the formant set for an utterance. Estimation is
// best effort: any internal failure yields an all-zero set, never an
// error, so a failed formant pass cannot abort analysis.
func (fa *FormantAnalyzer) Estimate(signal []float64) FormantSet {
	result := FormantSet{}
	if len(signal) == 0 || fa.sampleRate <= 0 {
		return result
	}

	frameSize := fa.sampleRate * 25 / 1000
	hopSize := fa.sampleRate * 10 / 1000
	if len(signal) < frameSize {
		frameSize = len(signal)
		hopSize = frameSize
	}

	numFrames := 1
	if len(signal) > frameSize {
		numFrames = (len(signal)-frameSize)/hopSize + 1
	}

	wg := NewWindowGenerator()
	window := wg.Hamming(frameSize)

	perFrame := make([][3]float64, numFrames)
	for i := range numFrames {
		start := i * hopSize
		end := min(start+frameSize, len(signal))
		frame := preEmphasize(signal[start:end], 0.97)
		windowed := wg.Apply(frame, window)
		perFrame[i] = fa.frameFormants(windowed)
	}

	// Full-duration means over frames with a usable estimate
	var means [3]float64
	for k := range 3 {
		sum := 0.0
		count := 0
		for _, f := range perFrame {
			if f[k] > 0 {
				sum += f[k]
				count++
			}
		}
		if count > 0 {
			means[k] = sum / float64(count)
		}
	}

	// Midpoint sample, substituting the mean when the midpoint frame
	// gave nothing usable
	mid := perFrame[numFrames/2]
	for k := range 3 {
		if mid[k] <= 0 || math.IsNaN(mid[k]) {
			mid[k] = means[k]
		}
	}

	result.F1, result.F2, result.F3 = mid[0], mid[1], mid[2]
	result.F1Mean, result.F2Mean, result.F3Mean = means[0], means[1], means[2]

	fa.logger.Debug("formants estimated", logging.Fields{
		"f1": result.F1,
		"f2": result.F2,
		"f3": result.F3,
	})

	return result
}

// frameFormants fits an LPC model to one frame and peak-picks the
// spectral envelope within the standard formant ranges
func (fa *FormantAnalyzer) frameFormants(frame []float64) [3]float64 {
	var formants [3]float64

	order := fa.lpcOrder
	if len(frame) <= order*2 {
		return formants
	}

	coeffs, ok := burgLPC(frame, order)
	if !ok {
		return formants
	}

	// Evaluate the envelope 1/|A(e^jw)| on a 4 Hz grid up to the last
	// formant range bound
	const gridStep = 4.0
	maxFreq := math.Min(formantRanges[2][1], float64(fa.sampleRate)/2)
	numPoints := int(maxFreq/gridStep) + 1

	envelope := make([]float64, numPoints)
	for i := range numPoints {
		freq := float64(i) * gridStep
		omega := 2 * math.Pi * freq / float64(fa.sampleRate)

		// A(e^jw) = 1 + sum a_k e^{-jkw}
		re := 1.0
		im := 0.0
		for k, a := range coeffs {
			angle := -omega * float64(k+1)
			re += a * math.Cos(angle)
			im += a * math.Sin(angle)
		}

		denom := math.Sqrt(re*re + im*im)
		if denom < 1e-12 {
			denom = 1e-12
		}
		envelope[i] = 1.0 / denom
	}

	// Local maxima of the envelope are formant candidates
	for k, fr := range formantRanges {
		bestMag := 0.0
		bestFreq := 0.0

		lo := int(fr[0] / gridStep)
		hi := min(int(fr[1]/gridStep), numPoints-2)

		for i := max(lo, 1); i <= hi; i++ {
			if envelope[i] > envelope[i-1] && envelope[i] >= envelope[i+1] && envelope[i] > bestMag {
				bestMag = envelope[i]
				bestFreq = float64(i) * gridStep
			}
		}

		formants[k] = bestFreq
	}

	return formants
}

// preEmphasize applies a first-order high-pass difference filter
func preEmphasize(signal []float64, alpha float64) []float64 {
	out := make([]float64, len(signal))
	if len(signal) == 0 {
		return out
	}
	out[0] = signal[0]
	for i := 1; i < len(signal); i++ {
		out[i] = signal[i] - alpha*signal[i-1]
	}
	return out
}

// burgLPC computes LPC coefficients with the Burg method. Returns
// false when the frame energy vanishes or the recursion degenerates.
func burgLPC(frame []float64, order int) ([]float64, bool) {
	n := len(frame)
	if n <= order {
		return nil, false
	}

	f := make([]float64, n)
	b := make([]float64, n)
	copy(f, frame)
	copy(b, frame)

	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy < 1e-12 {
		return nil, false
	}

	a := make([]float64, order)
	prevA := make([]float64, order)

	for m := range order {
		// Reflection coefficient
		num := 0.0
		den := 0.0
		for i := m + 1; i < n; i++ {
			num += f[i] * b[i-1]
			den += f[i]*f[i] + b[i-1]*b[i-1]
		}
		if den < 1e-12 {
			return nil, false
		}
		k := -2.0 * num / den

		copy(prevA, a)
		a[m] = k
		for i := range m {
			a[i] = prevA[i] + k*prevA[m-1-i]
		}

		// Update forward and backward prediction errors
		for i := n - 1; i > m; i-- {
			fPrev := f[i]
			f[i] = fPrev + k*b[i-1]
			b[i] = b[i-1] + k*fPrev
		}
	}

	for _, c := range a {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return nil, false
		}
	}

	return a, true
}
