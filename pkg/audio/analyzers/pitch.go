package analyzers

import (
	"math"

	"github.com/akustiklab/telaffuz/pkg/logging"
)

// PitchTracker estimates the fundamental frequency track of a signal
// using normalized autocorrelation with a voicing decision per frame.
type PitchTracker struct {
	sampleRate      int
	minFreq         float64
	maxFreq         float64
	voicingMinCorr  float64
	silenceRMSFloor float64
	logger          logging.Logger
}

// PitchTrack holds the per-frame fundamental frequency estimates.
// Unvoiced frames carry a zero.
type PitchTrack struct {
	F0     []float64 `json:"f0"`
	Voiced []bool    `json:"voiced"`
}

// NewPitchTracker creates a pitch tracker covering roughly C2 to C7
func NewPitchTracker(sampleRate int) *PitchTracker {
	return &PitchTracker{
		sampleRate:      sampleRate,
		minFreq:         65.41,   // C2
		maxFreq:         2093.00, // C7
		voicingMinCorr:  0.30,
		silenceRMSFloor: 1e-4,
		logger: logging.WithFields(logging.Fields{
			"component":   "pitch_tracker",
			"sample_rate": sampleRate,
		}),
	}
}

// Track estimates F0 for each frame of the signal
func (pt *PitchTracker) Track(signal []float64, frameSize, hopSize int) *PitchTrack {
	track := &PitchTrack{}
	if len(signal) < frameSize || frameSize <= 0 || hopSize <= 0 {
		return track
	}

	numFrames := (len(signal)-frameSize)/hopSize + 1
	track.F0 = make([]float64, numFrames)
	track.Voiced = make([]bool, numFrames)

	for i := range numFrames {
		start := i * hopSize
		frame := signal[start : start+frameSize]
		f0, voiced := pt.estimateFrame(frame)
		track.F0[i] = f0
		track.Voiced[i] = voiced
	}

	return track
}

// VoicedStats returns mean and standard deviation over voiced frames
// only. Both are zero when no frame is voiced.
func (t *PitchTrack) VoicedStats() (mean, std float64) {
	var voiced []float64
	for i, f0 := range t.F0 {
		if t.Voiced[i] && f0 > 0 {
			voiced = append(voiced, f0)
		}
	}

	if len(voiced) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range voiced {
		sum += v
	}
	mean = sum / float64(len(voiced))

	variance := 0.0
	for _, v := range voiced {
		diff := v - mean
		variance += diff * diff
	}
	std = math.Sqrt(variance / float64(len(voiced)))

	return mean, std
}

// estimateFrame runs normalized autocorrelation over the plausible lag
// range and picks the strongest peak
func (pt *PitchTracker) estimateFrame(frame []float64) (float64, bool) {
	rms := CalculateRMSEnergy(frame)
	if rms < pt.silenceRMSFloor {
		return 0, false
	}

	minLag := int(float64(pt.sampleRate) / pt.maxFreq)
	maxLag := int(float64(pt.sampleRate) / pt.minFreq)
	if maxLag >= len(frame) {
		maxLag = len(frame) - 1
	}
	if minLag < 1 {
		minLag = 1
	}
	if minLag >= maxLag {
		return 0, false
	}

	energy := 0.0
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return 0, false
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		corr := 0.0
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		corr /= energy

		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	if bestLag == 0 || bestCorr < pt.voicingMinCorr {
		return 0, false
	}

	return float64(pt.sampleRate) / float64(bestLag), true
}
