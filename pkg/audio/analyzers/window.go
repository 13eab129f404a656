package analyzers

import "math"

// WindowGenerator produces analysis window functions
type WindowGenerator struct{}

// NewWindowGenerator creates a window generator
func NewWindowGenerator() *WindowGenerator {
	return &WindowGenerator{}
}

// Hamming returns a Hamming window of the given size
func (wg *WindowGenerator) Hamming(size int) []float64 {
	window := make([]float64, size)
	if size == 1 {
		window[0] = 1.0
		return window
	}

	for i := range size {
		window[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(size-1))
	}
	return window
}

// Hann returns a Hann window of the given size
func (wg *WindowGenerator) Hann(size int) []float64 {
	window := make([]float64, size)
	if size == 1 {
		window[0] = 1.0
		return window
	}

	for i := range size {
		window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(size-1)))
	}
	return window
}

// Generate returns a window by name, defaulting to Hamming
func (wg *WindowGenerator) Generate(name string, size int) []float64 {
	switch name {
	case "hann":
		return wg.Hann(size)
	default:
		return wg.Hamming(size)
	}
}

// Apply multiplies the signal by the window in place-safe copy
func (wg *WindowGenerator) Apply(signal, window []float64) []float64 {
	n := min(len(signal), len(window))
	out := make([]float64, n)
	for i := range n {
		out[i] = signal[i] * window[i]
	}
	return out
}
