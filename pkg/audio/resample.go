package audio

// Resample converts a clip to the target sample rate using linear
// interpolation. Returns the original clip when the rate already
// matches. Quality is sufficient for feature extraction; this is not
// a playback-grade resampler.
func Resample(clip *Clip, targetRate int) *Clip {
	if clip == nil || targetRate <= 0 || clip.SampleRate == targetRate || len(clip.Samples) == 0 {
		return clip
	}

	ratio := float64(clip.SampleRate) / float64(targetRate)
	outLen := int(float64(len(clip.Samples)) / ratio)
	if outLen < 1 {
		outLen = 1
	}

	out := make([]float64, outLen)
	for i := range outLen {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)

		if idx+1 < len(clip.Samples) {
			out[i] = clip.Samples[idx]*(1-frac) + clip.Samples[idx+1]*frac
		} else {
			out[i] = clip.Samples[len(clip.Samples)-1]
		}
	}

	return &Clip{Samples: out, SampleRate: targetRate}
}
